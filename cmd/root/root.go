// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/penghee/alipay2moneywiz-sub001/internal/accountmap"
	"github.com/penghee/alipay2moneywiz-sub001/internal/alipayparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/common"
	"github.com/penghee/alipay2moneywiz-sub001/internal/config"
	"github.com/penghee/alipay2moneywiz-sub001/internal/fileutils"
	"github.com/penghee/alipay2moneywiz-sub001/internal/icostparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/jdparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/ledger"
	"github.com/penghee/alipay2moneywiz-sub001/internal/smartmatch"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
	"github.com/penghee/alipay2moneywiz-sub001/internal/wechatparser"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg holds the loaded application configuration
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bill2ledger",
		Short: "Ingest payment-platform bill exports into monthly ledger files.",
		Long: `bill2ledger normalizes bill exports from Alipay, WeChat Pay, JD and
icost into one canonical transaction schema, classifies each transaction
into a category and account, and merges the result into per-month ledger
CSV files.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to bill2ledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)

			// Fan the configured logger out to every package.
			common.SetLogger(Log)
			fileutils.SetLogger(Log)
			store.SetLogger(Log)
			accountmap.SetLogger(Log)
			categorizer.SetLogger(Log)
			smartmatch.SetLogger(Log)
			ledger.SetLogger(Log)
			alipayparser.SetLogger(Log)
			wechatparser.SetLogger(Log)
			jdparser.SetLogger(Log)
			icostparser.SetLogger(Log)
			return nil
		},
	}
)
