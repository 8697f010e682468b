// Package validatecmd implements the validate command: format sniffing for
// a bill export without converting or merging anything.
package validatecmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penghee/alipay2moneywiz-sub001/cmd/root"
	"github.com/penghee/alipay2moneywiz-sub001/internal/alipayparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/icostparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/jdparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/wechatparser"
)

var (
	inputFile string
	platform  string
)

// Cmd is the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check whether a file looks like a platform bill export",
	RunE:  runValidate,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input bill export file (required)")
	Cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform: alipay, wechat, jd or icost (required)")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("platform")
}

func runValidate(cmd *cobra.Command, args []string) error {
	p := models.Platform(platform)
	if !p.Valid() {
		return fmt.Errorf("unknown platform: %s", platform)
	}

	var err error
	switch p {
	case models.PlatformAlipay:
		valid, verr := alipayparser.ValidateFormat(inputFile)
		if verr == nil && !valid {
			err = fmt.Errorf("not a recognizable alipay export")
		} else {
			err = verr
		}
	default:
		err = sniff(p, inputFile)
	}

	if err != nil {
		return err
	}
	root.Log.WithField("file", inputFile).Info("File format recognized")
	return nil
}

// sniff runs the platform extractor and discards its records.
func sniff(p models.Platform, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	xlsx := strings.HasSuffix(strings.ToLower(filePath), ".xlsx")
	switch p {
	case models.PlatformWechat:
		if xlsx {
			_, err = wechatparser.ExtractXLSX(file)
		} else {
			_, err = wechatparser.ExtractRecords(file, false)
		}
	case models.PlatformJD:
		_, err = jdparser.ExtractRecords(file, false)
	case models.PlatformIcost:
		if xlsx {
			_, err = icostparser.ExtractXLSX(file)
		} else {
			_, err = icostparser.ExtractRecords(file, false)
		}
	}
	return err
}
