// Package importcmd implements the import command: one source file plus a
// platform selector, producing one ledger merge.
package importcmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/penghee/alipay2moneywiz-sub001/cmd/root"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/factory"
	"github.com/penghee/alipay2moneywiz-sub001/internal/fileutils"
	"github.com/penghee/alipay2moneywiz-sub001/internal/ledger"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/smartmatch"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

var (
	inputFile   string
	platform    string
	outputDir   string
	smart       bool
	interactive bool
)

// Cmd is the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import one bill export into the monthly ledgers",
	Long: `Import extracts a platform bill export, normalizes it to the canonical
transaction schema, classifies every transaction, and merges the batch into
the per-month ledger files.

Merges are read-modify-write over whole month files: run one import at a
time per month file, the writer does not lock.`,
	RunE: runImport,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input bill export file (required)")
	Cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform: alipay, wechat, jd or icost (required)")
	Cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Ledger directory (defaults to configuration)")
	Cmd.Flags().BoolVar(&smart, "smart", false, "Use the learned category matcher with rule fallback")
	Cmd.Flags().BoolVar(&interactive, "interactive", false, "Prompt for a category when classification is inconclusive")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("platform")
}

func runImport(cmd *cobra.Command, args []string) error {
	// An unknown platform is a configuration error regardless of the file.
	p := models.Platform(platform)
	if !p.Valid() {
		return fmt.Errorf("unknown platform: %s", platform)
	}

	if !fileutils.FileExists(inputFile) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	dir := outputDir
	if dir == "" {
		dir = root.Cfg.Ledger.Directory
	}

	mappings := store.NewMappingStore(root.Cfg.Mappings.AccountsFile, root.Cfg.Mappings.CategoriesFile)
	accountRules, err := mappings.LoadAccountRules()
	if err != nil {
		return err
	}
	categories, err := mappings.LoadCategories()
	if err != nil {
		return err
	}

	accounts, err := factory.NewAccountMapper(p, accountRules)
	if err != nil {
		return err
	}
	rules := factory.NewRuleClassifier(p, categories)

	var resolver categorizer.Resolver = rules
	switch {
	case interactive:
		// Human-in-the-loop correction is batch-tool only and bypasses
		// the learned matcher.
		resolver = categorizer.NewInteractiveResolver(rules, categories, os.Stdin, os.Stdout)
	case smart || root.Cfg.Import.Smart:
		history, err := ledger.ReadHistory(dir)
		if err != nil {
			return err
		}
		resolver = categorizer.NewSmartResolver(smartmatch.Build(history), rules)
	}

	converter, err := factory.NewConverter(p, accounts, resolver, root.Cfg.Import.Strict)
	if err != nil {
		return err
	}

	batch, err := converter.ParseFile(inputFile)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		root.Log.Warn("Export contained no usable transactions")
		return nil
	}

	writer := ledger.NewWriter(dir)
	for yearMonth, group := range groupByMonth(batch) {
		year, month := yearMonth[0], yearMonth[1]
		if err := writer.Merge(group, year, month, p); err != nil {
			return err
		}
		root.Log.WithField("month", fmt.Sprintf("%04d-%02d", year, month)).
			WithField("count", len(group)).
			Info("Merged import batch")
	}
	return nil
}

// groupByMonth splits a batch by the calendar month of each transaction.
// Transactions with an unparseable date land in the zero month and still
// get persisted rather than silently dropped.
func groupByMonth(batch []models.Transaction) map[[2]int][]models.Transaction {
	groups := make(map[[2]int][]models.Transaction)
	for _, tx := range batch {
		var year, month int
		if len(tx.Date) >= 7 {
			year, _ = strconv.Atoi(tx.Date[:4])
			month, _ = strconv.Atoi(tx.Date[5:7])
		}
		key := [2]int{year, month}
		groups[key] = append(groups[key], tx)
	}
	return groups
}
