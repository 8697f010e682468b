// Package categorizecmd implements the categorize command: a one-off
// classification preview for a single transaction.
package categorizecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penghee/alipay2moneywiz-sub001/cmd/root"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/ledger"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/smartmatch"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

var (
	txType       string
	description  string
	counterparty string
	amount       string
	smart        bool
)

// Cmd is the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Classify one transaction and print the category",
	RunE:  runCategorize,
}

func init() {
	Cmd.Flags().StringVarP(&txType, "type", "t", "", "Platform transaction type label")
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Product or description text")
	Cmd.Flags().StringVarP(&counterparty, "counterparty", "c", "", "Counterparty name")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "0", "Signed amount")
	Cmd.Flags().BoolVar(&smart, "smart", false, "Use the learned category matcher with rule fallback")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	mappings := store.NewMappingStore(root.Cfg.Mappings.AccountsFile, root.Cfg.Mappings.CategoriesFile)
	categories, err := mappings.LoadCategories()
	if err != nil {
		return err
	}

	rules := categorizer.NewRuleClassifier(categories)
	var resolver categorizer.Resolver = rules
	if smart {
		history, err := ledger.ReadHistory(root.Cfg.Ledger.Directory)
		if err != nil {
			return err
		}
		resolver = categorizer.NewSmartResolver(smartmatch.Build(history), rules)
	}

	category := resolver.Resolve(txType, description, counterparty, models.ParseAmount(amount))
	fmt.Println(category)
	return nil
}
