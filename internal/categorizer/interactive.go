package categorizer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

// InteractiveResolver wraps a rule classifier with a synchronous
// human-in-the-loop correction step. When the classifier yields the
// uncategorized sentinel, the transaction and the full ordered category list
// are printed and a 1-based index is read from the input stream; a valid
// index overrides the category, anything else keeps the sentinel.
//
// This resolver blocks on the terminal and is only wired into the batch
// command; the automated ingestion path must use a non-blocking resolver.
type InteractiveResolver struct {
	rules      *RuleClassifier
	categories []store.CategoryConfig
	in         *bufio.Reader
	out        io.Writer
}

// NewInteractiveResolver creates an InteractiveResolver reading corrections
// from in and printing prompts to out.
func NewInteractiveResolver(rules *RuleClassifier, categories []store.CategoryConfig, in io.Reader, out io.Writer) *InteractiveResolver {
	return &InteractiveResolver{
		rules:      rules,
		categories: categories,
		in:         bufio.NewReader(in),
		out:        out,
	}
}

// Resolve implements Resolver.
func (r *InteractiveResolver) Resolve(txType, product, counterparty string, amount decimal.Decimal) string {
	category := r.rules.Resolve(txType, product, counterparty, amount)
	if category != models.CategoryUncategorized {
		return category
	}
	return r.prompt(txType, product, counterparty, amount)
}

func (r *InteractiveResolver) prompt(txType, product, counterparty string, amount decimal.Decimal) string {
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s %s | %s | %s | %s\n",
		yellow("未分类交易:"), txType, product, counterparty, amount.StringFixed(2))
	for i, category := range r.categories {
		fmt.Fprintf(r.out, "  %s %s\n", cyan(fmt.Sprintf("[%d]", i+1)), category.Name)
	}
	fmt.Fprintf(r.out, "选择分类编号（回车跳过）: ")

	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return models.CategoryUncategorized
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return models.CategoryUncategorized
	}

	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(r.categories) {
		return models.CategoryUncategorized
	}
	return r.categories[idx-1].Name
}
