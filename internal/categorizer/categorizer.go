// Package categorizer provides transaction category resolution: a
// keyword-substring rule classifier driven by the configured category map,
// an optional learned matcher layered on top of it, and an interactive
// correction wrapper for batch tools.
package categorizer

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Resolver resolves a transaction's category from its type label, product
// or description text, counterparty, and signed amount. The ingestion path
// always uses a non-blocking resolver; InteractiveResolver is reserved for
// batch tools.
type Resolver interface {
	Resolve(txType, product, counterparty string, amount decimal.Decimal) string
}

// RuleClassifier is the keyword-substring classifier driven by the
// configured category map. Category order and keyword order within a
// category decide ties: the first hit wins.
type RuleClassifier struct {
	categories []store.CategoryConfig
	// platformTable maps a platform's own category label to a canonical
	// category. It is consulted after the keyword map misses and before
	// the raw type label fallback; only JD configures one.
	platformTable map[string]string
}

// NewRuleClassifier creates a classifier over the ordered category map.
func NewRuleClassifier(categories []store.CategoryConfig) *RuleClassifier {
	return &RuleClassifier{categories: categories}
}

// NewRuleClassifierWithTable creates a classifier with an additional
// platform-category lookup table.
func NewRuleClassifierWithTable(categories []store.CategoryConfig, table map[string]string) *RuleClassifier {
	return &RuleClassifier{categories: categories, platformTable: table}
}

// Classify returns the category for the given transaction fields. The
// search string is the lowercased concatenation of all three inputs; the
// first category whose any keyword is a substring of it wins. On a miss the
// platform table is consulted, then the non-empty type label is returned
// verbatim, then the uncategorized sentinel.
func (c *RuleClassifier) Classify(txType, product, counterparty string) string {
	search := strings.ToLower(txType + " " + product + " " + counterparty)

	for _, category := range c.categories {
		for _, keyword := range category.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(search, strings.ToLower(keyword)) {
				return category.Name
			}
		}
	}

	if c.platformTable != nil {
		if mapped, ok := c.platformTable[txType]; ok {
			return mapped
		}
	}

	if txType != "" {
		return txType
	}
	return models.CategoryUncategorized
}

// Resolve implements Resolver. The rule classifier ignores the amount.
func (c *RuleClassifier) Resolve(txType, product, counterparty string, _ decimal.Decimal) string {
	return c.Classify(txType, product, counterparty)
}

// SmartMatcher is the learned matcher capability the smart resolver layers
// over the rule classifier. Match reports ok=false when its scoring is
// inconclusive and the caller must fall back.
type SmartMatcher interface {
	Match(txType, product, counterparty string, amount decimal.Decimal) (string, bool)
}

// SmartResolver tries the learned matcher first and falls back to the rule
// classifier with the same inputs when the matcher is inconclusive.
type SmartResolver struct {
	matcher SmartMatcher
	rules   *RuleClassifier
}

// NewSmartResolver creates a SmartResolver.
func NewSmartResolver(matcher SmartMatcher, rules *RuleClassifier) *SmartResolver {
	return &SmartResolver{matcher: matcher, rules: rules}
}

// Resolve implements Resolver.
func (r *SmartResolver) Resolve(txType, product, counterparty string, amount decimal.Decimal) string {
	if r.matcher != nil {
		if category, ok := r.matcher.Match(txType, product, counterparty, amount); ok {
			log.WithFields(logrus.Fields{
				"category":     category,
				"counterparty": counterparty,
			}).Debug("Smart matcher resolved category")
			return category
		}
	}
	return r.rules.Resolve(txType, product, counterparty, amount)
}
