// Package factory wires platform-specific converters from the shared
// mapping tables and a category resolver. It acts as the single place where
// each platform's account-mapper policy and default wallet live.
package factory

import (
	"fmt"

	"github.com/penghee/alipay2moneywiz-sub001/internal/accountmap"
	"github.com/penghee/alipay2moneywiz-sub001/internal/alipayparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/icostparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/jdparser"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
	"github.com/penghee/alipay2moneywiz-sub001/internal/wechatparser"
)

// Converter is the file-level contract every platform converter satisfies.
type Converter interface {
	ParseFile(filePath string) ([]models.Transaction, error)
}

// NewAccountMapper builds the account mapper for a platform. Each platform
// carries its observed default wallet account and no-match policy.
func NewAccountMapper(platform models.Platform, rules []store.AccountRule) (*accountmap.Mapper, error) {
	switch platform {
	case models.PlatformAlipay:
		return accountmap.New(rules, models.AccountAlipayBalance, accountmap.NoMatchSentinel), nil
	case models.PlatformWechat:
		return accountmap.New(rules, models.AccountWechatWallet, accountmap.NoMatchSentinel), nil
	case models.PlatformJD:
		return accountmap.New(rules, models.AccountJDWallet, accountmap.NoMatchPassthrough), nil
	case models.PlatformIcost:
		return accountmap.New(rules, "", accountmap.NoMatchPassthrough), nil
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}

// NewRuleClassifier builds the rule classifier for a platform. JD gets its
// extra platform-category lookup table.
func NewRuleClassifier(platform models.Platform, categories []store.CategoryConfig) *categorizer.RuleClassifier {
	if platform == models.PlatformJD {
		return categorizer.NewRuleClassifierWithTable(categories, jdparser.PlatformCategories)
	}
	return categorizer.NewRuleClassifier(categories)
}

// NewConverter builds the converter for a platform over the given mapper
// and resolver. strict makes rows with an unexpected field count an error
// instead of being truncated.
func NewConverter(platform models.Platform, accounts *accountmap.Mapper, resolver categorizer.Resolver, strict bool) (Converter, error) {
	switch platform {
	case models.PlatformAlipay:
		c := alipayparser.NewConverter(accounts, resolver)
		c.Strict = strict
		return c, nil
	case models.PlatformWechat:
		c := wechatparser.NewConverter(accounts, resolver)
		c.Strict = strict
		return c, nil
	case models.PlatformJD:
		c := jdparser.NewConverter(accounts, resolver)
		c.Strict = strict
		return c, nil
	case models.PlatformIcost:
		c := icostparser.NewConverter(accounts, resolver)
		c.Strict = strict
		return c, nil
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}
