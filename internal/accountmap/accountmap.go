// Package accountmap maps free-text payment-method strings to canonical
// account names using an ordered substring rule table.
package accountmap

import (
	"strings"

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

// NoMatchPolicy selects what Map returns when no rule matches and no
// default applies. The observed platforms diverge here, so the policy is a
// per-mapper configuration choice rather than one shared behavior.
type NoMatchPolicy int

const (
	// NoMatchSentinel returns models.AccountUnknown on a miss.
	NoMatchSentinel NoMatchPolicy = iota
	// NoMatchPassthrough returns the raw input unchanged on a miss.
	NoMatchPassthrough
)

// Mapper resolves raw payment-method strings against an ordered rule table.
// Map is a pure function of its input, the rule order, and the construction
// options; rule order must be preserved for reproducibility.
type Mapper struct {
	rules          []store.AccountRule
	defaultAccount string
	policy         NoMatchPolicy
}

// New creates a Mapper. defaultAccount is the platform's wallet account used
// for empty or placeholder input; pass "" for platforms without one.
func New(rules []store.AccountRule, defaultAccount string, policy NoMatchPolicy) *Mapper {
	return &Mapper{
		rules:          rules,
		defaultAccount: defaultAccount,
		policy:         policy,
	}
}

// Map resolves a raw account string to a canonical account name. The first
// rule whose keyword is a substring of the input wins; this is first-match,
// not longest-match.
func (m *Mapper) Map(raw string) string {
	raw = strings.TrimSpace(raw)

	if raw == "" || raw == "/" {
		if m.defaultAccount != "" {
			return m.defaultAccount
		}
		if m.policy == NoMatchPassthrough {
			return raw
		}
		return models.AccountUnknown
	}

	for _, rule := range m.rules {
		if rule.Keyword != "" && strings.Contains(raw, rule.Keyword) {
			return rule.Account
		}
	}

	if m.policy == NoMatchPassthrough {
		return raw
	}
	log.WithField("account", raw).Debug("No account rule matched")
	return models.AccountUnknown
}
