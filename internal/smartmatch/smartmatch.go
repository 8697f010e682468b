// Package smartmatch implements the adaptive category matcher. It learns
// per-category patterns (keywords, counterparties, amount inlier bands) from
// historical ledger transactions and scores new transactions against them.
//
// A Matcher is built once by a full scan of history and is immutable
// afterwards; rebuilding is the only refresh path. A built Matcher is safe
// for concurrent reads, but a rebuild must not race with readers without
// external synchronization.
package smartmatch

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/textutils"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// CategoryPattern is the learned signature of one category.
type CategoryPattern struct {
	Keywords       map[string]struct{}
	Counterparties map[string]struct{}
	AmountRanges   [][2]float64 // inlier bands over |amount|
	Confidence     float64      // min(1, samples/10)
	SampleCount    int
}

// Matcher scores transactions against learned category patterns.
type Matcher struct {
	patterns map[string]*CategoryPattern
}

// scoring weights and the acceptance margin over the runner-up score.
const (
	keywordWeight      = 2.0
	exactTextWeight    = 5.0
	counterpartyWeight = 3.0
	amountWeight       = 1.0
	acceptMargin       = 1.5
	confidenceSamples  = 10
)

// Build performs a full scan of historical transactions and derives one
// pattern per category. Transactions in the uncategorized and transfer
// buckets, and transfer legs without a category, contribute nothing.
func Build(history []models.Transaction) *Matcher {
	type accumulator struct {
		keywords       map[string]struct{}
		counterparties map[string]struct{}
		amounts        []float64
	}
	acc := make(map[string]*accumulator)

	for _, tx := range history {
		category := tx.Category
		if category == "" || category == models.CategoryUncategorized || category == models.CategoryTransfer {
			continue
		}
		a, ok := acc[category]
		if !ok {
			a = &accumulator{
				keywords:       make(map[string]struct{}),
				counterparties: make(map[string]struct{}),
			}
			acc[category] = a
		}
		for _, token := range textutils.Tokenize(tx.Description) {
			a.keywords[token] = struct{}{}
		}
		if cp := strings.ToLower(strings.TrimSpace(tx.Counterparty)); cp != "" {
			a.counterparties[cp] = struct{}{}
		}
		amount, _ := tx.Amount.Abs().Float64()
		a.amounts = append(a.amounts, amount)
	}

	patterns := make(map[string]*CategoryPattern, len(acc))
	for category, a := range acc {
		pattern := &CategoryPattern{
			Keywords:       a.keywords,
			Counterparties: a.counterparties,
			SampleCount:    len(a.amounts),
			Confidence:     math.Min(1, float64(len(a.amounts))/confidenceSamples),
		}
		if band, ok := inlierBand(a.amounts); ok {
			pattern.AmountRanges = append(pattern.AmountRanges, band)
		}
		patterns[category] = pattern
	}

	log.WithField("categories", len(patterns)).Debug("Built smart matcher patterns")
	return &Matcher{patterns: patterns}
}

// inlierBand computes [max(0, Q1-1.5*IQR), Q3+1.5*IQR] over the samples.
func inlierBand(amounts []float64) ([2]float64, bool) {
	if len(amounts) == 0 {
		return [2]float64{}, false
	}
	sorted := append([]float64(nil), amounts...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	return [2]float64{math.Max(0, q1-1.5*iqr), q3 + 1.5*iqr}, true
}

// percentile returns the p-quantile of sorted samples using linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Patterns returns the learned pattern for a category, for inspection.
func (m *Matcher) Patterns(category string) (*CategoryPattern, bool) {
	p, ok := m.patterns[category]
	return p, ok
}

// Match scores the transaction against every learned category and returns
// the best category. ok is false when scoring is inconclusive: no category
// scored, or the best score does not exceed the runner-up by more than 50%.
// Callers must then fall back to the rule-based classifier.
func (m *Matcher) Match(txType, product, counterparty string, amount decimal.Decimal) (string, bool) {
	combined := strings.ToLower(strings.TrimSpace(txType + " " + product))
	cp := strings.ToLower(strings.TrimSpace(counterparty))
	absAmount, _ := amount.Abs().Float64()

	var best, runnerUp float64
	var bestCategory string
	nonzero := 0

	for category, pattern := range m.patterns {
		score := m.score(pattern, combined, cp, absAmount)
		if score <= 0 {
			continue
		}
		nonzero++
		if score > best {
			runnerUp = best
			best = score
			bestCategory = category
		} else if score > runnerUp {
			runnerUp = score
		}
	}

	if nonzero == 0 {
		return "", false
	}
	if nonzero > 1 && best <= runnerUp*acceptMargin {
		log.WithFields(logrus.Fields{
			"best":     bestCategory,
			"score":    best,
			"runnerUp": runnerUp,
		}).Debug("Smart match inconclusive")
		return "", false
	}
	return bestCategory, true
}

func (m *Matcher) score(pattern *CategoryPattern, combined, counterparty string, absAmount float64) float64 {
	var score float64

	for keyword := range pattern.Keywords {
		if strings.Contains(combined, keyword) {
			score += keywordWeight
		}
		if combined == keyword {
			score += exactTextWeight
		}
	}

	if counterparty != "" {
		for known := range pattern.Counterparties {
			if strings.Contains(known, counterparty) || strings.Contains(counterparty, known) {
				score += counterpartyWeight
			}
		}
	}

	for _, band := range pattern.AmountRanges {
		if absAmount >= band[0] && absAmount <= band[1] {
			score += amountWeight
			break
		}
	}

	return score * pattern.Confidence
}
