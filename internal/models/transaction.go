// Package models provides the data structures used throughout the application.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical, platform-independent record written to
// ledger files. Exactly one of Category or TransferAccount carries meaning:
// a categorized income/expense leaves TransferAccount empty, a transfer or
// repayment leaves Category empty.
type Transaction struct {
	Account         string          `csv:"account"`         // Canonical account name
	TransferAccount string          `csv:"transferAccount"` // Destination account for transfers
	Description     string          `csv:"description"`     // Description of the transaction
	Counterparty    string          `csv:"counterparty"`    // Merchant or other party
	Category        string          `csv:"category"`        // Spending category
	Date            string          `csv:"date"`            // Date in YYYY-MM-DD format
	Time            string          `csv:"time"`            // Optional time of day (HH:MM:SS)
	Note            string          `csv:"note"`            // Free-form note
	Tags            string          `csv:"tags"`            // Tag list, semicolon separated
	Amount          decimal.Decimal `csv:"amount"`          // Signed amount: expense < 0, income >= 0
}

// IsTransfer reports whether the transaction moves funds between two owned
// accounts rather than against a category.
func (t *Transaction) IsTransfer() bool {
	return t.TransferAccount != ""
}

// IsExpense reports whether the transaction is an outflow.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// ParseAmount parses a raw amount string into a decimal value. Currency
// symbols, thousand separators and surrounding whitespace are stripped
// first. Unparseable input yields zero.
func ParseAmount(amountStr string) decimal.Decimal {
	amount := strings.TrimSpace(amountStr)
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "¥", "")
	amount = strings.ReplaceAll(amount, "￥", "")
	amount = strings.ReplaceAll(amount, "CNY", "")
	amount = strings.ReplaceAll(amount, "元", "")
	amount = strings.ReplaceAll(amount, ",", "")

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero
	}
	return dec
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateFormats lists the date layouts observed across the supported
// platforms, most specific first.
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006年01月02日",
	"2006年1月2日",
	"02.01.2006",
}

// ParseDate parses a platform date string with a permissive format list.
func ParseDate(dateStr string) (time.Time, error) {
	clean := strings.TrimSpace(dateStr)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, clean); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidDateError{Value: dateStr}
}

// FormatDate normalizes a platform date string to YYYY-MM-DD. Input already
// in that form is returned unchanged; unparseable input yields "".
func FormatDate(dateStr string) string {
	clean := strings.TrimSpace(dateStr)
	if clean == "" {
		return ""
	}
	if isoDatePattern.MatchString(clean) {
		return clean
	}
	t, err := ParseDate(clean)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatTime extracts the time-of-day portion of a platform date string.
// Returns "" when the string carries no time component.
func FormatTime(dateStr string) string {
	t, err := ParseDate(dateStr)
	if err != nil {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return ""
	}
	return t.Format("15:04:05")
}

// InvalidDateError reports a date string that matched none of the known
// layouts.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return "unable to parse date: " + e.Value
}
