package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "12.50", "12.5"},
		{"currency symbol", "¥23.00", "23"},
		{"fullwidth symbol", "￥8.80", "8.8"},
		{"negative", "-100.00", "-100"},
		{"thousand separator", "1,234.56", "1234.56"},
		{"garbage", "abc", "0"},
		{"empty", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := decimal.NewFromString(tt.want)
			assert.NoError(t, err)
			assert.True(t, ParseAmount(tt.input).Equal(want),
				"ParseAmount(%q) = %s, want %s", tt.input, ParseAmount(tt.input), want)
		})
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-03-05 14:22:01", "2024-03-05"},
		{"2024/3/5 14:22", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"2024年3月5日", "2024-03-05"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(tt.input), "input %q", tt.input)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "14:22:01", FormatTime("2024-03-05 14:22:01"))
	assert.Equal(t, "", FormatTime("2024-03-05"))
	assert.Equal(t, "", FormatTime("nonsense"))
}

func TestTransactionPredicates(t *testing.T) {
	expense := Transaction{Amount: decimal.NewFromInt(-30), Category: "餐饮"}
	assert.True(t, expense.IsExpense())
	assert.False(t, expense.IsTransfer())

	transfer := Transaction{Amount: decimal.NewFromInt(-500), TransferAccount: "招商银行信用卡"}
	assert.True(t, transfer.IsTransfer())
}

func TestPlatformValid(t *testing.T) {
	assert.True(t, PlatformAlipay.Valid())
	assert.True(t, Platform("jd").Valid())
	assert.False(t, Platform("paypal").Valid())
}
