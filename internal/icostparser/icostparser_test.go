package icostparser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/penghee/alipay2moneywiz-sub001/internal/accountmap"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

const sampleExport = `----------------------iCost记账导出----------------------
日期,类型,金额,分类,账户1,账户2,商家,备注,标签
2024-03-05 12:01:02,支出,25.50,餐饮,支付宝,,美团,外卖午餐,日常
2024-03-06 09:30:00,收入,8000.00,工资,招商银行储蓄卡,,公司,三月工资,
2024-03-07 10:00:00,转账,500.00,,招商银行储蓄卡,支付宝,,,
2024-03-08 10:00:00,还款,800.00,,招商银行储蓄卡,招商银行信用卡,,,
2024-03-09 15:00:00,退款入账,25.50,餐饮,支付宝,,美团,,
`

func testConverter() *Converter {
	rules := []store.AccountRule{
		{Keyword: "招商银行信用卡", Account: "招行信用卡"},
		{Keyword: "招商银行储蓄卡", Account: "招行储蓄卡"},
	}
	mapper := accountmap.New(rules, "", accountmap.NoMatchPassthrough)
	classifier := categorizer.NewRuleClassifier([]store.CategoryConfig{
		{Name: "餐饮", Keywords: []string{"餐饮", "外卖"}},
		{Name: "工资", Keywords: []string{"工资"}},
	})
	return NewConverter(mapper, classifier)
}

func TestExtractRecords(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleExport), false)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "美团", records[0].Get("商家"))
	assert.Equal(t, "日常", records[0].Get("标签"))
}

func TestExtractRecordsEmpty(t *testing.T) {
	_, err := ExtractRecords(strings.NewReader("----------------------标题----------------------\n"), false)
	assert.Error(t, err)
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"iCost记账导出"},
		{"日期", "类型", "金额", "分类", "账户1", "账户2", "商家", "备注", "标签"},
		{"2024-03-05 12:01:02", "支出", "25.50", "餐饮", "支付宝", "", "美团", "外卖午餐", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := ExtractXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "外卖午餐", records[0].Get("备注"))
}

func TestConvertExpenseAndIncome(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleExport), false)
	require.NoError(t, err)
	transactions := testConverter().Convert(records)
	require.Len(t, transactions, 5)

	expense := transactions[0]
	// Passthrough policy keeps the raw account name.
	assert.Equal(t, "支付宝", expense.Account)
	assert.Equal(t, "外卖午餐", expense.Description)
	assert.Equal(t, "餐饮", expense.Category)
	assert.Equal(t, "2024-03-05", expense.Date)
	assert.Equal(t, "12:01:02", expense.Time)
	assert.Equal(t, "日常", expense.Tags)
	assert.Equal(t, "-25.5", expense.Amount.String())

	income := transactions[1]
	assert.Equal(t, "招行储蓄卡", income.Account)
	assert.Equal(t, "工资", income.Category)
	assert.True(t, income.Amount.IsPositive())
}

func TestConvertTransferLegs(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleExport), false)
	require.NoError(t, err)
	transactions := testConverter().Convert(records)

	transfer := transactions[2]
	assert.True(t, transfer.IsTransfer())
	assert.Equal(t, "招行储蓄卡", transfer.Account)
	assert.Equal(t, "支付宝", transfer.TransferAccount)
	assert.Empty(t, transfer.Category)
	assert.True(t, transfer.Amount.IsPositive())
}

func TestConvertRepaymentNegative(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleExport), false)
	require.NoError(t, err)
	transactions := testConverter().Convert(records)

	repayment := transactions[3]
	assert.True(t, repayment.IsTransfer())
	assert.Equal(t, "招行信用卡", repayment.TransferAccount)
	assert.True(t, repayment.Amount.IsNegative())
}

func TestConvertRefundSynthesizesDescription(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleExport), false)
	require.NoError(t, err)
	transactions := testConverter().Convert(records)

	refund := transactions[4]
	assert.Equal(t, "餐饮退款", refund.Description)
	assert.Equal(t, "餐饮", refund.Category)
	assert.True(t, refund.Amount.IsPositive())
	assert.False(t, refund.IsTransfer())
}
