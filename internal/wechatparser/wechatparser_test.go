package wechatparser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/penghee/alipay2moneywiz-sub001/internal/accountmap"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/parsererror"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

const sampleBill = `微信支付账单明细
微信昵称:[测试]
----------------------微信支付账单明细列表--------------------
交易时间,交易类型,交易对方,商品,收/支,金额(元),支付方式,当前状态,交易单号,商户单号,备注
2024-03-05 12:01:02,商户消费,美团平台商户,外卖订单,支出,¥25.50,零钱,支付成功,10001,20001,"/"
2024-03-06 09:30:00,微信红包,朋友,"/",收入,¥66.00,"/",已存入零钱,10002,20002,"/"
`

func testConverter() *Converter {
	rules := []store.AccountRule{
		{Keyword: "零钱", Account: models.AccountWechatWallet},
		{Keyword: "招商银行信用卡", Account: "招行信用卡"},
	}
	mapper := accountmap.New(rules, models.AccountWechatWallet, accountmap.NoMatchSentinel)
	classifier := categorizer.NewRuleClassifier([]store.CategoryConfig{
		{Name: "餐饮", Keywords: []string{"外卖"}},
		{Name: "人情", Keywords: []string{"红包"}},
	})
	return NewConverter(mapper, classifier)
}

func TestExtractRecords(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleBill), false)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "美团平台商户", records[0].Get("交易对方"))
	assert.Equal(t, "¥25.50", records[0].Get("金额(元)"))
}

func TestExtractRecordsNoMarker(t *testing.T) {
	_, err := ExtractRecords(strings.NewReader("交易时间,金额(元)\n2024-03-05,1.00\n"), false)
	require.Error(t, err)
	var parseErr *parsererror.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	titles := [][]any{
		{"微信支付账单明细"},
		{"微信昵称:[测试]"},
		{"起始时间:[2024-03-01 00:00:00]"},
		{},
		{"----------------------微信支付账单明细列表--------------------"},
		{"交易时间", "交易类型", "交易对方", "商品", "收/支", "金额(元)", "支付方式"},
		{"2024-03-05 12:01:02", "商户消费", "美团平台商户", "外卖订单", "支出", "¥25.50", "零钱"},
		{"2024-03-06 09:30:00", "微信红包", "朋友", "/", "收入", "¥66.00", "/"},
	}
	for i, row := range titles {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := ExtractXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "外卖订单", records[0].Get("商品"))
	assert.Equal(t, "收入", records[1].Get("收/支"))
}

func TestExtractXLSXNoHeader(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"不是账单"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ExtractXLSX(&buf)
	assert.Error(t, err)
}

func TestConvertSigns(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleBill), false)
	require.NoError(t, err)

	transactions := testConverter().Convert(records)
	require.Len(t, transactions, 2)

	expense := transactions[0]
	assert.Equal(t, models.AccountWechatWallet, expense.Account)
	assert.Equal(t, "餐饮", expense.Category)
	assert.Equal(t, "-25.5", expense.Amount.String())
	assert.Equal(t, "2024-03-05", expense.Date)

	income := transactions[1]
	assert.Equal(t, "人情", income.Category)
	assert.Equal(t, "66", income.Amount.String())
}

func TestConvertRepayment(t *testing.T) {
	record := models.RawRecord{
		"交易时间":  "2024-03-08 10:00:00",
		"交易类型":  "信用卡还款",
		"交易对方":  "招商银行信用卡",
		"收/支":   "/",
		"金额(元)": "¥800.00",
		"支付方式":  "零钱",
	}
	tx := testConverter().Convert([]models.RawRecord{record})[0]
	assert.True(t, tx.IsTransfer())
	assert.Equal(t, "招行信用卡", tx.TransferAccount)
	assert.Empty(t, tx.Category)
	assert.True(t, tx.Amount.IsNegative())
}
