package alipayparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/penghee/alipay2moneywiz-sub001/internal/accountmap"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/parsererror"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

const sampleBill = `支付宝交易记录明细查询
起始时间:[2024-03-01 00:00:00]
------------------------支付宝（中国）网络技术有限公司  电子客户回单------------------------
交易时间,交易分类,交易对方,商品说明,收/支,金额,收/付款方式,交易状态,备注,
2024-03-05 12:01:02,餐饮美食,美团,外卖订单,支出,25.50,招商银行储蓄卡(1234),交易成功,,
2024-03-06 09:30:00,商业服务,某公司,工资,收入,8000.00,/,交易成功,,
`

func testConverter() *Converter {
	rules := []store.AccountRule{
		{Keyword: "招商银行储蓄卡", Account: "招行储蓄卡"},
		{Keyword: "招商银行信用卡", Account: "招行信用卡"},
	}
	mapper := accountmap.New(rules, models.AccountAlipayBalance, accountmap.NoMatchSentinel)
	classifier := categorizer.NewRuleClassifier([]store.CategoryConfig{
		{Name: "餐饮", Keywords: []string{"外卖", "美食"}},
		{Name: "工资", Keywords: []string{"工资"}},
	})
	return NewConverter(mapper, classifier)
}

func TestExtractRecords(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleBill), false)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "美团", records[0].Get("交易对方"))
	assert.Equal(t, "25.50", records[0].Get("金额"))
	assert.Equal(t, "收入", records[1].Get("收/支"))
}

func TestExtractRecordsGBK(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(sampleBill))
	require.NoError(t, err)

	records, err := ExtractRecords(strings.NewReader(string(encoded)), false)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "外卖订单", records[0].Get("商品说明"))
}

func TestExtractRecordsNoMarker(t *testing.T) {
	_, err := ExtractRecords(strings.NewReader("交易时间,金额\n2024-03-05,1.00\n"), false)
	require.Error(t, err)
	var parseErr *parsererror.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestExtractRecordsMarkerWithoutSignature(t *testing.T) {
	bill := "------------------------其他分隔线------------------------\n交易时间,金额\n2024-03-05,1.00\n"
	_, err := ExtractRecords(strings.NewReader(bill), false)
	assert.Error(t, err)
}

func TestExtractRecordsStrictRowShape(t *testing.T) {
	bill := `------------------------支付宝账单------------------------
交易时间,金额,
2024-03-05 12:01:02,25.50,多余字段,
`
	records, err := ExtractRecords(strings.NewReader(bill), false)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = ExtractRecords(strings.NewReader(bill), true)
	require.Error(t, err)
	var parseErr *parsererror.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestExtractRecordsClosedShortCircuit(t *testing.T) {
	bill := `------------------------支付宝账单------------------------
交易时间,交易分类,交易对方,商品说明,收/支,金额,收/付款方式,交易状态,备注,
2024-03-05 12:01:02,餐饮美食,美团,外卖订单,支出,25.50,余额,交易成功,,
2024-03-05 13:00:00,餐饮美食,饿了么,外卖订单,支出,18.00,余额,交易关闭,,
2024-03-06 09:00:00,日用百货,淘宝,纸巾,支出,9.90,余额,交易成功,,
`
	records, err := ExtractRecords(strings.NewReader(bill), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "美团", records[0].Get("交易对方"))
}

func TestConvertSignsAndCategories(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleBill), false)
	require.NoError(t, err)

	transactions := testConverter().Convert(records)
	require.Len(t, transactions, 2)

	expense := transactions[0]
	assert.Equal(t, "招行储蓄卡", expense.Account)
	assert.Equal(t, "餐饮", expense.Category)
	assert.Equal(t, "2024-03-05", expense.Date)
	assert.True(t, expense.Amount.IsNegative())
	assert.Equal(t, "-25.5", expense.Amount.String())

	income := transactions[1]
	assert.Equal(t, models.AccountAlipayBalance, income.Account)
	assert.Equal(t, "工资", income.Category)
	assert.True(t, income.Amount.IsPositive())
}

func TestConvertTransferAndRepayment(t *testing.T) {
	bill := `------------------------支付宝账单------------------------
交易时间,交易分类,交易对方,商品说明,收/支,金额,收/付款方式,交易状态,备注,
2024-03-07 10:00:00,转账,招商银行储蓄卡,余额宝-转出,不计收支,500.00,支付宝余额,交易成功,,
2024-03-08 10:00:00,信用借还,招商银行信用卡,信用卡还款,不计收支,800.00,招商银行储蓄卡(1234),交易成功,,
`
	records, err := ExtractRecords(strings.NewReader(bill), false)
	require.NoError(t, err)

	transactions := testConverter().Convert(records)
	require.Len(t, transactions, 2)

	transfer := transactions[0]
	assert.True(t, transfer.IsTransfer())
	assert.Empty(t, transfer.Category)
	assert.Equal(t, "招行储蓄卡", transfer.TransferAccount)

	repayment := transactions[1]
	assert.True(t, repayment.IsTransfer())
	assert.Equal(t, "招行信用卡", repayment.TransferAccount)
	assert.True(t, repayment.Amount.IsNegative())
}

func TestConvertUnknownAccountSentinel(t *testing.T) {
	record := models.RawRecord{
		"交易时间":   "2024-03-05 12:00:00",
		"收/支":    "支出",
		"金额":     "10.00",
		"收/付款方式": "花呗",
	}
	tx := testConverter().Convert([]models.RawRecord{record})[0]
	assert.Equal(t, models.AccountUnknown, tx.Account)
}

func TestParseFileAndValidateFormat(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "alipay.csv")
	require.NoError(t, os.WriteFile(good, []byte(sampleBill), 0644))

	transactions, err := testConverter().ParseFile(good)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)

	ok, err := ValidateFormat(good)
	require.NoError(t, err)
	assert.True(t, ok)

	bad := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(bad, []byte("date,amount\n2024-03-05,1\n"), 0644))
	ok, err = ValidateFormat(bad)
	require.NoError(t, err)
	assert.False(t, ok)
}
