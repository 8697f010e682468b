// Package wechatparser turns WeChat Pay bill exports into canonical
// transactions. WeChat exports come in two forms: delimited text with
// dash-marker title lines, or a spreadsheet with leading title rows above
// the header row.
package wechatparser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/penghee/alipay2moneywiz-sub001/internal/accountmap"
	"github.com/penghee/alipay2moneywiz-sub001/internal/categorizer"
	"github.com/penghee/alipay2moneywiz-sub001/internal/common"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/parsererror"
	"github.com/penghee/alipay2moneywiz-sub001/internal/xlsxutils"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Raw field names of the WeChat export.
const (
	fieldTime         = "交易时间"
	fieldType         = "交易类型"
	fieldCounterparty = "交易对方"
	fieldProduct      = "商品"
	fieldDirection    = "收/支"
	fieldAmount       = "金额(元)"
	fieldMethod       = "支付方式"
	fieldNote         = "备注"
)

const (
	markerPrefix = "----"
	directionOut = "支出"
	directionIn  = "收入"
	repayMark    = "还款"
)

// ExtractRecords reads the delimited-text form. Unlike Alipay, any
// dash-prefixed line counts as a skip marker regardless of content; every
// line seen after at least one marker belongs to the table.
func ExtractRecords(r io.Reader, strict bool) ([]models.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	var table strings.Builder
	markers := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, markerPrefix) {
			markers++
			continue
		}
		if markers == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		table.WriteString(line)
		table.WriteString("\n")
	}

	if markers == 0 {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformWechat),
			Reason:   "no title marker found",
		}
	}

	records, err := common.RecordsFromCSV(table.String(), strict)
	if err != nil {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformWechat),
			Reason:   "malformed bill table",
			Err:      err,
		}
	}
	return records, nil
}

// ExtractXLSX reads the spreadsheet form. Rows are scanned top-down for the
// first row containing the transaction-time column name; that row becomes
// the header and every later non-empty row a record.
func ExtractXLSX(r io.Reader) ([]models.RawRecord, error) {
	rows, err := xlsxutils.ReadRows(r)
	if err != nil {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformWechat),
			Reason:   "unreadable workbook",
			Err:      err,
		}
	}

	headerIdx := xlsxutils.FindHeaderRow(rows, fieldTime)
	if headerIdx < 0 {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformWechat),
			Reason:   "no header row with " + fieldTime + " found",
		}
	}
	return xlsxutils.RecordsFromRows(rows, headerIdx), nil
}

// Converter normalizes WeChat raw records into canonical transactions.
type Converter struct {
	Accounts *accountmap.Mapper
	Resolver categorizer.Resolver
	Strict   bool
}

// NewConverter creates a Converter. WeChat uses the sentinel no-match
// policy with the change-wallet default.
func NewConverter(accounts *accountmap.Mapper, resolver categorizer.Resolver) *Converter {
	return &Converter{Accounts: accounts, Resolver: resolver}
}

// Convert maps raw records to canonical transactions.
func (c *Converter) Convert(records []models.RawRecord) []models.Transaction {
	transactions := make([]models.Transaction, 0, len(records))
	for _, record := range records {
		transactions = append(transactions, c.convertRecord(record))
	}
	return transactions
}

func (c *Converter) convertRecord(record models.RawRecord) models.Transaction {
	txType := record.Get(fieldType)
	product := record.Get(fieldProduct)
	counterparty := record.Get(fieldCounterparty)
	amount := models.ParseAmount(record.Get(fieldAmount))

	tx := models.Transaction{
		Account:      c.Accounts.Map(record.Get(fieldMethod)),
		Description:  product,
		Counterparty: counterparty,
		Date:         models.FormatDate(record.Get(fieldTime)),
		Note:         record.Get(fieldNote),
	}

	switch record.Get(fieldDirection) {
	case directionOut:
		tx.Amount = amount.Abs().Neg()
		tx.Category = c.Resolver.Resolve(txType, product, counterparty, tx.Amount)
	case directionIn:
		tx.Amount = amount.Abs()
		tx.Category = c.Resolver.Resolve(txType, product, counterparty, tx.Amount)
	default:
		tx.TransferAccount = c.Accounts.Map(counterparty)
		tx.Amount = amount
		if strings.Contains(txType, repayMark) || strings.Contains(product, repayMark) {
			tx.Amount = amount.Abs().Neg()
		}
	}
	return tx
}

// ParseFile extracts and normalizes a WeChat export. The spreadsheet form
// is detected by file extension.
func (c *Converter) ParseFile(filePath string) ([]models.Transaction, error) {
	log.WithField("file", filePath).Info("Parsing WeChat bill export")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var records []models.RawRecord
	if isSpreadsheet(filePath) {
		records, err = ExtractXLSX(file)
	} else {
		records, err = ExtractRecords(file, c.Strict)
	}
	if err != nil {
		return nil, err
	}

	transactions := c.Convert(records)
	log.WithField("count", len(transactions)).Info("Successfully parsed WeChat bill export")
	return transactions, nil
}

func isSpreadsheet(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}
