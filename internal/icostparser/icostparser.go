// Package icostparser turns icost bookkeeping exports into canonical
// transactions. icost exports come as delimited text with dash-marker title
// lines or as a spreadsheet whose header row is located by the date column.
package icostparser

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

// Raw field names of the icost export.
const (
	fieldDate         = "日期"
	fieldType         = "类型"
	fieldAmount       = "金额"
	fieldCategory     = "分类"
	fieldAccountFrom  = "账户1"
	fieldAccountTo    = "账户2"
	fieldCounterparty = "商家"
	fieldNote         = "备注"
	fieldTags         = "标签"
)

const (
	markerPrefix = "----"
	typeExpense  = "支出"
	typeIncome   = "收入"
	typeTransfer = "转账"
	typeRepay    = "还款"
	typeRefund   = "退款入账"
	repayMark    = "还款"
	refundSuffix = "退款"
)

// ExtractRecords reads the delimited-text form, skipping dash-prefixed
// title lines wherever they appear.
func ExtractRecords(r io.Reader, strict bool) ([]models.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	var table strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		// Title lines are skipped wherever they appear; icost does not
		// gate the table on having seen a marker first.
		if strings.HasPrefix(line, markerPrefix) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.WriteString(line)
		table.WriteString("\n")
	}

	if table.Len() == 0 {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformIcost),
			Reason:   "empty export",
		}
	}

	records, err := common.RecordsFromCSV(table.String(), strict)
	if err != nil {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformIcost),
			Reason:   "malformed export table",
			Err:      err,
		}
	}
	return records, nil
}

// ExtractXLSX reads the spreadsheet form, locating the header row by the
// presence of the date column name.
func ExtractXLSX(r io.Reader) ([]models.RawRecord, error) {
	rows, err := xlsxutils.ReadRows(r)
	if err != nil {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformIcost),
			Reason:   "unreadable workbook",
			Err:      err,
		}
	}

	headerIdx := xlsxutils.FindHeaderRow(rows, fieldDate)
	if headerIdx < 0 {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformIcost),
			Reason:   "no header row with " + fieldDate + " found",
		}
	}
	return xlsxutils.RecordsFromRows(rows, headerIdx), nil
}

// Converter normalizes icost raw records into canonical transactions.
type Converter struct {
	Accounts *accountmap.Mapper
	Resolver categorizer.Resolver
	Strict   bool
}

// NewConverter creates a Converter. icost uses the passthrough no-match
// policy and has no default wallet account.
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
	counterparty := record.Get(fieldCounterparty)
	amount := models.ParseAmount(record.Get(fieldAmount))
	rawDate := record.Get(fieldDate)

	tx := models.Transaction{
		Account:      c.Accounts.Map(record.Get(fieldAccountFrom)),
		Counterparty: counterparty,
		Date:         models.FormatDate(rawDate),
		Time:         models.FormatTime(rawDate),
		Note:         record.Get(fieldNote),
		Tags:         record.Get(fieldTags),
	}

	switch txType {
	case typeExpense:
		tx.Amount = amount.Abs().Neg()
		tx.Description = record.Get(fieldNote)
		tx.Category = c.Resolver.Resolve(record.Get(fieldCategory), tx.Description, counterparty, tx.Amount)
	case typeIncome:
		tx.Amount = amount.Abs()
		tx.Description = record.Get(fieldNote)
		tx.Category = c.Resolver.Resolve(record.Get(fieldCategory), tx.Description, counterparty, tx.Amount)
	case typeRefund:
		// A refund credit gets a synthesized description rather than the
		// raw text: "<resolved category>退款".
		tx.Amount = amount.Abs()
		category := c.Resolver.Resolve(record.Get(fieldCategory), record.Get(fieldNote), counterparty, tx.Amount)
		tx.Category = category
		tx.Description = category + refundSuffix
	default:
		// Transfers and repayments move funds between two owned accounts.
		tx.TransferAccount = c.Accounts.Map(record.Get(fieldAccountTo))
		tx.Description = record.Get(fieldNote)
		tx.Amount = amount
		if txType == typeRepay || strings.Contains(record.Get(fieldNote), repayMark) {
			tx.Amount = amount.Abs().Neg()
		}
	}
	return tx
}

// ParseFile extracts and normalizes an icost export. The spreadsheet form
// is detected by file extension.
func (c *Converter) ParseFile(filePath string) ([]models.Transaction, error) {
	log.WithField("file", filePath).Info("Parsing icost export")

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
	log.WithField("count", len(transactions)).Info("Successfully parsed icost export")
	return transactions, nil
}

func isSpreadsheet(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}
