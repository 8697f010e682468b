// Package jdparser turns JD (京东) bill exports into canonical transactions.
// JD exports are delimited text with free-form preamble lines; the table
// starts at the line containing the transaction-time header token.
package jdparser

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
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Raw field names of the JD export.
const (
	fieldTime         = "交易时间"
	fieldMerchant     = "商户名称"
	fieldProduct      = "交易说明"
	fieldAmount       = "金额"
	fieldMethod       = "收/付款方式"
	fieldDirection    = "收/支"
	fieldCategory     = "交易分类"
	fieldNote         = "备注"
)

const (
	directionOut      = "支出"
	directionIn       = "收入"
	directionExcluded = "不计收支"
	repayMark         = "还款"
)

// PlatformCategories maps JD's own category labels to canonical categories.
// The rule classifier consults it after the keyword map misses and before
// falling back to the raw type label.
var PlatformCategories = map[string]string{
	"食品酒饮": "餐饮",
	"日用百货": "购物",
	"数码电器": "购物",
	"服饰内衣": "购物",
	"交通出行": "交通",
	"充值缴费": "生活缴费",
	"医疗保健": "医疗",
}

// ExtractRecords reads a JD export. Every line before the header token is
// preamble and is discarded; the header line and everything after it form
// the table. JD has no dash-marker convention.
func ExtractRecords(r io.Reader, strict bool) ([]models.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	var table strings.Builder
	started := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if !started {
			if strings.Contains(line, fieldTime) {
				started = true
			} else {
				continue
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.WriteString(line)
		table.WriteString("\n")
	}

	if !started {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformJD),
			Reason:   "no header line with " + fieldTime + " found",
		}
	}

	records, err := common.RecordsFromCSV(table.String(), strict)
	if err != nil {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformJD),
			Reason:   "malformed bill table",
			Err:      err,
		}
	}
	return records, nil
}

// Converter normalizes JD raw records into canonical transactions.
type Converter struct {
	Accounts *accountmap.Mapper
	Resolver categorizer.Resolver
	Strict   bool
}

// NewConverter creates a Converter. JD uses the passthrough no-match policy
// with the JD wallet default.
func NewConverter(accounts *accountmap.Mapper, resolver categorizer.Resolver) *Converter {
	return &Converter{Accounts: accounts, Resolver: resolver}
}

// Convert maps raw records to canonical transactions. Records flagged
// "不计收支" are dropped here, not during extraction.
func (c *Converter) Convert(records []models.RawRecord) []models.Transaction {
	transactions := make([]models.Transaction, 0, len(records))
	for _, record := range records {
		if record.Get(fieldDirection) == directionExcluded {
			continue
		}
		transactions = append(transactions, c.convertRecord(record))
	}
	return transactions
}

// cleanAmount strips the trailing parenthetical refund annotation JD
// appends, e.g. "23.50(已全额退款)".
func cleanAmount(raw string) string {
	if i := strings.IndexAny(raw, "(（"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func (c *Converter) convertRecord(record models.RawRecord) models.Transaction {
	product := record.Get(fieldProduct)
	counterparty := record.Get(fieldMerchant)
	amount := models.ParseAmount(cleanAmount(record.Get(fieldAmount)))

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
		tx.Category = c.Resolver.Resolve(record.Get(fieldCategory), product, counterparty, tx.Amount)
	case directionIn:
		tx.Amount = amount.Abs()
		tx.Category = c.Resolver.Resolve(record.Get(fieldCategory), product, counterparty, tx.Amount)
	default:
		tx.TransferAccount = c.Accounts.Map(counterparty)
		tx.Amount = amount
		if strings.Contains(product, repayMark) {
			tx.Amount = amount.Abs().Neg()
		}
	}
	return tx
}

// ParseFile extracts and normalizes a JD export file.
func (c *Converter) ParseFile(filePath string) ([]models.Transaction, error) {
	log.WithField("file", filePath).Info("Parsing JD bill export")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	records, err := ExtractRecords(file, c.Strict)
	if err != nil {
		return nil, err
	}

	transactions := c.Convert(records)
	log.WithField("count", len(transactions)).Info("Successfully parsed JD bill export")
	return transactions, nil
}
