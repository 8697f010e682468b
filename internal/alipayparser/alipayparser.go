// Package alipayparser turns Alipay bill exports into canonical
// transactions. Alipay exports are GBK-encoded delimited text with leading
// metadata; the real table starts below a dash marker line carrying the
// platform's bill signature.
package alipayparser

import (
	"errors"
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
	"github.com/penghee/alipay2moneywiz-sub001/internal/textutils"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Raw field names of the Alipay export.
const (
	fieldTime         = "交易时间"
	fieldCategory     = "交易分类"
	fieldCounterparty = "交易对方"
	fieldProduct      = "商品说明"
	fieldDirection    = "收/支"
	fieldAmount       = "金额"
	fieldMethod       = "收/付款方式"
	fieldStatus       = "交易状态"
	fieldNote         = "备注"
)

const (
	markerPrefix  = "----"
	billSignature = "支付宝"
	statusClosed  = "交易关闭"
	directionOut  = "支出"
	directionIn   = "收入"
	repaymentMark = "还款"
)

// ExtractRecords reads an Alipay export and returns its raw records in file
// order. Collection of the batch stops at the first record whose status is
// "交易关闭": that record and everything after it is discarded. This
// short-circuit mirrors the upstream export convention and is intentional.
// In strict mode a row with more fields than the header is an error.
func ExtractRecords(r io.Reader, strict bool) ([]models.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	text, err := textutils.NormalizeEncoding(data)
	if err != nil {
		return nil, &parsererror.EncodingError{Platform: string(models.PlatformAlipay), Err: err}
	}

	var table strings.Builder
	started := false
	for _, line := range strings.Split(string(text), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, markerPrefix) {
			// Only the marker carrying the bill signature opens the table.
			if strings.Contains(line, billSignature) {
				started = true
			}
			continue
		}
		if !started || strings.TrimSpace(line) == "" {
			continue
		}
		// Every data line carries one trailing field separator.
		line = strings.TrimSuffix(line, ",")
		table.WriteString(line)
		table.WriteString("\n")
	}

	if !started {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformAlipay),
			Reason:   "no bill signature marker found",
		}
	}

	records, err := common.RecordsFromCSV(table.String(), strict)
	if err != nil {
		return nil, &parsererror.ParseError{
			Platform: string(models.PlatformAlipay),
			Reason:   "malformed bill table",
			Err:      err,
		}
	}

	for i, record := range records {
		if record.Get(fieldStatus) == statusClosed {
			log.WithField("row", i).Info("Closed transaction found, discarding remaining batch")
			return records[:i], nil
		}
	}
	return records, nil
}

// Converter normalizes Alipay raw records into canonical transactions.
type Converter struct {
	Accounts *accountmap.Mapper
	Resolver categorizer.Resolver
	Strict   bool
}

// NewConverter creates a Converter over the given mapper and resolver.
// Alipay uses the sentinel no-match policy with the balance wallet default.
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
	direction := record.Get(fieldDirection)
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

	switch direction {
	case directionOut:
		tx.Amount = amount.Abs().Neg()
		tx.Category = c.Resolver.Resolve(record.Get(fieldCategory), product, counterparty, tx.Amount)
	case directionIn:
		tx.Amount = amount.Abs()
		tx.Category = c.Resolver.Resolve(record.Get(fieldCategory), product, counterparty, tx.Amount)
	default:
		// Neither income nor expense: an inter-account transfer or a
		// repayment. Both legs go through the account mapper and the
		// category stays empty.
		tx.TransferAccount = c.Accounts.Map(counterparty)
		tx.Amount = amount
		// A repayment reduces balance even when the export reports a
		// positive raw amount.
		if strings.Contains(product, repaymentMark) || strings.Contains(record.Get(fieldCategory), repaymentMark) {
			tx.Amount = amount.Abs().Neg()
		}
	}
	return tx
}

// ParseFile extracts and normalizes an Alipay export file.
func (c *Converter) ParseFile(filePath string) ([]models.Transaction, error) {
	log.WithField("file", filePath).Info("Parsing Alipay bill export")

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
	log.WithField("count", len(transactions)).Info("Successfully parsed Alipay bill export")
	return transactions, nil
}

// ValidateFormat reports whether the file looks like an Alipay bill export.
func ValidateFormat(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	_, err = ExtractRecords(file, false)
	if err != nil {
		var parseErr *parsererror.ParseError
		var encErr *parsererror.EncodingError
		if errors.As(err, &parseErr) || errors.As(err, &encErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
