// Package common provides shared CSV functionality across the platform
// parsers and the ledger writer.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// RecordsFromCSV parses delimited text whose first line is a header row
// into raw records keyed by header field name. Short rows are zero-filled;
// in strict mode a row with more fields than the header is an error.
func RecordsFromCSV(text string, strict bool) ([]models.RawRecord, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV data has no header row")
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []models.RawRecord
	for _, row := range rows[1:] {
		if len(row) > len(header) {
			if strict {
				return nil, fmt.Errorf("row has %d fields, header has %d", len(row), len(header))
			}
			row = row[:len(header)]
		}
		record := make(models.RawRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				record[name] = strings.TrimSpace(row[i])
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadTransactionsFile reads a ledger CSV file back into canonical
// transactions using gocsv.
func ReadTransactionsFile(filePath string) ([]models.Transaction, error) {
	log.WithField("file", filePath).Debug("Reading ledger CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening ledger file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var transactions []models.Transaction
	if err := gocsv.UnmarshalFile(file, &transactions); err != nil {
		return nil, fmt.Errorf("error parsing ledger file: %w", err)
	}
	return transactions, nil
}

// WriteTransactionsToCSV writes transactions to a CSV file in the fixed
// ledger column order. All writers use this function so readers can rely on
// an identical header across files.
func WriteTransactionsToCSV(transactions []models.Transaction, csvFile string) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	log.WithFields(logrus.Fields{
		"file":  csvFile,
		"count": len(transactions),
	}).Info("Writing transactions to CSV file")

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	writer := csv.NewWriter(file)
	if err := gocsv.MarshalCSV(&transactions, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
