// Package xlsxutils provides shared helpers for the spreadsheet form of
// platform exports: reading the first worksheet and locating the header row
// among leading title rows.
package xlsxutils

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
)

// ReadRows reads every row of the first worksheet.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// FindHeaderRow returns the index of the first row with a cell equal to
// token, or -1 when no row qualifies. Rows before it are title rows.
func FindHeaderRow(rows [][]string, token string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == token {
				return i
			}
		}
	}
	return -1
}

// RecordsFromRows converts the rows after headerIdx into raw records using
// row headerIdx as field names. Empty rows are skipped and absent trailing
// cells are zero-filled with "".
func RecordsFromRows(rows [][]string, headerIdx int) []models.RawRecord {
	header := rows[headerIdx]
	var records []models.RawRecord
	for _, row := range rows[headerIdx+1:] {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		record := make(models.RawRecord, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
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
	return records
}
