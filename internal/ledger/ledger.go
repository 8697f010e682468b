// Package ledger writes canonical transactions into per-month aggregate
// files and per-platform per-month batch files, and reads them back for
// pattern learning and reporting.
//
// The month aggregate merge is a read-modify-write over the whole file.
// The writer performs no internal locking: two concurrent merges into the
// same month file race and can silently drop one batch. Callers must
// serialize writes per month file.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/penghee/alipay2moneywiz-sub001/internal/common"
	"github.com/penghee/alipay2moneywiz-sub001/internal/fileutils"
	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
		common.SetLogger(logger)
	}
}

// monthFilePattern matches month-aggregate file names; platform-suffixed
// batch files deliberately do not match.
var monthFilePattern = regexp.MustCompile(`^\d{4}-\d{2}\.csv$`)

// Writer merges transaction batches into the ledger directory.
type Writer struct {
	Dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// MonthFile returns the path of the month-aggregate file.
func (w *Writer) MonthFile(year, month int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("%04d-%02d.csv", year, month))
}

// PlatformFile returns the path of the per-platform batch file.
func (w *Writer) PlatformFile(year, month int, platform models.Platform) string {
	return filepath.Join(w.Dir, fmt.Sprintf("%04d-%02d-%s.csv", year, month, platform))
}

// Merge writes the batch to the per-platform file and folds it into the
// month aggregate. The aggregate is fully re-materialized: existing rows are
// parsed back, the batch is appended in memory, and the complete file is
// rewritten with header plus all rows.
func (w *Writer) Merge(batch []models.Transaction, year, month int, platform models.Platform) error {
	if err := fileutils.EnsureDirectoryExists(w.Dir); err != nil {
		return err
	}

	// The platform file always reflects exactly this import batch.
	if err := common.WriteTransactionsToCSV(batch, w.PlatformFile(year, month, platform)); err != nil {
		return fmt.Errorf("error writing platform file: %w", err)
	}

	monthFile := w.MonthFile(year, month)
	var existing []models.Transaction
	if fileutils.FileExists(monthFile) {
		var err error
		existing, err = common.ReadTransactionsFile(monthFile)
		if err != nil {
			return fmt.Errorf("error reading month file: %w", err)
		}
	}

	merged := append(existing, batch...)
	if err := common.WriteTransactionsToCSV(merged, monthFile); err != nil {
		return fmt.Errorf("error writing month file: %w", err)
	}

	log.WithFields(logrus.Fields{
		"file":     monthFile,
		"existing": len(existing),
		"added":    len(batch),
	}).Info("Merged batch into month ledger")
	return nil
}

// ReadMonth reads one month-aggregate file. A missing file yields an empty
// batch, not an error.
func (w *Writer) ReadMonth(year, month int) ([]models.Transaction, error) {
	monthFile := w.MonthFile(year, month)
	if !fileutils.FileExists(monthFile) {
		return nil, nil
	}
	return common.ReadTransactionsFile(monthFile)
}

// ReadHistory reads every month-aggregate file under dir, in file-name
// order. Platform-suffixed batch files are excluded: they duplicate rows
// already present in the aggregates.
func ReadHistory(dir string) ([]models.Transaction, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading ledger directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !monthFilePattern.MatchString(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var history []models.Transaction
	for _, name := range names {
		transactions, err := common.ReadTransactionsFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", name, err)
		}
		history = append(history, transactions...)
	}

	log.WithFields(logrus.Fields{
		"files": len(names),
		"rows":  len(history),
	}).Debug("Loaded ledger history")
	return history, nil
}
