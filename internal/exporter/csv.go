package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	apperrors "pledgecli/internal/errors"
	"pledgecli/pkg/contracts/domain"
)

// comparisonHeaders is the column order of the comparison report.
var comparisonHeaders = []string{"Account Id", "Age", "Pledge Current", "Pledge Prior", "Zip Code"}

// errorHeaders is the column order of the error report.
var errorHeaders = []string{"Row", "Column", "Message"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apperrors.NewStorageError("failed to open file", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError("failed to write headers", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush CSV writer", err)
	}
	return nil
}

// WriteComparison writes the year-over-year comparison rows to path.
func (w *CSVWriter) WriteComparison(path string, rows []domain.ComparisonRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.AccountID,
			strconv.Itoa(row.Age),
			formatAmount(row.PledgeCurrent),
			formatAmount(row.PledgePrior),
			row.ZipCode,
		})
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   comparisonHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteErrors writes the itemized row errors to path. An empty error list
// still produces a file with headers so downstream consumers always find one.
func (w *CSVWriter) WriteErrors(path string, errs []domain.ParseError) error {
	records := make([][]string, 0, len(errs))
	for _, e := range errs {
		records = append(records, []string{
			strconv.Itoa(e.Row),
			e.Column,
			e.Message,
		})
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   errorHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// formatAmount renders amounts with two decimal places.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
