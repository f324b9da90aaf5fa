// Package export renders document listings as CSV and XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crmcore/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// documentColumns defines the header row shared by the CSV and XLSX document listings.
var documentColumns = []string{
	"Code",
	"Type",
	"Date",
	"Customer",
	"Customer State",
	"Taxable Amount",
	"CGST",
	"SGST",
	"IGST",
	"Total",
	"Paid",
	"Outstanding",
	"Settled",
}

// CSVWriter wraps csv.Writer for exporting documents.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w. The BOM is written by the caller.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(documentColumns)
}

// WriteDocuments converts a batch of report rows to CSV rows and writes them.
func (w *CSVWriter) WriteDocuments(rows []domain.DocumentReportRow) error {
	for i := range rows {
		if err := w.csv.Write(documentRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func documentRecord(r *domain.DocumentReportRow) []string {
	return []string{
		r.Code,
		string(r.Type),
		r.Date.Format("2006-01-02"),
		r.CustomerName,
		r.CustomerState,
		formatMoney(r.Taxable),
		formatMoney(r.CGST),
		formatMoney(r.SGST),
		formatMoney(r.IGST),
		formatMoney(r.Total),
		formatMoney(r.PaidAmount),
		formatMoney(r.Outstanding()),
		formatBool(r.Settled()),
	}
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {name}_{YYYY-MM-DD}.{ext} for Content-Disposition.
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
