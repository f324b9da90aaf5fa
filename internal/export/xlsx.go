package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"crmcore/internal/domain"
)

const (
	DocumentsSheet = "Documents"
	PaymentsSheet  = "Payments"
)

var paymentColumns = []string{
	"Document",
	"Customer",
	"Date",
	"Method",
	"Reference",
	"Amount",
}

// WriteWorkbook writes an XLSX workbook with a documents sheet and a payments sheet.
// Amounts are written as numbers so spreadsheet formulas work on them.
func WriteWorkbook(w io.Writer, docs []domain.DocumentReportRow, payments []domain.PaymentReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DocumentsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(PaymentsSheet); err != nil {
		return fmt.Errorf("creating payments sheet: %w", err)
	}

	if err := writeRow(f, DocumentsSheet, 1, toInterfaces(documentColumns)); err != nil {
		return err
	}
	for i := range docs {
		d := &docs[i]
		row := []interface{}{
			d.Code,
			string(d.Type),
			d.Date.Format("2006-01-02"),
			d.CustomerName,
			d.CustomerState,
			d.Taxable.InexactFloat64(),
			d.CGST.InexactFloat64(),
			d.SGST.InexactFloat64(),
			d.IGST.InexactFloat64(),
			d.Total.InexactFloat64(),
			d.PaidAmount.InexactFloat64(),
			d.Outstanding().InexactFloat64(),
			formatBool(d.Settled()),
		}
		if err := writeRow(f, DocumentsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, PaymentsSheet, 1, toInterfaces(paymentColumns)); err != nil {
		return err
	}
	for i := range payments {
		p := &payments[i]
		ref := ""
		if p.ExternalRef != nil {
			ref = *p.ExternalRef
		}
		row := []interface{}{
			p.DocumentCode,
			p.CustomerName,
			p.TransactionDate.Format("2006-01-02"),
			string(p.Method),
			ref,
			p.Amount.InexactFloat64(),
		}
		if err := writeRow(f, PaymentsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, rowNo, err)
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
