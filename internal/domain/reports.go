package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportFilters narrows report queries.
type ReportFilters struct {
	Type       DocumentType
	CustomerID *uuid.UUID
	Settled    *bool
	From       *time.Time
	To         *time.Time
}

// DocumentReportRow is one document in a listing export, joined with its customer.
type DocumentReportRow struct {
	DocumentID    uuid.UUID       `db:"document_id" json:"document_id"`
	Type          DocumentType    `db:"doc_type" json:"type"`
	Code          string          `db:"code" json:"code"`
	Date          time.Time       `db:"date" json:"date"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerState string          `db:"customer_state" json:"customer_state"`
	Taxable       decimal.Decimal `db:"taxable" json:"taxable"`
	CGST          decimal.Decimal `db:"cgst" json:"cgst"`
	SGST          decimal.Decimal `db:"sgst" json:"sgst"`
	IGST          decimal.Decimal `db:"igst" json:"igst"`
	Total         decimal.Decimal `db:"total" json:"total"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
}

// Outstanding returns the unpaid balance of the row.
func (r *DocumentReportRow) Outstanding() decimal.Decimal {
	return r.Total.Sub(r.PaidAmount)
}

// Settled reports whether the row is fully paid.
func (r *DocumentReportRow) Settled() bool {
	return r.PaidAmount.Equal(r.Total)
}

// PaymentReportRow is one transaction in a payments export.
type PaymentReportRow struct {
	TransactionID   uuid.UUID       `db:"transaction_id" json:"transaction_id"`
	DocumentCode    string          `db:"document_code" json:"document_code"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Method          PaymentMethod   `db:"method" json:"method"`
	ExternalRef     *string         `db:"external_ref" json:"external_ref,omitempty"`
	TransactionDate time.Time       `db:"transaction_date" json:"transaction_date"`
}
