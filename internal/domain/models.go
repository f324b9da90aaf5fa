package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an authenticated CRM user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Customer is a lead or client that documents are issued to. State is the
// customer's tax jurisdiction.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Company   string    `db:"company" json:"company"`
	State     string    `db:"state" json:"state"`
	GSTIN     string    `db:"gstin" json:"gstin"`
	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LineItem is a single billed row owned by exactly one document.
type LineItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	DocumentID  uuid.UUID       `db:"document_id" json:"-"`
	Position    int             `db:"position" json:"position"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	HSNCode     string          `db:"hsn_code" json:"hsn_code"`
}

// LineTotal returns quantity × unit price.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// FinancialTotals is the computed tax breakdown of a document.
type FinancialTotals struct {
	Taxable decimal.Decimal `db:"taxable" json:"taxable"`
	CGST    decimal.Decimal `db:"cgst" json:"cgst"`
	SGST    decimal.Decimal `db:"sgst" json:"sgst"`
	IGST    decimal.Decimal `db:"igst" json:"igst"`
	Total   decimal.Decimal `db:"total" json:"total"`
}

// Document is an invoice or a quotation.
type Document struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Type            DocumentType    `db:"doc_type" json:"type"`
	Code            string          `db:"code" json:"code"`
	Sequence        int64           `db:"sequence" json:"sequence"`
	Date            time.Time       `db:"date" json:"date"`
	CustomerID      uuid.UUID       `db:"customer_id" json:"customer_id"`
	ProjectID       *string         `db:"project_id" json:"project_id,omitempty"`
	FinancialTotals `json:"totals"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	Version         int             `db:"version" json:"version"`
	SourceID        *uuid.UUID      `db:"source_id" json:"source_id,omitempty"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	Items           []LineItem      `db:"-" json:"items"`
}

// Transaction is a single payment recorded against an invoice.
type Transaction struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DocumentID      uuid.UUID       `db:"document_id" json:"document_id"`
	CustomerID      uuid.UUID       `db:"customer_id" json:"customer_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Method          PaymentMethod   `db:"method" json:"method"`
	ExternalRef     *string         `db:"external_ref" json:"transaction_id,omitempty"`
	TransactionDate time.Time       `db:"transaction_date" json:"transaction_date"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// DocumentAuditEntry records a single mutation of a document.
type DocumentAuditEntry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	DocumentID uuid.UUID       `db:"document_id" json:"document_id"`
	UserID     *uuid.UUID      `db:"user_id" json:"user_id"`
	Action     string          `db:"action" json:"action"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Type       DocumentType
	CustomerID *uuid.UUID
	Settled    *bool
	Search     string
	Offset     int
	Limit      int
}
