package port

import (
	"context"

	"github.com/google/uuid"

	"crmcore/internal/domain"
)

// DocumentRepository defines the contract for invoice and quotation persistence.
// Documents are always read and written together with their line items.
type DocumentRepository interface {
	// Create inserts the document and its items in one transaction.
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)
	// ReplaceItems swaps the full item set and totals of doc, conditional on the
	// stored version equalling expectedVersion and the paid amount not exceeding
	// the new total. On success doc.Version holds the new version.
	ReplaceItems(ctx context.Context, doc *domain.Document, expectedVersion int) error
	// Delete removes a document without payments.
	Delete(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) error
}

// SequenceRepository hands out document sequence numbers.
type SequenceRepository interface {
	// Next atomically increments and returns the counter for docType. The
	// increment is committed independently of any document write.
	Next(ctx context.Context, docType domain.DocumentType) (int64, error)
}

// TransactionRepository defines the contract for payment persistence.
type TransactionRepository interface {
	// RecordPayment inserts txn and adds its amount to the invoice's paid amount
	// atomically, conditional on expectedVersion. It returns the updated document.
	RecordPayment(ctx context.Context, txn *domain.Transaction, expectedVersion int) (*domain.Document, error)
	GetByID(ctx context.Context, txnID uuid.UUID) (*domain.Transaction, error)
	// ListByDocument returns payments ordered by transaction date ascending.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Transaction, error)
	// Update corrects method, external reference and date. The amount is never changed.
	Update(ctx context.Context, txn *domain.Transaction) error
}

// DocumentAuditRepository defines the contract for document audit log persistence.
type DocumentAuditRepository interface {
	Create(ctx context.Context, entry *domain.DocumentAuditEntry) error
	ListByDocument(ctx context.Context, documentID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error)
}

// ReportRepository provides the joined rows behind document exports.
type ReportRepository interface {
	Documents(ctx context.Context, filters domain.ReportFilters) ([]domain.DocumentReportRow, error)
	Payments(ctx context.Context, filters domain.ReportFilters) ([]domain.PaymentReportRow, error)
}
