package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"crmcore/internal/billing"
	"crmcore/internal/domain"
	"crmcore/internal/port"
)

// LineItemInput is a single line item as submitted by a client.
type LineItemInput struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"500.00"`
	HSNCode     string          `json:"hsn_code" validate:"max=16"`
}

// CreateDocumentInput is the DTO for creating an invoice or quotation.
type CreateDocumentInput struct {
	Type       domain.DocumentType `json:"-"`
	CustomerID uuid.UUID           `json:"customer_id" validate:"required"`
	ProjectID  *string             `json:"project_id" validate:"omitempty,max=64"`
	Date       *time.Time          `json:"date"`
	Items      []LineItemInput     `json:"items" validate:"required,min=1,max=200,dive"`
	SourceID   *uuid.UUID          `json:"-"`
	CreatedBy  uuid.UUID           `json:"-"`
}

// ReplaceItemsInput is the DTO for replacing all items of a document. Version, when
// set, must equal the stored version.
type ReplaceItemsInput struct {
	Type       domain.DocumentType `json:"-"`
	DocumentID uuid.UUID           `json:"-"`
	Items      []LineItemInput     `json:"items" validate:"required,min=1,max=200,dive"`
	Version    *int                `json:"version"`
	UserID     uuid.UUID           `json:"-"`
}

// DocumentService defines the invoice and quotation contract.
type DocumentService interface {
	Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)
	ReplaceItems(ctx context.Context, input *ReplaceItemsInput) (*domain.Document, error)
	ConvertQuotation(ctx context.Context, quotationID, userID uuid.UUID) (*domain.Document, error)
	Delete(ctx context.Context, docType domain.DocumentType, docID, userID uuid.UUID) error
	ListAudit(ctx context.Context, docType domain.DocumentType, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error)
}

type documentService struct {
	docRepo      port.DocumentRepository
	seqRepo      port.SequenceRepository
	customerRepo port.CustomerRepository
	auditRepo    port.DocumentAuditRepository
	calc         *billing.TaxCalculator
	codes        billing.CodeFormat
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	seqRepo port.SequenceRepository,
	customerRepo port.CustomerRepository,
	auditRepo port.DocumentAuditRepository,
	calc *billing.TaxCalculator,
	codes billing.CodeFormat,
) DocumentService {
	return &documentService{
		docRepo:      docRepo,
		seqRepo:      seqRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		calc:         calc,
		codes:        codes,
	}
}

func toLineItems(inputs []LineItemInput) []domain.LineItem {
	items := make([]domain.LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = domain.LineItem{
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			HSNCode:     strings.TrimSpace(in.HSNCode),
		}
	}
	return items
}

func checkDocumentType(docType domain.DocumentType) error {
	if !domain.ValidDocumentTypes[docType] {
		return domain.NewValidationError("type", fmt.Sprintf("unknown document type %q", docType))
	}
	return nil
}

// jurisdictionOf returns the customer's tax jurisdiction.
func (s *documentService) jurisdictionOf(ctx context.Context, customerID uuid.UUID) (string, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.NewValidationError("customer_id", "customer does not exist")
		}
		return "", fmt.Errorf("looking up customer: %w", err)
	}
	return customer.State, nil
}

func (s *documentService) Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error) {
	if err := checkDocumentType(input.Type); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	jurisdiction, err := s.jurisdictionOf(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	// Totals are computed before a sequence number is consumed.
	items := toLineItems(input.Items)
	totals, err := s.calc.Totals(items, jurisdiction)
	if err != nil {
		return nil, err
	}

	seq, err := s.seqRepo.Next(ctx, input.Type)
	if err != nil {
		return nil, fmt.Errorf("allocating %s sequence: %w", input.Type, err)
	}

	doc := &domain.Document{
		Type:            input.Type,
		Code:            s.codes.Format(input.Type, seq),
		Sequence:        seq,
		CustomerID:      input.CustomerID,
		ProjectID:       input.ProjectID,
		FinancialTotals: totals,
		PaidAmount:      decimal.Zero,
		SourceID:        input.SourceID,
		CreatedBy:       input.CreatedBy,
		Items:           items,
	}
	if input.Date != nil {
		doc.Date = input.Date.UTC()
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating %s %s: %w", doc.Type, doc.Code, err)
	}

	log.Info().
		Str("code", doc.Code).
		Str("document_id", doc.ID.String()).
		Str("total", doc.Total.StringFixed(2)).
		Msg("document created")

	writeAudit(ctx, s.auditRepo, doc.ID, &input.CreatedBy, domain.AuditDocumentCreated, map[string]interface{}{
		"code":        doc.Code,
		"type":        doc.Type,
		"customer_id": doc.CustomerID,
		"total":       doc.Total,
		"items":       len(doc.Items),
	})
	return doc, nil
}

func (s *documentService) GetByID(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docType, docID)
}

func (s *documentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	if err := checkDocumentType(filter.Type); err != nil {
		return nil, 0, err
	}
	return s.docRepo.List(ctx, filter)
}

func (s *documentService) ReplaceItems(ctx context.Context, input *ReplaceItemsInput) (*domain.Document, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, input.Type, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != doc.Version {
		return nil, fmt.Errorf("%w: expected version %d, found %d", domain.ErrConcurrentUpdate, *input.Version, doc.Version)
	}

	jurisdiction, err := s.jurisdictionOf(ctx, doc.CustomerID)
	if err != nil {
		return nil, err
	}

	// Validate and compute everything before the stored items are touched.
	items := toLineItems(input.Items)
	totals, err := s.calc.Totals(items, jurisdiction)
	if err != nil {
		return nil, err
	}
	if doc.PaidAmount.GreaterThan(totals.Total) {
		return nil, domain.ErrTotalBelowPaid
	}

	previous := doc.FinancialTotals
	expectedVersion := doc.Version
	doc.FinancialTotals = totals
	doc.Items = items

	if err := s.docRepo.ReplaceItems(ctx, doc, expectedVersion); err != nil {
		return nil, err
	}

	log.Info().
		Str("code", doc.Code).
		Int("version", doc.Version).
		Str("total", doc.Total.StringFixed(2)).
		Msg("document items replaced")

	writeAudit(ctx, s.auditRepo, doc.ID, &input.UserID, domain.AuditItemsReplaced, map[string]interface{}{
		"previous_total": previous.Total,
		"total":          doc.Total,
		"items":          len(doc.Items),
		"version":        doc.Version,
	})
	return doc, nil
}

func (s *documentService) ConvertQuotation(ctx context.Context, quotationID, userID uuid.UUID) (*domain.Document, error) {
	quotation, err := s.docRepo.GetByID(ctx, domain.DocumentTypeQuotation, quotationID)
	if err != nil {
		return nil, err
	}

	items := make([]LineItemInput, len(quotation.Items))
	for i, it := range quotation.Items {
		items[i] = LineItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			HSNCode:     it.HSNCode,
		}
	}

	invoice, err := s.Create(ctx, &CreateDocumentInput{
		Type:       domain.DocumentTypeInvoice,
		CustomerID: quotation.CustomerID,
		ProjectID:  quotation.ProjectID,
		Items:      items,
		SourceID:   &quotation.ID,
		CreatedBy:  userID,
	})
	if err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, quotation.ID, &userID, domain.AuditDocumentConverted, map[string]interface{}{
		"invoice_id":   invoice.ID,
		"invoice_code": invoice.Code,
	})
	return invoice, nil
}

func (s *documentService) Delete(ctx context.Context, docType domain.DocumentType, docID, userID uuid.UUID) error {
	if err := s.docRepo.Delete(ctx, docType, docID); err != nil {
		return err
	}
	log.Info().
		Str("document_id", docID.String()).
		Str("type", string(docType)).
		Str("user_id", userID.String()).
		Msg("document deleted")
	return nil
}

func (s *documentService) ListAudit(ctx context.Context, docType domain.DocumentType, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error) {
	if _, err := s.docRepo.GetByID(ctx, docType, docID); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.ListByDocument(ctx, docID, offset, limit)
}
