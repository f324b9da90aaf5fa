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

// RecordPaymentInput is the DTO for recording a payment against an invoice.
type RecordPaymentInput struct {
	DocumentID      uuid.UUID            `json:"-"`
	Amount          decimal.Decimal      `json:"amount" swaggertype:"string" example:"2000.00"`
	Method          domain.PaymentMethod `json:"method" validate:"required"`
	TransactionID   *string              `json:"transaction_id" validate:"omitempty,max=128"`
	TransactionDate *time.Time           `json:"transaction_date"`
	Version         *int                 `json:"version"`
	UserID          uuid.UUID            `json:"-"`
}

// CorrectTransactionInput is the DTO for an administrative transaction correction.
// The amount is deliberately absent.
type CorrectTransactionInput struct {
	TransactionID   uuid.UUID             `json:"-"`
	Method          *domain.PaymentMethod `json:"method"`
	ExternalRef     *string               `json:"transaction_id" validate:"omitempty,max=128"`
	TransactionDate *time.Time            `json:"transaction_date"`
	UserID          uuid.UUID             `json:"-"`
}

// PaymentReceipt is the outcome of a recorded payment.
type PaymentReceipt struct {
	Transaction *domain.Transaction `json:"transaction"`
	PaidAmount  decimal.Decimal     `json:"paid_amount"`
	Remaining   decimal.Decimal     `json:"remaining"`
	Settled     bool                `json:"settled"`
	Version     int                 `json:"version"`
}

// PaymentService defines the payment ledger contract.
type PaymentService interface {
	RecordPayment(ctx context.Context, input *RecordPaymentInput) (*PaymentReceipt, error)
	ListPayments(ctx context.Context, documentID uuid.UUID) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, txnID uuid.UUID) (*domain.Transaction, error)
	CorrectTransaction(ctx context.Context, input *CorrectTransactionInput) (*domain.Transaction, error)
}

type paymentService struct {
	docRepo   port.DocumentRepository
	txnRepo   port.TransactionRepository
	auditRepo port.DocumentAuditRepository
	locker    port.DocumentLocker
}

// NewPaymentService creates a new PaymentService implementation.
func NewPaymentService(
	docRepo port.DocumentRepository,
	txnRepo port.TransactionRepository,
	auditRepo port.DocumentAuditRepository,
	locker port.DocumentLocker,
) PaymentService {
	return &paymentService{
		docRepo:   docRepo,
		txnRepo:   txnRepo,
		auditRepo: auditRepo,
		locker:    locker,
	}
}

func checkPaymentMethod(method domain.PaymentMethod) error {
	if !domain.ValidPaymentMethods[method] {
		return domain.NewValidationError("method", fmt.Sprintf("unsupported payment method %q", method))
	}
	return nil
}

// loadInvoice resolves documentID to an invoice. A quotation id yields ErrNotPayable.
func (s *paymentService) loadInvoice(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, domain.DocumentTypeInvoice, documentID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, qerr := s.docRepo.GetByID(ctx, domain.DocumentTypeQuotation, documentID); qerr == nil {
		return nil, domain.ErrNotPayable
	}
	return nil, err
}

func (s *paymentService) RecordPayment(ctx context.Context, input *RecordPaymentInput) (*PaymentReceipt, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkPaymentMethod(input.Method); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, input.DocumentID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	doc, err := s.loadInvoice(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != doc.Version {
		return nil, fmt.Errorf("%w: expected version %d, found %d", domain.ErrConcurrentUpdate, *input.Version, doc.Version)
	}
	if err := billing.CheckPayment(doc, input.Amount); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		DocumentID:  doc.ID,
		CustomerID:  doc.CustomerID,
		Amount:      input.Amount,
		Method:      input.Method,
		ExternalRef: trimOptional(input.TransactionID),
		CreatedBy:   input.UserID,
	}
	if input.TransactionDate != nil {
		txn.TransactionDate = input.TransactionDate.UTC()
	}

	// The repository re-checks the version and balance inside its own transaction.
	updated, err := s.txnRepo.RecordPayment(ctx, txn, doc.Version)
	if err != nil {
		return nil, err
	}

	receipt := &PaymentReceipt{
		Transaction: txn,
		PaidAmount:  updated.PaidAmount,
		Remaining:   billing.Remaining(updated),
		Settled:     billing.IsSettled(updated),
		Version:     updated.Version,
	}

	log.Info().
		Str("code", updated.Code).
		Str("transaction_id", txn.ID.String()).
		Str("amount", txn.Amount.StringFixed(2)).
		Str("paid_amount", receipt.PaidAmount.StringFixed(2)).
		Bool("settled", receipt.Settled).
		Msg("payment recorded")

	writeAudit(ctx, s.auditRepo, doc.ID, &input.UserID, domain.AuditPaymentRecorded, map[string]interface{}{
		"transaction_id": txn.ID,
		"amount":         txn.Amount,
		"method":         txn.Method,
		"paid_amount":    receipt.PaidAmount,
		"version":        receipt.Version,
	})
	return receipt, nil
}

func (s *paymentService) ListPayments(ctx context.Context, documentID uuid.UUID) ([]domain.Transaction, error) {
	if _, err := s.loadInvoice(ctx, documentID); err != nil {
		return nil, err
	}
	return s.txnRepo.ListByDocument(ctx, documentID)
}

func (s *paymentService) GetTransaction(ctx context.Context, txnID uuid.UUID) (*domain.Transaction, error) {
	return s.txnRepo.GetByID(ctx, txnID)
}

func (s *paymentService) CorrectTransaction(ctx context.Context, input *CorrectTransactionInput) (*domain.Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	txn, err := s.txnRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	before := map[string]interface{}{
		"method":           txn.Method,
		"transaction_id":   txn.ExternalRef,
		"transaction_date": txn.TransactionDate,
	}

	if input.Method != nil {
		if err := checkPaymentMethod(*input.Method); err != nil {
			return nil, err
		}
		txn.Method = *input.Method
	}
	if input.ExternalRef != nil {
		txn.ExternalRef = trimOptional(input.ExternalRef)
	}
	if input.TransactionDate != nil {
		txn.TransactionDate = input.TransactionDate.UTC()
	}

	if err := s.txnRepo.Update(ctx, txn); err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, txn.DocumentID, &input.UserID, domain.AuditTransactionCorrected, map[string]interface{}{
		"transaction_id": txn.ID,
		"before":         before,
		"after": map[string]interface{}{
			"method":           txn.Method,
			"transaction_id":   txn.ExternalRef,
			"transaction_date": txn.TransactionDate,
		},
	})
	return txn, nil
}

// trimOptional trims s and maps blank values to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
