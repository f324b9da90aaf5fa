package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmcore/internal/domain"
	"crmcore/internal/service"
	"crmcore/mocks"
)

type paymentFixture struct {
	svc       service.PaymentService
	docRepo   *mocks.MockDocumentRepo
	txnRepo   *mocks.MockTransactionRepo
	auditRepo *mocks.MockDocumentAuditRepo
	locker    *mocks.MockDocumentLocker
}

func setupPaymentService() *paymentFixture {
	f := &paymentFixture{
		docRepo:   new(mocks.MockDocumentRepo),
		txnRepo:   new(mocks.MockTransactionRepo),
		auditRepo: new(mocks.MockDocumentAuditRepo),
		locker:    new(mocks.MockDocumentLocker),
	}
	f.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.DocumentAuditEntry")).Return(nil).Maybe()
	f.svc = service.NewPaymentService(f.docRepo, f.txnRepo, f.auditRepo, f.locker)
	return f
}

// ledger simulates the conditional update of the transaction repository against one invoice.
type ledger struct {
	doc *domain.Document
}

func (l *ledger) record(args mock.Arguments) {
	txn := args.Get(1).(*domain.Transaction)
	txn.ID = uuid.New()
	l.doc.PaidAmount = l.doc.PaidAmount.Add(txn.Amount)
	l.doc.Version++
}

func unpaidInvoice() *domain.Document {
	return &domain.Document{
		ID:         uuid.New(),
		Type:       domain.DocumentTypeInvoice,
		Code:       "IN001",
		CustomerID: uuid.New(),
		FinancialTotals: domain.FinancialTotals{
			Taxable: dec("2000"), CGST: dec("180"), SGST: dec("180"), IGST: decimal.Zero, Total: dec("2360"),
		},
		PaidAmount: decimal.Zero,
		Version:    1,
	}
}

func noopRelease() {}

func TestPaymentService_RecordPayment_SettlementScenario(t *testing.T) {
	f := setupPaymentService()
	l := &ledger{doc: unpaidInvoice()}
	userID := uuid.New()

	f.locker.On("Obtain", mock.Anything, l.doc.ID).Return(noopRelease, nil)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, l.doc.ID).
		Return(l.doc, nil)
	f.txnRepo.On("RecordPayment", mock.Anything, mock.AnythingOfType("*domain.Transaction"), mock.AnythingOfType("int")).
		Run(l.record).
		Return(l.doc, nil)

	ctx := context.Background()

	first, err := f.svc.RecordPayment(ctx, &service.RecordPaymentInput{
		DocumentID: l.doc.ID, Amount: dec("2000"), Method: domain.PaymentMethodUPI, UserID: userID,
	})
	require.NoError(t, err)
	assert.True(t, first.PaidAmount.Equal(dec("2000")))
	assert.True(t, first.Remaining.Equal(dec("360")))
	assert.False(t, first.Settled)
	assert.Equal(t, 2, first.Version)

	second, err := f.svc.RecordPayment(ctx, &service.RecordPaymentInput{
		DocumentID: l.doc.ID, Amount: dec("360"), Method: domain.PaymentMethodCash, UserID: userID,
	})
	require.NoError(t, err)
	assert.True(t, second.PaidAmount.Equal(dec("2360")))
	assert.True(t, second.Settled)

	third, err := f.svc.RecordPayment(ctx, &service.RecordPaymentInput{
		DocumentID: l.doc.ID, Amount: dec("1"), Method: domain.PaymentMethodCash, UserID: userID,
	})
	assert.Nil(t, third)
	assert.ErrorIs(t, err, domain.ErrOverpayment)
	assert.True(t, l.doc.PaidAmount.Equal(dec("2360")))
	f.txnRepo.AssertNumberOfCalls(t, "RecordPayment", 2)
}

func TestPaymentService_RecordPayment_PassesExternalReference(t *testing.T) {
	f := setupPaymentService()
	doc := unpaidInvoice()
	ref := "  UTR-88231  "
	paidOn := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	f.locker.On("Obtain", mock.Anything, doc.ID).Return(noopRelease, nil)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)
	f.txnRepo.On("RecordPayment", mock.Anything, mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn.ExternalRef != nil && *txn.ExternalRef == "UTR-88231" &&
			txn.TransactionDate.Equal(paidOn) && txn.TransactionDate.Location() == time.UTC &&
			txn.CustomerID == doc.CustomerID && txn.Method == domain.PaymentMethodBankTransfer
	}), 1).Return(&domain.Document{
		ID: doc.ID, FinancialTotals: doc.FinancialTotals, PaidAmount: dec("100"), Version: 2,
	}, nil)

	receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID:      doc.ID,
		Amount:          dec("100"),
		Method:          domain.PaymentMethodBankTransfer,
		TransactionID:   &ref,
		TransactionDate: &paidOn,
	})

	require.NoError(t, err)
	assert.True(t, receipt.Remaining.Equal(dec("2260")))
	f.txnRepo.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		method  domain.PaymentMethod
		wantErr error
	}{
		{"zero amount", "0", domain.PaymentMethodCash, domain.ErrValidation},
		{"negative amount", "-5", domain.PaymentMethodCash, domain.ErrValidation},
		{"sub-paisa amount", "10.005", domain.PaymentMethodCash, domain.ErrValidation},
		{"above total", "2360.01", domain.PaymentMethodCash, domain.ErrOverpayment},
		{"missing method", "10", "", domain.ErrValidation},
		{"unknown method", "10", domain.PaymentMethod("Barter"), domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupPaymentService()
			doc := unpaidInvoice()
			f.locker.On("Obtain", mock.Anything, doc.ID).Return(noopRelease, nil).Maybe()
			f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil).Maybe()

			receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
				DocumentID: doc.ID,
				Amount:     dec(tt.amount),
				Method:     tt.method,
			})

			assert.Nil(t, receipt)
			assert.ErrorIs(t, err, tt.wantErr)
			f.txnRepo.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_RecordPayment_StaleVersion(t *testing.T) {
	f := setupPaymentService()
	doc := unpaidInvoice()
	doc.Version = 5

	f.locker.On("Obtain", mock.Anything, doc.ID).Return(noopRelease, nil)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)

	stale := 4
	receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID: doc.ID, Amount: dec("10"), Method: domain.PaymentMethodCard, Version: &stale,
	})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	f.txnRepo.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_LostRaceSurfacesConflict(t *testing.T) {
	f := setupPaymentService()
	doc := unpaidInvoice()

	f.locker.On("Obtain", mock.Anything, doc.ID).Return(noopRelease, nil)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)
	f.txnRepo.On("RecordPayment", mock.Anything, mock.Anything, 1).Return(nil, domain.ErrConcurrentUpdate)

	receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID: doc.ID, Amount: dec("10"), Method: domain.PaymentMethodCard,
	})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	f.auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_LockHeld(t *testing.T) {
	f := setupPaymentService()
	docID := uuid.New()

	f.locker.On("Obtain", mock.Anything, docID).Return(nil, domain.ErrConcurrentUpdate)

	receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID: docID, Amount: dec("10"), Method: domain.PaymentMethodCash,
	})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	f.docRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_ReleasesLock(t *testing.T) {
	f := setupPaymentService()
	doc := unpaidInvoice()
	released := false

	f.locker.On("Obtain", mock.Anything, doc.ID).Return(func() { released = true }, nil)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)

	_, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID: doc.ID, Amount: dec("5000"), Method: domain.PaymentMethodCash,
	})

	assert.ErrorIs(t, err, domain.ErrOverpayment)
	assert.True(t, released)
}

func TestPaymentService_RecordPayment_QuotationNotPayable(t *testing.T) {
	f := setupPaymentService()
	quotationID := uuid.New()

	f.locker.On("Obtain", mock.Anything, quotationID).Return(noopRelease, nil)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, quotationID).Return(nil, domain.ErrDocumentNotFound)
	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeQuotation, quotationID).
		Return(&domain.Document{ID: quotationID, Type: domain.DocumentTypeQuotation}, nil)

	receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID: quotationID, Amount: dec("10"), Method: domain.PaymentMethodCash,
	})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrNotPayable)
}

func TestPaymentService_RecordPayment_UnknownDocument(t *testing.T) {
	f := setupPaymentService()
	docID := uuid.New()

	f.locker.On("Obtain", mock.Anything, docID).Return(noopRelease, nil)
	f.docRepo.On("GetByID", mock.Anything, mock.Anything, docID).Return(nil, domain.ErrDocumentNotFound)

	receipt, err := f.svc.RecordPayment(context.Background(), &service.RecordPaymentInput{
		DocumentID: docID, Amount: dec("10"), Method: domain.PaymentMethodCash,
	})

	assert.Nil(t, receipt)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPaymentService_ListPayments(t *testing.T) {
	f := setupPaymentService()
	doc := unpaidInvoice()
	txns := []domain.Transaction{
		{ID: uuid.New(), Amount: dec("100"), TransactionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), Amount: dec("200"), TransactionDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)
	f.txnRepo.On("ListByDocument", mock.Anything, doc.ID).Return(txns, nil)

	result, err := f.svc.ListPayments(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.Equal(t, txns, result)
}

func TestPaymentService_CorrectTransaction_KeepsAmount(t *testing.T) {
	f := setupPaymentService()
	txnID := uuid.New()
	existing := &domain.Transaction{
		ID:         txnID,
		DocumentID: uuid.New(),
		Amount:     dec("250"),
		Method:     domain.PaymentMethodCash,
	}

	f.txnRepo.On("GetByID", mock.Anything, txnID).Return(existing, nil)
	f.txnRepo.On("Update", mock.Anything, existing).Return(nil)

	method := domain.PaymentMethodCheque
	ref := "CHQ-004512"
	txn, err := f.svc.CorrectTransaction(context.Background(), &service.CorrectTransactionInput{
		TransactionID: txnID,
		Method:        &method,
		ExternalRef:   &ref,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodCheque, txn.Method)
	assert.Equal(t, "CHQ-004512", *txn.ExternalRef)
	assert.True(t, txn.Amount.Equal(dec("250")))
	f.auditRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(e *domain.DocumentAuditEntry) bool {
		return e.DocumentID == existing.DocumentID && e.Action == string(domain.AuditTransactionCorrected)
	}))
}

func TestPaymentService_CorrectTransaction_InvalidMethod(t *testing.T) {
	f := setupPaymentService()
	txnID := uuid.New()

	f.txnRepo.On("GetByID", mock.Anything, txnID).Return(&domain.Transaction{ID: txnID}, nil)

	method := domain.PaymentMethod("IOU")
	txn, err := f.svc.CorrectTransaction(context.Background(), &service.CorrectTransactionInput{
		TransactionID: txnID,
		Method:        &method,
	})

	assert.Nil(t, txn)
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.txnRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
