package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmcore/internal/config"
	"crmcore/internal/domain"
	"crmcore/internal/port"
	"crmcore/internal/service"
	"crmcore/mocks"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type deliveryFixture struct {
	svc          service.DeliveryService
	docRepo      *mocks.MockDocumentRepo
	customerRepo *mocks.MockCustomerRepo
	auditRepo    *mocks.MockDocumentAuditRepo
	storage      *mocks.MockObjectStorage
	sender       *mocks.MockEmailSender
}

func setupDeliveryService() *deliveryFixture {
	f := &deliveryFixture{
		docRepo:      new(mocks.MockDocumentRepo),
		customerRepo: new(mocks.MockCustomerRepo),
		auditRepo:    new(mocks.MockDocumentAuditRepo),
		storage:      new(mocks.MockObjectStorage),
		sender:       new(mocks.MockEmailSender),
	}
	f.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.DocumentAuditEntry")).Return(nil).Maybe()
	f.svc = service.NewDeliveryService(f.docRepo, f.customerRepo, f.auditRepo, f.storage, f.sender,
		&config.S3Config{Bucket: "documents", MaxFileSizeMB: 1, PresignExpiry: 3600})
	return f
}

func deliverableInvoice() (*domain.Document, *domain.Customer) {
	customer := &domain.Customer{ID: uuid.New(), Name: "Acme Traders", State: "Delhi"}
	return &domain.Document{
		ID:         uuid.New(),
		Type:       domain.DocumentTypeInvoice,
		Code:       "IN017",
		CustomerID: customer.ID,
	}, customer
}

func auditedAction(f *deliveryFixture, action domain.AuditAction) bool {
	for _, call := range f.auditRepo.Calls {
		if call.Method == "Create" && call.Arguments.Get(1).(*domain.DocumentAuditEntry).Action == string(action) {
			return true
		}
	}
	return false
}

func TestDeliveryService_Deliver_Success(t *testing.T) {
	f := setupDeliveryService()
	doc, customer := deliverableInvoice()

	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "s3://documents/x"}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, mock.AnythingOfType("string"), time.Hour).
		Return("https://example.test/signed", nil)
	f.sender.On("SendDocumentEmail", mock.Anything, mock.MatchedBy(func(msg port.DocumentEmail) bool {
		return msg.ToEmail == "billing@acme.test" && msg.ToName == "Acme Traders" &&
			msg.DocumentCode == "IN017" && msg.DownloadURL == "https://example.test/signed"
	})).Return(nil)

	receipt, err := f.svc.Deliver(context.Background(), &service.DeliverInput{
		DocumentType: domain.DocumentTypeInvoice,
		DocumentID:   doc.ID,
		Email:        " billing@acme.test ",
		File:         bytes.NewReader(samplePDF),
		Size:         int64(len(samplePDF)),
	})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, "IN017", receipt.DocumentCode)
	assert.Equal(t, "billing@acme.test", receipt.Email)
	assert.True(t, strings.HasPrefix(receipt.StorageKey, "documents/IN017/"))
	assert.True(t, strings.HasSuffix(receipt.StorageKey, ".pdf"))

	upload := f.storage.Calls[0].Arguments.Get(1).(port.UploadInput)
	assert.Equal(t, receipt.StorageKey, upload.Key)
	assert.Equal(t, "application/pdf", upload.ContentType)
	body, _ := io.ReadAll(upload.Body)
	assert.Equal(t, samplePDF, body)

	f.sender.AssertExpectations(t)
	assert.True(t, auditedAction(f, domain.AuditDocumentDelivered))
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeliveryService_Deliver_SendFailureCleansUp(t *testing.T) {
	f := setupDeliveryService()
	doc, customer := deliverableInvoice()

	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything).Return("https://example.test/signed", nil)
	f.sender.On("SendDocumentEmail", mock.Anything, mock.Anything).Return(errors.New("ses: throttled"))
	f.storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	receipt, err := f.svc.Deliver(context.Background(), &service.DeliverInput{
		DocumentType: domain.DocumentTypeInvoice,
		DocumentID:   doc.ID,
		Email:        "billing@acme.test",
		File:         bytes.NewReader(samplePDF),
		Size:         int64(len(samplePDF)),
	})
	require.NoError(t, err)
	f.svc.Wait()

	f.storage.AssertCalled(t, "Delete", mock.Anything, receipt.StorageKey)
	assert.True(t, auditedAction(f, domain.AuditDeliveryFailed))
	assert.False(t, auditedAction(f, domain.AuditDocumentDelivered))
}

func TestDeliveryService_Deliver_UploadFailure(t *testing.T) {
	f := setupDeliveryService()
	doc, customer := deliverableInvoice()

	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil)
	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 unavailable"))

	_, err := f.svc.Deliver(context.Background(), &service.DeliverInput{
		DocumentType: domain.DocumentTypeInvoice,
		DocumentID:   doc.ID,
		Email:        "billing@acme.test",
		File:         bytes.NewReader(samplePDF),
		Size:         int64(len(samplePDF)),
	})
	require.NoError(t, err)
	f.svc.Wait()

	f.sender.AssertNotCalled(t, "SendDocumentEmail", mock.Anything, mock.Anything)
	assert.True(t, auditedAction(f, domain.AuditDeliveryFailed))
}

func TestDeliveryService_Deliver_Rejections(t *testing.T) {
	doc, customer := deliverableInvoice()
	big := bytes.Repeat([]byte("a"), 2*1024*1024)

	tests := []struct {
		name    string
		email   string
		file    io.Reader
		size    int64
		wantErr error
	}{
		{"invalid email", "not-an-email", bytes.NewReader(samplePDF), int64(len(samplePDF)), domain.ErrValidation},
		{"missing file", "a@b.test", nil, 0, domain.ErrValidation},
		{"declared too large", "a@b.test", bytes.NewReader(samplePDF), 5 * 1024 * 1024, domain.ErrFileTooLarge},
		{"actually too large", "a@b.test", bytes.NewReader(append(append([]byte{}, samplePDF...), big...)), 10, domain.ErrFileTooLarge},
		{"not a pdf", "a@b.test", strings.NewReader("<html><body>invoice</body></html>"), 34, domain.ErrUnsupportedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDeliveryService()
			f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, doc.ID).Return(doc, nil).Maybe()
			f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil).Maybe()

			receipt, err := f.svc.Deliver(context.Background(), &service.DeliverInput{
				DocumentType: domain.DocumentTypeInvoice,
				DocumentID:   doc.ID,
				Email:        tt.email,
				File:         tt.file,
				Size:         tt.size,
			})
			f.svc.Wait()

			assert.Nil(t, receipt)
			assert.ErrorIs(t, err, tt.wantErr)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestDeliveryService_Deliver_UnknownDocument(t *testing.T) {
	f := setupDeliveryService()
	docID := uuid.New()

	f.docRepo.On("GetByID", mock.Anything, domain.DocumentTypeQuotation, docID).Return(nil, domain.ErrDocumentNotFound)

	receipt, err := f.svc.Deliver(context.Background(), &service.DeliverInput{
		DocumentType: domain.DocumentTypeQuotation,
		DocumentID:   docID,
		Email:        "a@b.test",
		File:         bytes.NewReader(samplePDF),
		Size:         int64(len(samplePDF)),
	})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
