package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"crmcore/internal/config"
	"crmcore/internal/domain"
	"crmcore/internal/port"
)

const (
	pdfContentType  = "application/pdf"
	deliveryTimeout = 2 * time.Minute
)

// DeliverInput is the DTO for sending a rendered document to a recipient.
type DeliverInput struct {
	DocumentType domain.DocumentType
	DocumentID   uuid.UUID
	Email        string `json:"email" validate:"required,email"`
	File         io.Reader
	Size         int64
	UserID       uuid.UUID
}

// DeliveryReceipt acknowledges an accepted delivery request.
type DeliveryReceipt struct {
	DeliveryID   uuid.UUID `json:"delivery_id"`
	DocumentID   uuid.UUID `json:"document_id"`
	DocumentCode string    `json:"document_code"`
	Email        string    `json:"email"`
	StorageKey   string    `json:"storage_key"`
}

// DeliveryService hands rendered documents to storage and email. Delivery outcome
// never changes document or transaction state.
type DeliveryService interface {
	Deliver(ctx context.Context, input *DeliverInput) (*DeliveryReceipt, error)
	// Wait blocks until all in-flight deliveries have finished.
	Wait()
}

type deliveryService struct {
	docRepo      port.DocumentRepository
	customerRepo port.CustomerRepository
	auditRepo    port.DocumentAuditRepository
	storage      port.ObjectStorage
	sender       port.EmailSender
	cfg          *config.S3Config
	wg           sync.WaitGroup
}

// NewDeliveryService creates a new DeliveryService implementation.
func NewDeliveryService(
	docRepo port.DocumentRepository,
	customerRepo port.CustomerRepository,
	auditRepo port.DocumentAuditRepository,
	storage port.ObjectStorage,
	sender port.EmailSender,
	cfg *config.S3Config,
) DeliveryService {
	return &deliveryService{
		docRepo:      docRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		storage:      storage,
		sender:       sender,
		cfg:          cfg,
	}
}

func (s *deliveryService) Deliver(ctx context.Context, input *DeliverInput) (*DeliveryReceipt, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.File == nil {
		return nil, domain.NewValidationError("document", "is required")
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	doc, err := s.docRepo.GetByID(ctx, input.DocumentType, input.DocumentID)
	if err != nil {
		return nil, err
	}

	// The body must outlive the request, so it is buffered here.
	body, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading rendered document: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if http.DetectContentType(body) != pdfContentType {
		return nil, domain.ErrUnsupportedFile
	}

	deliveryID := uuid.New()
	receipt := &DeliveryReceipt{
		DeliveryID:   deliveryID,
		DocumentID:   doc.ID,
		DocumentCode: doc.Code,
		Email:        input.Email,
		StorageKey:   fmt.Sprintf("documents/%s/%s.pdf", doc.Code, deliveryID),
	}

	recipientName := ""
	if customer, err := s.customerRepo.GetByID(ctx, doc.CustomerID); err == nil {
		recipientName = customer.Name
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		s.deliver(bgCtx, doc, receipt, recipientName, body, input.UserID)
	}()

	return receipt, nil
}

func (s *deliveryService) deliver(ctx context.Context, doc *domain.Document, receipt *DeliveryReceipt, recipientName string, body []byte, userID uuid.UUID) {
	logger := log.With().
		Str("delivery_id", receipt.DeliveryID.String()).
		Str("code", doc.Code).
		Logger()

	fail := func(stage string, err error) {
		logger.Error().Err(err).Str("stage", stage).Msg("document delivery failed")
		writeAudit(ctx, s.auditRepo, doc.ID, &userID, domain.AuditDeliveryFailed, map[string]interface{}{
			"delivery_id": receipt.DeliveryID,
			"email":       receipt.Email,
			"stage":       stage,
			"error":       err.Error(),
		})
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         receipt.StorageKey,
		Body:        bytes.NewReader(body),
		ContentType: pdfContentType,
		Size:        int64(len(body)),
	}); err != nil {
		fail("upload", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err))
		return
	}

	expiry := time.Duration(s.cfg.PresignExpiry) * time.Second
	url, err := s.storage.GetPresignedURL(ctx, receipt.StorageKey, expiry)
	if err != nil {
		s.cleanup(ctx, receipt.StorageKey)
		fail("presign", err)
		return
	}

	err = s.sender.SendDocumentEmail(ctx, port.DocumentEmail{
		ToEmail:      receipt.Email,
		ToName:       recipientName,
		DocumentType: string(doc.Type),
		DocumentCode: doc.Code,
		DownloadURL:  url,
	})
	if err != nil {
		s.cleanup(ctx, receipt.StorageKey)
		fail("send", err)
		return
	}

	logger.Info().Str("email", receipt.Email).Msg("document delivered")
	writeAudit(ctx, s.auditRepo, doc.ID, &userID, domain.AuditDocumentDelivered, map[string]interface{}{
		"delivery_id": receipt.DeliveryID,
		"email":       receipt.Email,
		"storage_key": receipt.StorageKey,
	})
}

func (s *deliveryService) cleanup(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to remove undelivered document")
	}
}

func (s *deliveryService) Wait() {
	s.wg.Wait()
}
