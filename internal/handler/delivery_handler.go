package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	"crmcore/internal/service"
)

// DeliveryHandler handles sending rendered documents by email.
type DeliveryHandler struct {
	deliveryService service.DeliveryService
	docType         domain.DocumentType
}

// NewDeliveryHandler creates a new DeliveryHandler for docType.
func NewDeliveryHandler(deliveryService service.DeliveryService, docType domain.DocumentType) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService, docType: docType}
}

// Send handles POST /api/v1/invoices/:id/send and POST /api/v1/quotations/:id/send
// @Summary Send a document
// @Description Upload a rendered PDF and email a download link to the recipient. Delivery runs in the background; the outcome is recorded in the audit trail.
// @Tags delivery
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param document formData file true "Rendered PDF"
// @Param email formData string true "Recipient email"
// @Success 202 {object} Response{data=service.DeliveryReceipt} "Delivery accepted"
// @Failure 400 {object} ErrorResponseBody "Missing file, invalid email or unsupported file"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /invoices/{id}/send [post]
// @Router /quotations/{id}/send [post]
func (h *DeliveryHandler) Send(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "document field is required")
		return
	}
	defer func() { _ = file.Close() }()

	receipt, err := h.deliveryService.Deliver(c.Request.Context(), &service.DeliverInput{
		DocumentType: h.docType,
		DocumentID:   docID,
		Email:        c.PostForm("email"),
		File:         file,
		Size:         header.Size,
		UserID:       userID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, receipt)
}
