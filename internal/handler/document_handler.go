package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crmcore/internal/domain"
	"crmcore/internal/service"
)

// DocumentHandler handles invoice and quotation endpoints. One instance serves
// one document type.
type DocumentHandler struct {
	docService service.DocumentService
	docType    domain.DocumentType
}

// NewDocumentHandler creates a new DocumentHandler for docType.
func NewDocumentHandler(docService service.DocumentService, docType domain.DocumentType) *DocumentHandler {
	return &DocumentHandler{docService: docService, docType: docType}
}

// Create handles POST /api/v1/invoices and POST /api/v1/quotations
// @Summary Create a document
// @Description Create an invoice or quotation. Totals and GST are computed from the items and the customer's state; the code is assigned from the type's sequence.
// @Tags documents
// @Accept json
// @Produce json
// @Param request body CreateDocumentRequest true "Customer and line items"
// @Success 201 {object} Response{data=domain.Document} "Document created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /invoices [post]
// @Router /quotations [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input.Type = h.docType
	input.CreatedBy = userID

	doc, err := h.docService.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// List handles GET /api/v1/invoices and GET /api/v1/quotations
// @Summary List documents
// @Description List documents newest first. The settled filter applies to invoices only.
// @Tags documents
// @Produce json
// @Param search query string false "Match code, customer name or company"
// @Param customer_id query string false "Customer ID (UUID)"
// @Param settled query bool false "Only settled (true) or outstanding (false) invoices"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /invoices [get]
// @Router /quotations [get]
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	filter := domain.DocumentFilter{
		Type:   h.docType,
		Search: c.Query("search"),
		Offset: offset,
		Limit:  limit,
	}

	if cidStr := c.Query("customer_id"); cidStr != "" {
		cid, err := uuid.Parse(cidStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid customer_id")
			return
		}
		filter.CustomerID = &cid
	}
	if settledStr := c.Query("settled"); settledStr != "" && h.docType == domain.DocumentTypeInvoice {
		settled, err := strconv.ParseBool(settledStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "settled must be true or false")
			return
		}
		filter.Settled = &settled
	}

	docs, total, err := h.docService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id and GET /api/v1/quotations/:id
// @Summary Get document by ID
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document with items"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
// @Router /quotations/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.docService.GetByID(c.Request.Context(), h.docType, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// ReplaceItems handles PUT /api/v1/invoices/:id/items and PUT /api/v1/quotations/:id/items
// @Summary Replace line items
// @Description Replace all items and recompute totals. Nothing changes unless every item is valid, the version matches and the new total still covers the paid amount.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body ReplaceItemsRequest true "New line items"
// @Success 200 {object} Response{data=domain.Document} "Document updated"
// @Failure 400 {object} ErrorResponseBody "Validation error or total below paid amount"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Stale version"
// @Security BearerAuth
// @Router /invoices/{id}/items [put]
// @Router /quotations/{id}/items [put]
func (h *DocumentHandler) ReplaceItems(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.ReplaceItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input.Type = h.docType
	input.DocumentID = docID
	input.UserID = userID

	doc, err := h.docService.ReplaceItems(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Convert handles POST /api/v1/quotations/:id/convert
// @Summary Convert a quotation
// @Description Create an invoice with the quotation's customer and items. The quotation is left unchanged.
// @Tags documents
// @Produce json
// @Param id path string true "Quotation ID (UUID)"
// @Success 201 {object} Response{data=domain.Document} "Invoice created"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Quotation not found"
// @Security BearerAuth
// @Router /quotations/{id}/convert [post]
func (h *DocumentHandler) Convert(c *gin.Context) {
	quotationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	invoice, err := h.docService.ConvertQuotation(c.Request.Context(), quotationID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, invoice)
}

// Delete handles DELETE /api/v1/invoices/:id and DELETE /api/v1/quotations/:id
// @Summary Delete a document
// @Description Delete a document without payments (admin only). Its code is never reused.
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Document has payments"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
// @Router /quotations/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	if err := h.docService.Delete(c.Request.Context(), h.docType, docID, userID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}

// Audit handles GET /api/v1/invoices/:id/audit and GET /api/v1/quotations/:id/audit
// @Summary Document audit trail
// @Description List audit entries for a document, newest first
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.DocumentAuditEntry,meta=PagMeta} "Audit entries"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /invoices/{id}/audit [get]
// @Router /quotations/{id}/audit [get]
func (h *DocumentHandler) Audit(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	entries, total, err := h.docService.ListAudit(c.Request.Context(), h.docType, docID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}
