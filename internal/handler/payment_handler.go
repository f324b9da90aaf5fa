package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmcore/internal/service"
)

// PaymentHandler handles payment ledger endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Record handles POST /api/v1/invoices/:id/payments
// @Summary Record a payment
// @Description Record a payment against an invoice. The transaction and the paid amount change together or not at all.
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body RecordPaymentRequest true "Payment details"
// @Success 201 {object} Response{data=service.PaymentReceipt} "Payment recorded"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 409 {object} ErrorResponseBody "Concurrent update"
// @Failure 422 {object} ErrorResponseBody "Overpayment or document not payable"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input.DocumentID = docID
	input.UserID = userID

	receipt, err := h.paymentService.RecordPayment(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, receipt)
}

// List handles GET /api/v1/invoices/:id/payments
// @Summary List payments
// @Description List an invoice's transactions ordered by transaction date
// @Tags payments
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=[]domain.Transaction} "Transactions"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	txns, err := h.paymentService.ListPayments(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txns)
}

// GetTransaction handles GET /api/v1/transactions/:id
// @Summary Get transaction by ID
// @Tags payments
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} Response{data=domain.Transaction} "Transaction"
// @Failure 404 {object} ErrorResponseBody "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	txnID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.paymentService.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txn)
}

// Correct handles PATCH /api/v1/transactions/:id
// @Summary Correct a transaction
// @Description Correct the method, reference or date of a transaction (admin only). The amount cannot be changed.
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body CorrectTransactionRequest true "Fields to correct"
// @Success 200 {object} Response{data=domain.Transaction} "Transaction corrected"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [patch]
func (h *PaymentHandler) Correct(c *gin.Context) {
	txnID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CorrectTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input.TransactionID = txnID
	input.UserID = userID

	txn, err := h.paymentService.CorrectTransaction(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txn)
}
