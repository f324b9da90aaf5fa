package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crmcore/internal/domain"
	"crmcore/internal/handler"
	"crmcore/internal/service"
	"crmcore/mocks"
)

func newDocumentHandler(docType domain.DocumentType) (*handler.DocumentHandler, *mocks.MockDocumentService) {
	mockSvc := new(mocks.MockDocumentService)
	return handler.NewDocumentHandler(mockSvc, docType), mockSvc
}

func TestDocumentHandler_Create_Invoice(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	userID := uuid.New()
	customerID := uuid.New()
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input *service.CreateDocumentInput) bool {
		return input.Type == domain.DocumentTypeInvoice &&
			input.CustomerID == customerID &&
			input.CreatedBy == userID &&
			len(input.Items) == 1 &&
			input.Items[0].UnitPrice.Equal(decimal.RequireFromString("500.00"))
	})).Return(&domain.Document{ID: uuid.New(), Type: domain.DocumentTypeInvoice, Code: "IN001"}, nil)

	c, w := newJSONContext(http.MethodPost, "/api/v1/invoices", fmt.Sprintf(`{
		"customer_id": %q,
		"items": [{"description": "Design", "quantity": 2, "unit_price": "500.00"}]
	}`, customerID))
	setAuthContext(c, userID, domain.RoleEmployee)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Create_MalformedJSON(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeQuotation)

	c, w := newJSONContext(http.MethodPost, "/api/v1/quotations", `{"items": [`)
	setAuthContext(c, uuid.New(), domain.RoleEmployee)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Create_ItemValidationField(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	mockSvc.On("Create", mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("items[0].quantity", "must be at least 1"))

	c, w := newJSONContext(http.MethodPost, "/api/v1/invoices", fmt.Sprintf(`{
		"customer_id": %q,
		"items": [{"description": "Design", "quantity": 0, "unit_price": "500"}]
	}`, uuid.New()))
	setAuthContext(c, uuid.New(), domain.RoleEmployee)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items[0].quantity", decodeResponse(t, w).Error.Field)
}

func TestDocumentHandler_List_Filters(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	customerID := uuid.New()
	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f domain.DocumentFilter) bool {
		return f.Type == domain.DocumentTypeInvoice &&
			f.CustomerID != nil && *f.CustomerID == customerID &&
			f.Settled != nil && !*f.Settled &&
			f.Search == "IN00" && f.Limit == 5
	})).Return([]domain.Document{}, 0, nil)

	c, w := newJSONContext(http.MethodGet,
		"/api/v1/invoices?search=IN00&settled=false&limit=5&customer_id="+customerID.String(), nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_List_QuotationIgnoresSettled(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeQuotation)

	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f domain.DocumentFilter) bool {
		return f.Type == domain.DocumentTypeQuotation && f.Settled == nil
	})).Return([]domain.Document{}, 0, nil)

	c, w := newJSONContext(http.MethodGet, "/api/v1/quotations?settled=true", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_List_BadSettled(t *testing.T) {
	h, _ := newDocumentHandler(domain.DocumentTypeInvoice)

	c, w := newJSONContext(http.MethodGet, "/api/v1/invoices?settled=maybe", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_GetByID_WrongType(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, domain.DocumentTypeInvoice, id).Return(nil, domain.ErrDocumentNotFound)

	c, w := newJSONContext(http.MethodGet, "/", nil)
	withID(c, id.String())

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", errorCode(t, w))
}

func TestDocumentHandler_ReplaceItems(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	id := uuid.New()
	userID := uuid.New()
	mockSvc.On("ReplaceItems", mock.Anything, mock.MatchedBy(func(input *service.ReplaceItemsInput) bool {
		return input.DocumentID == id && input.Type == domain.DocumentTypeInvoice &&
			input.UserID == userID && input.Version != nil && *input.Version == 3
	})).Return(&domain.Document{ID: id, Version: 4}, nil)

	c, w := newJSONContext(http.MethodPut, "/", `{"version": 3, "items": [{"description": "A", "quantity": 1, "unit_price": "10"}]}`)
	withID(c, id.String())
	setAuthContext(c, userID, domain.RoleEmployee)

	h.ReplaceItems(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_ReplaceItems_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"stale version", fmt.Errorf("%w: expected version 1, found 2", domain.ErrConcurrentUpdate), http.StatusConflict, "CONCURRENT_UPDATE"},
		{"below paid", domain.ErrTotalBelowPaid, http.StatusBadRequest, "TOTAL_BELOW_PAID"},
		{"not found", domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)
			mockSvc.On("ReplaceItems", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newJSONContext(http.MethodPut, "/", `{"items": [{"description": "A", "quantity": 1, "unit_price": "10"}]}`)
			withID(c, uuid.New().String())
			setAuthContext(c, uuid.New(), domain.RoleEmployee)

			h.ReplaceItems(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestDocumentHandler_Convert(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeQuotation)

	quotationID := uuid.New()
	userID := uuid.New()
	mockSvc.On("ConvertQuotation", mock.Anything, quotationID, userID).
		Return(&domain.Document{ID: uuid.New(), Type: domain.DocumentTypeInvoice, Code: "IN004", SourceID: &quotationID}, nil)

	c, w := newJSONContext(http.MethodPost, "/", nil)
	withID(c, quotationID.String())
	setAuthContext(c, userID, domain.RoleEmployee)

	h.Convert(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Delete_HasPayments(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	id := uuid.New()
	userID := uuid.New()
	mockSvc.On("Delete", mock.Anything, domain.DocumentTypeInvoice, id, userID).Return(domain.ErrDocumentHasPayments)

	c, w := newJSONContext(http.MethodDelete, "/", nil)
	withID(c, id.String())
	setAuthContext(c, userID, domain.RoleAdmin)

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDocumentHandler_Audit(t *testing.T) {
	h, mockSvc := newDocumentHandler(domain.DocumentTypeInvoice)

	id := uuid.New()
	mockSvc.On("ListAudit", mock.Anything, domain.DocumentTypeInvoice, id, 0, 20).
		Return([]domain.DocumentAuditEntry{{DocumentID: id, Action: string(domain.AuditDocumentCreated)}}, 1, nil)

	c, w := newJSONContext(http.MethodGet, "/", nil)
	withID(c, id.String())

	h.Audit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeResponse(t, w).Meta.Total)
}
