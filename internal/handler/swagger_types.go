package handler

import (
	"time"

	"github.com/google/uuid"

	"crmcore/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required" example:"jane.doe@example.com"`
	Password string          `json:"password" binding:"required" example:"securepassword123"`
	FullName string          `json:"full_name" binding:"required" example:"Jane Doe"`
	Role     domain.UserRole `json:"role" binding:"required" example:"member"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Email    *string          `json:"email" example:"jane.smith@example.com"`
	FullName *string          `json:"full_name" example:"Jane Smith"`
	Password *string          `json:"password" example:"newpassword123"`
	Role     *domain.UserRole `json:"role" example:"admin"`
	IsActive *bool            `json:"is_active" example:"true"`
}

// CreateCustomerRequest represents the create customer request body.
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required" example:"Ravi Kumar"`
	Email   string `json:"email" example:"ravi@example.in"`
	Phone   string `json:"phone" example:"+91 98100 00000"`
	Company string `json:"company" example:"Kumar Traders"`
	State   string `json:"state" example:"Maharashtra"`
	GSTIN   string `json:"gstin" example:"27AABCU9603R1ZM"`
}

// UpdateCustomerRequest represents the update customer request body.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" example:"Ravi Kumar"`
	Email   *string `json:"email" example:"ravi@example.in"`
	Phone   *string `json:"phone" example:"+91 98100 00000"`
	Company *string `json:"company" example:"Kumar Traders LLP"`
	State   *string `json:"state" example:"Delhi"`
	GSTIN   *string `json:"gstin" example:"07AABCU9603R1ZM"`
}

// LineItemRequest represents a single line item.
type LineItemRequest struct {
	Description string `json:"description" binding:"required" example:"Website design"`
	Quantity    int    `json:"quantity" example:"2"`
	UnitPrice   string `json:"unit_price" example:"500.00"`
	HSNCode     string `json:"hsn_code" example:"998314"`
}

// CreateDocumentRequest represents the create invoice or quotation request body.
type CreateDocumentRequest struct {
	CustomerID uuid.UUID         `json:"customer_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID  *string           `json:"project_id" example:"PRJ-42"`
	Date       *time.Time        `json:"date" example:"2026-04-01T00:00:00Z"`
	Items      []LineItemRequest `json:"items" binding:"required"`
}

// ReplaceItemsRequest represents the replace items request body.
type ReplaceItemsRequest struct {
	Items   []LineItemRequest `json:"items" binding:"required"`
	Version *int              `json:"version" example:"3"`
}

// RecordPaymentRequest represents the record payment request body.
type RecordPaymentRequest struct {
	Amount          string     `json:"amount" binding:"required" example:"2000.00"`
	Method          string     `json:"method" binding:"required" example:"UPI"`
	TransactionID   *string    `json:"transaction_id" example:"UPI-883920"`
	TransactionDate *time.Time `json:"transaction_date" example:"2026-04-02T10:30:00Z"`
	Version         *int       `json:"version" example:"1"`
}

// CorrectTransactionRequest represents the transaction correction request body.
type CorrectTransactionRequest struct {
	Method          *string    `json:"method" example:"Bank Transfer"`
	TransactionID   *string    `json:"transaction_id" example:"NEFT-1200"`
	TransactionDate *time.Time `json:"transaction_date" example:"2026-04-02T00:00:00Z"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
