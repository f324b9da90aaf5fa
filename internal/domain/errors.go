package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrUploadFailed       = errors.New("file upload to storage failed")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")

	ErrCustomerNotFound    = fmt.Errorf("customer %w", ErrNotFound)
	ErrDocumentNotFound    = fmt.Errorf("document %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	ErrValidation          = errors.New("validation failed")
	ErrOverpayment         = errors.New("payment exceeds remaining balance")
	ErrConcurrentUpdate    = errors.New("document was modified concurrently; reload and retry")
	ErrNotPayable          = errors.New("payments can only be recorded against invoices")
	ErrTotalBelowPaid      = fmt.Errorf("%w: new total is below the amount already paid", ErrValidation)
	ErrDocumentHasPayments = errors.New("document has recorded payments")
	ErrCustomerInUse       = errors.New("customer is referenced by documents")
)

// ValidationError describes a single rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
