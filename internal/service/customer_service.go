package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

// CreateCustomerInput is the DTO for creating a customer (lead).
type CreateCustomerInput struct {
	Name      string    `json:"name" binding:"required" validate:"required,max=200"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Phone     string    `json:"phone" validate:"max=32"`
	Company   string    `json:"company" validate:"max=200"`
	State     string    `json:"state" validate:"max=64"`
	GSTIN     string    `json:"gstin" validate:"omitempty,len=15,alphanum"`
	CreatedBy uuid.UUID `json:"-"`
}

// UpdateCustomerInput is the DTO for updating a customer. Nil fields are left unchanged.
type UpdateCustomerInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Company *string `json:"company" validate:"omitempty,max=200"`
	State   *string `json:"state" validate:"omitempty,max=64"`
	GSTIN   *string `json:"gstin" validate:"omitempty,len=15,alphanum"`
}

// CustomerService defines the customer management contract.
type CustomerService interface {
	Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, search string, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
}

type customerService struct {
	repo port.CustomerRepository
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(repo port.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	customer := &domain.Customer{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Company:   strings.TrimSpace(input.Company),
		State:     strings.TrimSpace(input.State),
		GSTIN:     strings.ToUpper(strings.TrimSpace(input.GSTIN)),
		CreatedBy: input.CreatedBy,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

func (s *customerService) List(ctx context.Context, search string, offset, limit int) ([]domain.Customer, int, error) {
	return s.repo.List(ctx, search, offset, limit)
}

func (s *customerService) Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	customer, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		customer.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Company != nil {
		customer.Company = strings.TrimSpace(*input.Company)
	}
	// A state change only affects documents created or re-itemized afterwards.
	if input.State != nil {
		customer.State = strings.TrimSpace(*input.State)
	}
	if input.GSTIN != nil {
		customer.GSTIN = strings.ToUpper(strings.TrimSpace(*input.GSTIN))
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	return s.repo.Delete(ctx, customerID)
}
