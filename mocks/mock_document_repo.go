package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crmcore/internal/domain"
)

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, docType, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepo) ReplaceItems(ctx context.Context, doc *domain.Document, expectedVersion int) error {
	args := m.Called(ctx, doc, expectedVersion)
	return args.Error(0)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) error {
	args := m.Called(ctx, docType, docID)
	return args.Error(0)
}

// MockSequenceRepo is a mock implementation of port.SequenceRepository.
type MockSequenceRepo struct {
	mock.Mock
}

func (m *MockSequenceRepo) Next(ctx context.Context, docType domain.DocumentType) (int64, error) {
	args := m.Called(ctx, docType)
	return args.Get(0).(int64), args.Error(1)
}
