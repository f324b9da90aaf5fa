package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDocumentLocker is a mock implementation of port.DocumentLocker.
type MockDocumentLocker struct {
	mock.Mock
}

func (m *MockDocumentLocker) Obtain(ctx context.Context, documentID uuid.UUID) (func(), error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
