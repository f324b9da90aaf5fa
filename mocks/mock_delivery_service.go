package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmcore/internal/service"
)

// MockDeliveryService is a mock implementation of service.DeliveryService.
type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) Deliver(ctx context.Context, input *service.DeliverInput) (*service.DeliveryReceipt, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeliveryReceipt), args.Error(1)
}

func (m *MockDeliveryService) Wait() {
	m.Called()
}
