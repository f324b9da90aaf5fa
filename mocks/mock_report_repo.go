package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmcore/internal/domain"
)

// MockReportRepo is a mock implementation of port.ReportRepository.
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Documents(ctx context.Context, filters domain.ReportFilters) ([]domain.DocumentReportRow, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentReportRow), args.Error(1)
}

func (m *MockReportRepo) Payments(ctx context.Context, filters domain.ReportFilters) ([]domain.PaymentReportRow, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentReportRow), args.Error(1)
}
