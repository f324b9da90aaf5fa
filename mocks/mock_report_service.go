package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"crmcore/internal/domain"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) DocumentsCSV(ctx context.Context, w io.Writer, filters domain.ReportFilters) error {
	args := m.Called(ctx, w, filters)
	return args.Error(0)
}

func (m *MockReportService) DocumentsWorkbook(ctx context.Context, w io.Writer, filters domain.ReportFilters) error {
	args := m.Called(ctx, w, filters)
	return args.Error(0)
}
