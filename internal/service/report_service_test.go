package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crmcore/internal/domain"
	"crmcore/internal/export"
	"crmcore/internal/service"
	"crmcore/mocks"
)

func reportRows() []domain.DocumentReportRow {
	return []domain.DocumentReportRow{
		{
			DocumentID:    uuid.New(),
			Type:          domain.DocumentTypeInvoice,
			Code:          "IN001",
			Date:          time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			CustomerName:  "Acme Traders",
			CustomerState: "Delhi",
			Taxable:       dec("2000"),
			CGST:          dec("180"),
			SGST:          dec("180"),
			IGST:          dec("0"),
			Total:         dec("2360"),
			PaidAmount:    dec("2360"),
		},
	}
}

func TestReportService_DocumentsCSV(t *testing.T) {
	repo := new(mocks.MockReportRepo)
	svc := service.NewReportService(repo)
	filters := domain.ReportFilters{Type: domain.DocumentTypeInvoice}

	repo.On("Documents", mock.Anything, filters).Return(reportRows(), nil)

	var buf bytes.Buffer
	require.NoError(t, svc.DocumentsCSV(context.Background(), &buf, filters))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, export.BOM))
	records, err := csv.NewReader(bytes.NewReader(out[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Code", records[0][0])
	assert.Equal(t, "IN001", records[1][0])
	assert.Equal(t, "2360.00", records[1][9])
	assert.Equal(t, "0.00", records[1][11])
	assert.Equal(t, "Yes", records[1][12])
}

func TestReportService_DocumentsWorkbook(t *testing.T) {
	repo := new(mocks.MockReportRepo)
	svc := service.NewReportService(repo)
	filters := domain.ReportFilters{}
	ref := "UTR-1"

	repo.On("Documents", mock.Anything, filters).Return(reportRows(), nil)
	repo.On("Payments", mock.Anything, filters).Return([]domain.PaymentReportRow{{
		TransactionID:   uuid.New(),
		DocumentCode:    "IN001",
		CustomerName:    "Acme Traders",
		Amount:          dec("2360"),
		Method:          domain.PaymentMethodUPI,
		ExternalRef:     &ref,
		TransactionDate: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
	}}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.DocumentsWorkbook(context.Background(), &buf, filters))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	docs, err := f.GetRows(export.DocumentsSheet)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	payments, err := f.GetRows(export.PaymentsSheet)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestReportService_RejectsBadFilters(t *testing.T) {
	repo := new(mocks.MockReportRepo)
	svc := service.NewReportService(repo)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := svc.DocumentsCSV(context.Background(), &buf, domain.ReportFilters{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.DocumentsWorkbook(context.Background(), &buf, domain.ReportFilters{Type: "bill"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	repo.AssertNotCalled(t, "Documents", mock.Anything, mock.Anything)
}
