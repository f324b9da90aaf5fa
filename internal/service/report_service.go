package service

import (
	"context"
	"fmt"
	"io"

	"crmcore/internal/domain"
	"crmcore/internal/export"
	"crmcore/internal/port"
)

// ReportService renders document listings for download.
type ReportService interface {
	// DocumentsCSV writes a BOM-prefixed CSV listing to w.
	DocumentsCSV(ctx context.Context, w io.Writer, filters domain.ReportFilters) error
	// DocumentsWorkbook writes an XLSX workbook with document and payment sheets to w.
	DocumentsWorkbook(ctx context.Context, w io.Writer, filters domain.ReportFilters) error
}

type reportService struct {
	reportRepo port.ReportRepository
}

// NewReportService creates a new ReportService implementation.
func NewReportService(reportRepo port.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func checkReportFilters(filters *domain.ReportFilters) error {
	if filters.Type != "" {
		if err := checkDocumentType(filters.Type); err != nil {
			return err
		}
	}
	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return domain.NewValidationError("from", "must not be after to")
	}
	return nil
}

func (s *reportService) DocumentsCSV(ctx context.Context, w io.Writer, filters domain.ReportFilters) error {
	if err := checkReportFilters(&filters); err != nil {
		return err
	}
	rows, err := s.reportRepo.Documents(ctx, filters)
	if err != nil {
		return err
	}

	if _, err := w.Write(export.BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	cw := export.NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := cw.WriteDocuments(rows); err != nil {
		return fmt.Errorf("writing CSV rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func (s *reportService) DocumentsWorkbook(ctx context.Context, w io.Writer, filters domain.ReportFilters) error {
	if err := checkReportFilters(&filters); err != nil {
		return err
	}
	docs, err := s.reportRepo.Documents(ctx, filters)
	if err != nil {
		return err
	}
	payments, err := s.reportRepo.Payments(ctx, filters)
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(w, docs, payments); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
