package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crmcore/internal/domain"
	"crmcore/internal/export"
	"crmcore/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles document report downloads.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// parseReportFilters extracts report filters from query parameters.
func parseReportFilters(c *gin.Context) (domain.ReportFilters, error) {
	var filters domain.ReportFilters

	filters.Type = domain.DocumentType(c.Query("type"))

	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return filters, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		filters.From = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return filters, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		filters.To = &t
	}

	if cidStr := c.Query("customer_id"); cidStr != "" {
		cid, err := uuid.Parse(cidStr)
		if err != nil {
			return filters, fmt.Errorf("invalid customer_id")
		}
		filters.CustomerID = &cid
	}

	if settledStr := c.Query("settled"); settledStr != "" {
		settled, err := strconv.ParseBool(settledStr)
		if err != nil {
			return filters, fmt.Errorf("settled must be true or false")
		}
		filters.Settled = &settled
	}

	return filters, nil
}

// sendAttachment writes body as a file download.
func sendAttachment(c *gin.Context, contentType, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}

// DocumentsCSV handles GET /api/v1/reports/documents.csv
// @Summary Export documents as CSV
// @Description Download the document listing as a UTF-8 CSV with BOM
// @Tags reports
// @Produce text/csv
// @Param type query string false "invoice or quotation"
// @Param customer_id query string false "Customer ID (UUID)"
// @Param settled query bool false "Settled filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /reports/documents.csv [get]
func (h *ReportHandler) DocumentsCSV(c *gin.Context) {
	filters, err := parseReportFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.DocumentsCSV(c.Request.Context(), &buf, filters); err != nil {
		HandleError(c, err)
		return
	}

	sendAttachment(c, "text/csv; charset=utf-8", export.BuildFilename("documents", "csv", time.Now()), buf.Bytes())
}

// DocumentsXLSX handles GET /api/v1/reports/documents.xlsx
// @Summary Export documents as XLSX
// @Description Download a workbook with a Documents sheet and a Payments sheet
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type query string false "invoice or quotation"
// @Param customer_id query string false "Customer ID (UUID)"
// @Param settled query bool false "Settled filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file "XLSX file"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /reports/documents.xlsx [get]
func (h *ReportHandler) DocumentsXLSX(c *gin.Context) {
	filters, err := parseReportFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.DocumentsWorkbook(c.Request.Context(), &buf, filters); err != nil {
		HandleError(c, err)
		return
	}

	sendAttachment(c, xlsxContentType, export.BuildFilename("documents", "xlsx", time.Now()), buf.Bytes())
}
