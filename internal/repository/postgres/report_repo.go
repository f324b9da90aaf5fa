package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

// buildReportWhere constructs a dynamic WHERE clause over documents aliased d.
// It returns the clause string (starting with "WHERE") and the positional arguments.
func buildReportWhere(filters *domain.ReportFilters) (clause string, args []interface{}) {
	clause = "WHERE d.doc_type = $1"
	args = []interface{}{filters.Type}
	argN := 2

	if filters.CustomerID != nil {
		clause += fmt.Sprintf(" AND d.customer_id = $%d", argN)
		args = append(args, *filters.CustomerID)
		argN++
	}
	if filters.From != nil {
		clause += fmt.Sprintf(" AND d.date >= $%d", argN)
		args = append(args, *filters.From)
		argN++
	}
	if filters.To != nil {
		clause += fmt.Sprintf(" AND d.date <= $%d", argN)
		args = append(args, *filters.To)
	}
	if filters.Settled != nil {
		if *filters.Settled {
			clause += " AND d.paid_amount = d.total"
		} else {
			clause += " AND d.paid_amount <> d.total"
		}
	}
	return clause, args
}

func (r *reportRepo) Documents(ctx context.Context, filters domain.ReportFilters) ([]domain.DocumentReportRow, error) {
	where, args := buildReportWhere(&filters)
	query := `SELECT d.id AS document_id, d.doc_type, d.code, d.date,
			c.name AS customer_name, c.state AS customer_state,
			d.taxable, d.cgst, d.sgst, d.igst, d.total, d.paid_amount
		FROM documents d
		JOIN customers c ON c.id = d.customer_id
		` + where + `
		ORDER BY d.sequence ASC`

	rows := []domain.DocumentReportRow{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reportRepo.Documents: %w", err)
	}
	return rows, nil
}

func (r *reportRepo) Payments(ctx context.Context, filters domain.ReportFilters) ([]domain.PaymentReportRow, error) {
	where, args := buildReportWhere(&filters)
	query := `SELECT t.id AS transaction_id, d.code AS document_code, c.name AS customer_name,
			t.amount, t.method, t.external_ref, t.transaction_date
		FROM transactions t
		JOIN documents d ON d.id = t.document_id
		JOIN customers c ON c.id = t.customer_id
		` + where + `
		ORDER BY d.sequence ASC, t.transaction_date ASC, t.created_at ASC`

	rows := []domain.PaymentReportRow{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reportRepo.Payments: %w", err)
	}
	return rows, nil
}
