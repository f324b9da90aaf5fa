package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

type documentAuditRepo struct {
	db *sqlx.DB
}

// NewDocumentAuditRepo creates a new PostgreSQL-backed DocumentAuditRepository.
func NewDocumentAuditRepo(db *sqlx.DB) port.DocumentAuditRepository {
	return &documentAuditRepo{db: db}
}

func (r *documentAuditRepo) Create(ctx context.Context, entry *domain.DocumentAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if len(entry.Changes) == 0 {
		entry.Changes = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_audit_log (id, document_id, user_id, action, changes)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.DocumentID, entry.UserID, entry.Action, entry.Changes)
	if err != nil {
		return fmt.Errorf("documentAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *documentAuditRepo) ListByDocument(ctx context.Context, documentID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM document_audit_log WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, 0, fmt.Errorf("documentAuditRepo.ListByDocument count: %w", err)
	}

	entries := []domain.DocumentAuditEntry{}
	err = r.db.SelectContext(ctx, &entries,
		`SELECT id, document_id, user_id, action, changes, created_at FROM document_audit_log
		 WHERE document_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		documentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentAuditRepo.ListByDocument: %w", err)
	}
	return entries, total, nil
}
