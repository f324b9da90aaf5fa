package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

type sequenceRepo struct {
	db *sqlx.DB
}

// NewSequenceRepo creates a new PostgreSQL-backed SequenceRepository.
func NewSequenceRepo(db *sqlx.DB) port.SequenceRepository {
	return &sequenceRepo{db: db}
}

// Next runs outside any caller transaction, so a failed document insert leaves a gap
// rather than returning the number to the pool.
func (r *sequenceRepo) Next(ctx context.Context, docType domain.DocumentType) (int64, error) {
	var next int64
	err := r.db.GetContext(ctx, &next,
		`INSERT INTO document_counters (doc_type, last_value) VALUES ($1, 1)
		 ON CONFLICT (doc_type) DO UPDATE SET last_value = document_counters.last_value + 1
		 RETURNING last_value`,
		docType)
	if err != nil {
		return 0, fmt.Errorf("sequenceRepo.Next: %w", err)
	}
	return next, nil
}
