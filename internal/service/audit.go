package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

// writeAudit records a document mutation in the audit log. Failures are logged but
// never block business logic.
func writeAudit(ctx context.Context, repo port.DocumentAuditRepository, docID uuid.UUID, userID *uuid.UUID, action domain.AuditAction, changes interface{}) {
	if repo == nil {
		return
	}
	raw := json.RawMessage("{}")
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			log.Warn().Err(err).Str("action", string(action)).Msg("marshalling audit changes")
		} else {
			raw = b
		}
	}
	entry := &domain.DocumentAuditEntry{
		ID:         uuid.New(),
		DocumentID: docID,
		UserID:     userID,
		Action:     string(action),
		Changes:    raw,
	}
	if err := repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", string(action)).
			Str("document_id", docID.String()).
			Msg("failed to write audit entry")
	}
}
