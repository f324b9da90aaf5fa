package noop

import (
	"context"

	"github.com/google/uuid"

	"crmcore/internal/port"
)

type noopLocker struct{}

// NewDocumentLocker returns a DocumentLocker that never blocks. It is used when
// Redis is not configured; the database version check still guards writes.
func NewDocumentLocker() port.DocumentLocker {
	return noopLocker{}
}

func (noopLocker) Obtain(_ context.Context, _ uuid.UUID) (func(), error) {
	return func() {}, nil
}
