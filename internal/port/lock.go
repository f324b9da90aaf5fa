package port

import (
	"context"

	"github.com/google/uuid"
)

// DocumentLocker serializes mutations of a single document across processes.
// Obtain fails with domain.ErrConcurrentUpdate when the lock is held elsewhere.
type DocumentLocker interface {
	Obtain(ctx context.Context, documentID uuid.UUID) (release func(), err error)
}
