package redis_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	lockredis "crmcore/internal/lock/redis"
)

func TestLockKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a8e-3b7d-4c1e-9a55-0d2f4b6e8a10")
	assert.Equal(t, "lock:document:6f1c2a8e-3b7d-4c1e-9a55-0d2f4b6e8a10", lockredis.LockKey(id))
}
