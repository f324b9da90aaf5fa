package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crmcore/internal/config"
	"crmcore/internal/domain"
	"crmcore/internal/port"
)

const (
	retryInterval = 50 * time.Millisecond
	maxRetries    = 10
)

type redisLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

// NewClient opens a go-redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewDocumentLocker creates a DocumentLocker backed by redislock.
func NewDocumentLocker(rdb *goredis.Client, ttl time.Duration) port.DocumentLocker {
	return &redisLocker{locker: redislock.New(rdb), ttl: ttl}
}

// LockKey returns the redis key guarding a document.
func LockKey(documentID uuid.UUID) string {
	return fmt.Sprintf("lock:document:%s", documentID)
}

func (l *redisLocker) Obtain(ctx context.Context, documentID uuid.UUID) (func(), error) {
	key := LockKey(documentID)
	lock, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), maxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: lock %s is held", domain.ErrConcurrentUpdate, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redisLocker.Obtain: %w", err)
	}

	release := func() {
		// The request context may already be cancelled when the caller releases.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("key", key).Msg("releasing document lock")
		}
	}
	return release, nil
}
