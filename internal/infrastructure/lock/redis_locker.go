package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const retryBackoff = 100 * time.Millisecond

// RedisLocker serialises work on a key across processes with redislock
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	retries int
	logger  *zap.Logger
}

// NewRedisLocker creates a locker. A held lock expires after ttl if its holder dies;
// a waiter polls retries times before giving up.
func NewRedisLocker(client *redis.Client, ttl time.Duration, retries int, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client:  redislock.New(client),
		ttl:     ttl,
		retries: retries,
		logger:  logger,
	}
}

// Lock obtains key. A key still held after the retries is reported as AlreadyProcessed,
// since another request is working on the same item.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryBackoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		l.logger.Warn("Lock is held by another request", zap.String("key", key))
		return nil, shared.NewAlreadyProcessedError("item is being processed by another request")
	}
	if err != nil {
		return nil, shared.NewPersistenceError("obtain lock", err)
	}

	return func(ctx context.Context) error {
		err := lk.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// expired while held; the database claim still decided the outcome
			l.logger.Warn("Lock expired before release", zap.String("key", key))
			return nil
		}
		return err
	}, nil
}
