package cache

import (
	"context"
	"fmt"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency backend named in configuration
type IdempotencyStoreFactory struct {
	cfg           config.IdempotencyConfig
	redis         *redis.Client
	logger        *zap.Logger
	allowFallback bool
}

// FactoryOption configures an IdempotencyStoreFactory
type FactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithRedisClient supplies the redis client for the redis backend
func WithRedisClient(client *redis.Client) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.redis = client
	}
}

// WithInMemoryFallback allows the memory backend when redis is configured but unreachable.
// Defaults to true outside production.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a factory for cfg
func NewIdempotencyStoreFactory(cfg config.IdempotencyConfig, opts ...FactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{cfg: cfg, logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if f.cfg.Backend != "redis" {
		f.logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	var err error
	if f.redis == nil {
		err = fmt.Errorf("redis backend selected but no redis client configured")
	} else if err = f.redis.Ping(ctx).Err(); err == nil {
		f.logger.Info("Using redis idempotency store")
		return NewRedisIdempotencyStore(f.redis, "", false), nil
	}

	if !f.allowFallback {
		return nil, fmt.Errorf("redis idempotency store unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"duplicate submissions to different instances will not be detected",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
