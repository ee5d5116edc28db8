package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency store for the configured Redis
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to memory
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when client is set, otherwise connects
// when Redis is enabled, otherwise (or on failure, if allowed) an in-memory store.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context, client *redis.Client) (shared.IdempotencyStore, error) {
	if client != nil {
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, ""), nil
	}
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(0), nil
	}

	c, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store")
		return &ownedRedisStore{RedisIdempotencyStore: NewRedisIdempotencyStore(c, ""), client: c}, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(0), nil
}

// ownedRedisStore closes the client it created
type ownedRedisStore struct {
	*RedisIdempotencyStore
	client *redis.Client
}

func (s *ownedRedisStore) Close() error {
	return s.client.Close()
}
