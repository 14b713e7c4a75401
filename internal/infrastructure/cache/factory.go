package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/application/ledger"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/config"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
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

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable
// Default is true (allow fallback)
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
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based idempotency store
func (f *IdempotencyStoreFactory) CreateRedisStore() (shared.IdempotencyStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisIdempotencyStore(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory idempotency store
// This is suitable for single-instance deployments and testing
// WARNING: In-memory stores do not share state across process instances,
// which can lead to duplicate submissions slipping through in distributed deployments
func (f *IdempotencyStoreFactory) CreateInMemoryStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}

// CreateStore creates an idempotency store based on whether Redis is available
// It tries to create a Redis store first, and falls back to in-memory if Redis is not available
// and AllowInMemoryFallback is true
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	// Try Redis first
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return store, nil
	}

	// Check if fallback is allowed
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"This may let duplicate submissions through in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}

// BalanceCacheFactory creates party balance caches based on configuration
type BalanceCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BalanceCacheFactoryOption is a functional option for configuring the factory
type BalanceCacheFactoryOption func(*BalanceCacheFactory)

// WithBalanceFactoryLogger sets the logger for the factory and the caches it builds
func WithBalanceFactoryLogger(logger *zap.Logger) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.logger = logger
	}
}

// WithBalanceFallback controls whether to fall back to a purely local cache
// when Redis is unavailable. Default is true (allow fallback).
func WithBalanceFallback(allow bool) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBalanceCacheFactory creates a new factory. The TTL applies to both tiers.
func NewBalanceCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...BalanceCacheFactoryOption) *BalanceCacheFactory {
	f := &BalanceCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateInMemoryCache creates a purely local balance cache.
// Suitable for single-instance deployments and testing.
func (f *BalanceCacheFactory) CreateInMemoryCache() *InMemoryBalanceCache {
	return NewInMemoryBalanceCache(
		WithInMemoryTTL(f.ttl),
		WithInMemoryLogger(f.logger),
	)
}

// CreateTieredCache creates a two-tier cache with Pub/Sub invalidation.
// All three Redis components share one client, owned by the L2 cache.
func (f *BalanceCacheFactory) CreateTieredCache() (*TieredBalanceCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	l2, err := NewRedisBalanceCache(redisCfg,
		WithBalanceTTL(f.ttl),
		WithBalanceCacheLogger(f.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis balance cache: %w", err)
	}

	l1 := f.CreateInMemoryCache()
	broadcaster := NewRedisBalanceBroadcasterWithClient(l2.GetClient(),
		WithBroadcasterLogger(f.logger),
	)

	return NewTieredBalanceCache(l1, l2, broadcaster,
		WithTieredLogger(f.logger),
	), nil
}

// CreateCache creates a balance cache based on whether Redis is available.
// It tries the tiered cache first and falls back to the local one if Redis
// is not reachable and fallback is allowed.
func (f *BalanceCacheFactory) CreateCache() (ledger.BalanceCache, error) {
	cache, err := f.CreateTieredCache()
	if err == nil {
		f.logger.Info("using tiered balance cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for balance cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory balance cache. "+
		"Instances will not see each other's invalidations.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
