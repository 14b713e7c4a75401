package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/application/ledger"
)

// Constants for Redis balance cache configuration
const (
	defaultBalanceKeyPrefix = "party_balance:"
	defaultBalanceTTL       = 5 * time.Minute
	defaultScanBatchSize    = 100
)

// RedisBalanceCache implements ledger.BalanceCache using Redis.
// Balances are stored as exact decimal strings so no precision is lost
// between the computing instance and the reading one.
//
// Backend failures are reported as cache misses: the statement service
// recomputes the balance from the ledger instead of failing the request.
type RedisBalanceCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisBalanceCacheOption is a functional option for configuring the cache
type RedisBalanceCacheOption func(*RedisBalanceCache)

// WithBalanceTTL sets how long a cached balance stays valid
func WithBalanceTTL(ttl time.Duration) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithBalanceKeyPrefix sets the Redis key prefix for balance entries
func WithBalanceKeyPrefix(prefix string) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithBalanceCacheLogger sets the logger for the cache
func WithBalanceCacheLogger(logger *zap.Logger) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		c.logger = logger
	}
}

// NewRedisBalanceCache creates a Redis-backed balance cache with its own client
func NewRedisBalanceCache(cfg RedisConfig, opts ...RedisBalanceCacheOption) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisBalanceCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		keyPrefix:  defaultBalanceKeyPrefix,
		ttl:        defaultBalanceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisBalanceCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisBalanceCacheWithClient(client *redis.Client, opts ...RedisBalanceCacheOption) *RedisBalanceCache {
	cache := &RedisBalanceCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		keyPrefix:  defaultBalanceKeyPrefix,
		ttl:        defaultBalanceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// balanceKey generates the Redis key for a party's balance
func (c *RedisBalanceCache) balanceKey(tenantID, partyID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + partyID.String()
}

// tenantPattern generates the SCAN pattern matching all balances of a tenant
func (c *RedisBalanceCache) tenantPattern(tenantID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":*"
}

// Get retrieves a cached balance. A Redis failure is logged and reported
// as a miss rather than an error.
func (c *RedisBalanceCache) Get(ctx context.Context, tenantID, partyID uuid.UUID) (decimal.Decimal, bool, error) {
	key := c.balanceKey(tenantID, partyID)

	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Balance cache miss",
			zap.String("tenant_id", tenantID.String()),
			zap.String("party_id", partyID.String()))
		return decimal.Zero, false, nil
	}
	if err != nil {
		c.logger.Warn("Balance cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return decimal.Zero, false, nil
	}

	balance, err := decimal.NewFromString(data)
	if err != nil {
		// Corrupted entry, remove it so the next write repairs the key
		c.logger.Warn("Corrupted balance cache entry, deleting",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return decimal.Zero, false, nil
	}

	c.logger.Debug("Balance cache hit",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()))
	return balance, true, nil
}

// Set stores a computed balance with the configured TTL
func (c *RedisBalanceCache) Set(ctx context.Context, tenantID, partyID uuid.UUID, balance decimal.Decimal) error {
	key := c.balanceKey(tenantID, partyID)

	if err := c.client.Set(ctx, key, balance.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache balance",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to cache balance: %w", err)
	}

	c.logger.Debug("Cached balance",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate drops the cached balance for a party
func (c *RedisBalanceCache) Invalidate(ctx context.Context, tenantID, partyID uuid.UUID) error {
	key := c.balanceKey(tenantID, partyID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Failed to invalidate cached balance",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}

	c.logger.Debug("Invalidated cached balance",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()))
	return nil
}

// InvalidateTenant drops every cached balance of a tenant using SCAN,
// which avoids blocking Redis the way KEYS would. Used after bulk
// imports and ledger backfills where per-party invalidation is wasteful.
func (c *RedisBalanceCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	pattern := c.tenantPattern(tenantID)

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan balance keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete balance keys: %w", err)
			}
			deleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated tenant balance cache",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("keys_deleted", deleted))
	return nil
}

// Close releases the Redis client if this cache owns it
func (c *RedisBalanceCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisBalanceCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisBalanceCache implements BalanceCache
var _ ledger.BalanceCache = (*RedisBalanceCache)(nil)
