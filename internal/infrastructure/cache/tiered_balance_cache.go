package cache

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/application/ledger"
)

// TieredBalanceCache implements a two-tier caching strategy for party balances.
// L1: Local in-memory cache (fast, but local to instance)
// L2: Redis cache (slower, but shared across instances)
// Writes go to both tiers; invalidations clear both and are broadcast over
// Pub/Sub so every other instance drops its L1 entry too.
type TieredBalanceCache struct {
	l1Cache     *InMemoryBalanceCache
	l2Cache     *RedisBalanceCache
	broadcaster *RedisBalanceBroadcaster
	logger      *zap.Logger

	// Stats for monitoring
	l1Hits   int64
	l1Misses int64
	l2Hits   int64
	l2Misses int64
}

// BalanceCacheStats reports hit ratios across both tiers
type BalanceCacheStats struct {
	L1Hits       int64   `json:"l1_hits"`
	L1Misses     int64   `json:"l1_misses"`
	L2Hits       int64   `json:"l2_hits"`
	L2Misses     int64   `json:"l2_misses"`
	TotalHits    int64   `json:"total_hits"`
	TotalMisses  int64   `json:"total_misses"`
	HitRatio     float64 `json:"hit_ratio"`
	CacheEntries int64   `json:"cache_entries"`
}

// TieredBalanceCacheOption is a functional option for configuring the cache
type TieredBalanceCacheOption func(*TieredBalanceCache)

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredBalanceCacheOption {
	return func(c *TieredBalanceCache) {
		c.logger = logger
	}
}

// NewTieredBalanceCache creates a new tiered balance cache.
// The broadcaster may be nil, in which case invalidations stay local
// to this instance and the shared L2 tier.
func NewTieredBalanceCache(
	l1Cache *InMemoryBalanceCache,
	l2Cache *RedisBalanceCache,
	broadcaster *RedisBalanceBroadcaster,
	opts ...TieredBalanceCacheOption,
) *TieredBalanceCache {
	cache := &TieredBalanceCache{
		l1Cache:     l1Cache,
		l2Cache:     l2Cache,
		broadcaster: broadcaster,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// StartInvalidationSubscription starts listening for invalidation messages
// from other instances. This should be called in a goroutine as it blocks.
func (c *TieredBalanceCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.broadcaster == nil {
		return nil
	}

	return c.broadcaster.Subscribe(ctx, func(msg BalanceInvalidationMessage) {
		c.handleInvalidationMessage(msg)
	})
}

// handleInvalidationMessage drops L1 entries named by a broadcast message.
// The publishing instance already cleared L2, so only the local tier needs
// touching here.
func (c *TieredBalanceCache) handleInvalidationMessage(msg BalanceInvalidationMessage) {
	ctx := context.Background()

	tenantID, err := uuid.Parse(msg.TenantID)
	if err != nil {
		c.logger.Error("Failed to parse tenant ID in invalidation message",
			zap.String("tenant_id", msg.TenantID),
			zap.Error(err))
		return
	}

	switch msg.Action {
	case BalanceActionInvalidateParty:
		partyID, err := uuid.Parse(msg.PartyID)
		if err != nil {
			c.logger.Error("Failed to parse party ID in invalidation message",
				zap.String("party_id", msg.PartyID),
				zap.Error(err))
			return
		}
		if err := c.l1Cache.Invalidate(ctx, tenantID, partyID); err != nil {
			c.logger.Error("Failed to invalidate L1 balance",
				zap.String("party_id", msg.PartyID),
				zap.Error(err))
		}
		c.logger.Debug("Invalidated L1 balance from broadcast",
			zap.String("tenant_id", msg.TenantID),
			zap.String("party_id", msg.PartyID))

	case BalanceActionInvalidateTenant:
		if err := c.l1Cache.InvalidateTenant(ctx, tenantID); err != nil {
			c.logger.Error("Failed to invalidate tenant L1 balances",
				zap.String("tenant_id", msg.TenantID),
				zap.Error(err))
		}
		c.logger.Debug("Invalidated tenant L1 balances from broadcast",
			zap.String("tenant_id", msg.TenantID))
	}
}

// Get retrieves a balance from cache (L1 -> L2)
func (c *TieredBalanceCache) Get(ctx context.Context, tenantID, partyID uuid.UUID) (decimal.Decimal, bool, error) {
	// Try L1 first
	balance, found, err := c.l1Cache.Get(ctx, tenantID, partyID)
	if err != nil {
		c.logger.Warn("L1 balance cache error",
			zap.String("party_id", partyID.String()),
			zap.Error(err))
	}
	if found {
		atomic.AddInt64(&c.l1Hits, 1)
		return balance, true, nil
	}
	atomic.AddInt64(&c.l1Misses, 1)

	// Try L2
	balance, found, err = c.l2Cache.Get(ctx, tenantID, partyID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if found {
		atomic.AddInt64(&c.l2Hits, 1)
		// Populate L1 cache
		if err := c.l1Cache.Set(ctx, tenantID, partyID, balance); err != nil {
			c.logger.Warn("Failed to populate L1 balance cache",
				zap.String("party_id", partyID.String()),
				zap.Error(err))
		}
		return balance, true, nil
	}
	atomic.AddInt64(&c.l2Misses, 1)

	return decimal.Zero, false, nil
}

// Set stores a balance in both tiers and tells other instances to drop
// whatever older value their L1 may hold.
func (c *TieredBalanceCache) Set(ctx context.Context, tenantID, partyID uuid.UUID, balance decimal.Decimal) error {
	// Set in L2
	if err := c.l2Cache.Set(ctx, tenantID, partyID, balance); err != nil {
		return err
	}

	// Also set in L1 for immediate local access
	if err := c.l1Cache.Set(ctx, tenantID, partyID, balance); err != nil {
		c.logger.Warn("Failed to set L1 balance cache",
			zap.String("party_id", partyID.String()),
			zap.Error(err))
	}

	// Publish invalidation for other instances
	if c.broadcaster != nil {
		if err := c.broadcaster.PublishPartyInvalidation(ctx, tenantID, partyID); err != nil {
			c.logger.Warn("Failed to publish balance update",
				zap.String("party_id", partyID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// Invalidate drops a party's balance from both tiers and broadcasts the
// invalidation to other instances
func (c *TieredBalanceCache) Invalidate(ctx context.Context, tenantID, partyID uuid.UUID) error {
	// Invalidate L2
	if err := c.l2Cache.Invalidate(ctx, tenantID, partyID); err != nil {
		return err
	}

	// Invalidate L1
	if err := c.l1Cache.Invalidate(ctx, tenantID, partyID); err != nil {
		c.logger.Warn("Failed to invalidate L1 balance",
			zap.String("party_id", partyID.String()),
			zap.Error(err))
	}

	// Publish invalidation for other instances
	if c.broadcaster != nil {
		if err := c.broadcaster.PublishPartyInvalidation(ctx, tenantID, partyID); err != nil {
			c.logger.Warn("Failed to publish balance invalidation",
				zap.String("party_id", partyID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// InvalidateTenant drops every balance of a tenant from both tiers and
// broadcasts the invalidation to other instances
func (c *TieredBalanceCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	// Invalidate L2
	if err := c.l2Cache.InvalidateTenant(ctx, tenantID); err != nil {
		return err
	}

	// Invalidate L1
	if err := c.l1Cache.InvalidateTenant(ctx, tenantID); err != nil {
		c.logger.Warn("Failed to invalidate tenant L1 balances",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}

	// Publish invalidation for other instances
	if c.broadcaster != nil {
		if err := c.broadcaster.PublishTenantInvalidation(ctx, tenantID); err != nil {
			c.logger.Warn("Failed to publish tenant invalidation",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// Close releases any resources held by the cache
func (c *TieredBalanceCache) Close() error {
	var lastErr error

	if c.broadcaster != nil {
		if err := c.broadcaster.Close(); err != nil {
			lastErr = err
		}
	}

	if err := c.l2Cache.Close(); err != nil {
		lastErr = err
	}

	if err := c.l1Cache.Close(); err != nil {
		lastErr = err
	}

	return lastErr
}

// GetCacheStats returns statistics about cache hits and misses
func (c *TieredBalanceCache) GetCacheStats() BalanceCacheStats {
	l1Hits := atomic.LoadInt64(&c.l1Hits)
	l1Misses := atomic.LoadInt64(&c.l1Misses)
	l2Hits := atomic.LoadInt64(&c.l2Hits)
	l2Misses := atomic.LoadInt64(&c.l2Misses)

	totalHits := l1Hits + l2Hits
	totalMisses := l2Misses // Only count final misses

	var hitRatio float64
	totalRequests := totalHits + totalMisses
	if totalRequests > 0 {
		hitRatio = float64(totalHits) / float64(totalRequests)
	}

	return BalanceCacheStats{
		L1Hits:       l1Hits,
		L1Misses:     l1Misses,
		L2Hits:       l2Hits,
		L2Misses:     l2Misses,
		TotalHits:    totalHits,
		TotalMisses:  totalMisses,
		HitRatio:     hitRatio,
		CacheEntries: int64(c.l1Cache.Count()),
	}
}

// ResetStats resets the cache statistics
func (c *TieredBalanceCache) ResetStats() {
	atomic.StoreInt64(&c.l1Hits, 0)
	atomic.StoreInt64(&c.l1Misses, 0)
	atomic.StoreInt64(&c.l2Hits, 0)
	atomic.StoreInt64(&c.l2Misses, 0)
	c.l1Cache.ResetStats()
}

// Ensure TieredBalanceCache implements BalanceCache
var _ ledger.BalanceCache = (*TieredBalanceCache)(nil)
