package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/application/ledger"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryBalanceCache implements ledger.BalanceCache using local memory.
// It serves single-instance deployments on its own and acts as the L1
// tier in front of Redis in multi-instance ones.
type InMemoryBalanceCache struct {
	balances sync.Map // map[string]balanceEntry
	ttl      time.Duration
	logger   *zap.Logger
	stopCh   chan struct{} // Channel to stop the cleanup goroutine
	stopped  int32         // Atomic flag to track if cache is stopped

	// Stats for monitoring
	hits   int64
	misses int64
}

// balanceEntry wraps a cached balance with its expiration time
type balanceEntry struct {
	balance   decimal.Decimal
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e balanceEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryBalanceCacheOption is a functional option for configuring the cache
type InMemoryBalanceCacheOption func(*InMemoryBalanceCache)

// WithInMemoryTTL sets how long a cached balance stays valid
func WithInMemoryTTL(ttl time.Duration) InMemoryBalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryBalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		c.logger = logger
	}
}

// NewInMemoryBalanceCache creates a new in-memory balance cache
func NewInMemoryBalanceCache(opts ...InMemoryBalanceCacheOption) *InMemoryBalanceCache {
	cache := &InMemoryBalanceCache{
		ttl:    defaultBalanceTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// balanceKey generates the map key for a party's balance
func (c *InMemoryBalanceCache) balanceKey(tenantID, partyID uuid.UUID) string {
	return tenantID.String() + ":" + partyID.String()
}

// Get retrieves a cached balance
func (c *InMemoryBalanceCache) Get(ctx context.Context, tenantID, partyID uuid.UUID) (decimal.Decimal, bool, error) {
	key := c.balanceKey(tenantID, partyID)

	if value, ok := c.balances.Load(key); ok {
		entry := value.(balanceEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("L1 balance cache hit",
				zap.String("tenant_id", tenantID.String()),
				zap.String("party_id", partyID.String()))
			return entry.balance, true, nil
		}
		// Expired, remove from cache
		c.balances.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("L1 balance cache miss",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()))
	return decimal.Zero, false, nil
}

// Set stores a computed balance with the configured TTL
func (c *InMemoryBalanceCache) Set(ctx context.Context, tenantID, partyID uuid.UUID, balance decimal.Decimal) error {
	key := c.balanceKey(tenantID, partyID)
	c.balances.Store(key, balanceEntry{
		balance:   balance,
		expiresAt: time.Now().Add(c.ttl),
	})

	c.logger.Debug("Cached balance in L1",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate drops the cached balance for a party
func (c *InMemoryBalanceCache) Invalidate(ctx context.Context, tenantID, partyID uuid.UUID) error {
	key := c.balanceKey(tenantID, partyID)
	c.balances.Delete(key)

	c.logger.Debug("Invalidated L1 cached balance",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()))
	return nil
}

// InvalidateTenant drops every cached balance of a tenant
func (c *InMemoryBalanceCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	prefix := tenantID.String() + ":"
	var removed int

	c.balances.Range(func(key, _ any) bool {
		k := key.(string)
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			c.balances.Delete(key)
			removed++
		}
		return true
	})

	c.logger.Debug("Invalidated tenant L1 balance cache",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("entries_removed", removed))
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryBalanceCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryBalanceCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// ResetStats resets the cache statistics
func (c *InMemoryBalanceCache) ResetStats() {
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Count returns the number of entries in the cache
func (c *InMemoryBalanceCache) Count() int {
	var count int
	c.balances.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryBalanceCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in balance cache cleanup",
							zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryBalanceCache) doCleanup() {
	var removed int

	c.balances.Range(func(key, value any) bool {
		entry := value.(balanceEntry)
		if entry.isExpired() {
			c.balances.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired L1 balance entries",
			zap.Int("entries_removed", removed))
	}
}

// Ensure InMemoryBalanceCache implements BalanceCache
var _ ledger.BalanceCache = (*InMemoryBalanceCache)(nil)
