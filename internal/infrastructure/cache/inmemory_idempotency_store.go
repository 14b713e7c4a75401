package cache

import (
	"context"
	"sync"
	"time"

	"github.com/govindji/backoffice/internal/domain/shared"
)

const defaultIdempotencyCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore implements IdempotencyStore with a map of key
// expirations. Suitable for single-instance deployments and testing; a
// retried submission landing on another instance would not be caught.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	expiries  map[string]time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates an in-memory idempotency store and
// starts its expiry sweeper.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		expiries: make(map[string]time.Time),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.sweep(defaultIdempotencyCleanupInterval)

	return store
}

// MarkProcessed marks a key as processed with a TTL. Returns true if the key
// was newly marked, false if a live entry already holds it.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiresAt, exists := s.expiries[key]; exists && time.Now().Before(expiresAt) {
		return false, nil
	}

	// New key, or an expired entry being reclaimed.
	s.expiries[key] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether a live entry holds the key. Expired entries
// count as not processed even before the sweeper removes them.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, exists := s.expiries[key]
	return exists && time.Now().Before(expiresAt), nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of entries in the store, live or expired. Used in
// tests and health reporting.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiries)
}

func (s *InMemoryIdempotencyStore) sweep(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiresAt := range s.expiries {
		if now.After(expiresAt) {
			delete(s.expiries, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
