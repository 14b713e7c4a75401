package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/govindji/backoffice/internal/infrastructure/config"
)

// TokenBlacklist revokes JWT tokens before their natural expiry. Logout
// blacklists the token's JTI; force-logout invalidates every token a user
// holds by timestamp.
type TokenBlacklist interface {
	// RevokeToken adds a token's JTI (JWT ID) to the blacklist.
	// ttl should be the remaining time until the token expires.
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked checks if a token's JTI is in the blacklist
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUserTokens invalidates all tokens issued to a user up to now
	// (force logout of every session)
	RevokeUserTokens(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at the given time has
	// been invalidated by a user-wide revocation
	IsUserRevoked(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenBlacklist creates a Redis-backed token blacklist
func NewRedisTokenBlacklist(cfg config.RedisConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for token blacklist: %w", err)
	}

	return NewRedisTokenBlacklistWithClient(client), nil
}

// NewRedisTokenBlacklistWithClient creates a token blacklist with an existing Redis client
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: "auth:revoked:",
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID string) string {
	return b.keyPrefix + "user:" + userID
}

// RevokeToken adds a token's JTI to the blacklist
func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to revoke
		return nil
	}

	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked checks if a token's JTI is in the blacklist
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return exists > 0, nil
}

// RevokeUserTokens stores a revocation timestamp for the user. Tokens
// issued at or before that instant are rejected until the TTL lapses.
func (b *RedisTokenBlacklist) RevokeUserTokens(ctx context.Context, userID string, ttl time.Duration) error {
	revokedAt := time.Now().UnixNano()
	if err := b.client.Set(ctx, b.userKey(userID), revokedAt, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}

// IsUserRevoked checks if a token was issued before the user's revocation timestamp
func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	val, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if err == redis.Nil {
		// No revocation timestamp, token is valid
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}

	return tokenIssuedAt.UnixNano() <= revokedAt, nil
}

// Close closes the Redis client
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

// Ensure RedisTokenBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist provides an in-memory implementation for tests
// and single-instance deployments. Entries expire lazily on read.
type InMemoryTokenBlacklist struct {
	mu           sync.RWMutex
	revokedJTIs  map[string]time.Time // JTI -> blacklist entry expiry
	revokedUsers map[string]time.Time // userID -> revocation instant
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revokedJTIs:  make(map[string]time.Time),
		revokedUsers: make(map[string]time.Time),
	}
}

// RevokeToken adds a token's JTI to the in-memory blacklist
func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked checks if a token's JTI is blacklisted (and not expired)
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, exists := b.revokedJTIs[jti]
	if !exists {
		return false, nil
	}

	if time.Now().After(expiry) {
		delete(b.revokedJTIs, jti)
		return false, nil
	}

	return true, nil
}

// RevokeUserTokens invalidates all tokens for a user
func (b *InMemoryTokenBlacklist) RevokeUserTokens(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedUsers[userID] = time.Now()
	return nil
}

// IsUserRevoked checks if a token was issued before the user's revocation instant
func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	revokedAt, exists := b.revokedUsers[userID]
	if !exists {
		return false, nil
	}

	return tokenIssuedAt.UnixNano() <= revokedAt.UnixNano(), nil
}

// Ensure InMemoryTokenBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
