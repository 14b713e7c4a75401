package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for broadcaster configuration
const (
	defaultBalanceChannel = "backoffice:balance:invalidation"
	defaultCloseTimeout   = 5 * time.Second
)

// BalanceInvalidationAction identifies what a broadcast message invalidates
type BalanceInvalidationAction string

const (
	// BalanceActionInvalidateParty drops one party's cached balance
	BalanceActionInvalidateParty BalanceInvalidationAction = "invalidate_party"
	// BalanceActionInvalidateTenant drops every cached balance of a tenant
	BalanceActionInvalidateTenant BalanceInvalidationAction = "invalidate_tenant"
)

// BalanceInvalidationMessage is the payload broadcast when a party's
// ledger changes. Every instance drops its local cache entry so stale
// balances never outlive the outbox delivery of the underlying event.
type BalanceInvalidationMessage struct {
	Action    BalanceInvalidationAction `json:"action"`
	TenantID  string                    `json:"tenant_id"`
	PartyID   string                    `json:"party_id,omitempty"`
	Timestamp int64                     `json:"timestamp"`
}

// RedisBalanceBroadcaster fans balance invalidations out to all running
// instances using Redis Pub/Sub. The outbox processor delivers each event
// to exactly one instance; the broadcast is how the other instances learn
// their local balance entries went stale.
type RedisBalanceBroadcaster struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisBalanceBroadcasterOption is a functional option for configuring the broadcaster
type RedisBalanceBroadcasterOption func(*RedisBalanceBroadcaster)

// WithBroadcastChannel sets the Pub/Sub channel name
func WithBroadcastChannel(channel string) RedisBalanceBroadcasterOption {
	return func(b *RedisBalanceBroadcaster) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithBroadcasterLogger sets the logger for the broadcaster
func WithBroadcasterLogger(logger *zap.Logger) RedisBalanceBroadcasterOption {
	return func(b *RedisBalanceBroadcaster) {
		b.logger = logger
	}
}

// NewRedisBalanceBroadcaster creates a broadcaster with its own Redis client
func NewRedisBalanceBroadcaster(cfg RedisConfig, opts ...RedisBalanceBroadcasterOption) (*RedisBalanceBroadcaster, error) {
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

	broadcaster := &RedisBalanceBroadcaster{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		channel:    defaultBalanceChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broadcaster)
	}

	return broadcaster, nil
}

// NewRedisBalanceBroadcasterWithClient creates a broadcaster with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisBalanceBroadcasterWithClient(client *redis.Client, opts ...RedisBalanceBroadcasterOption) *RedisBalanceBroadcaster {
	broadcaster := &RedisBalanceBroadcaster{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		channel:    defaultBalanceChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broadcaster)
	}

	return broadcaster
}

// Publish sends an invalidation message to all subscribers
func (b *RedisBalanceBroadcaster) Publish(ctx context.Context, msg BalanceInvalidationMessage) error {
	// Set timestamp if not set
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("Failed to marshal balance invalidation message",
			zap.String("action", string(msg.Action)),
			zap.Error(err))
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish balance invalidation message",
			zap.String("channel", b.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	b.logger.Debug("Published balance invalidation message",
		zap.String("action", string(msg.Action)),
		zap.String("tenant_id", msg.TenantID),
		zap.String("party_id", msg.PartyID),
		zap.String("channel", b.channel))

	return nil
}

// PublishPartyInvalidation broadcasts that one party's balance went stale
func (b *RedisBalanceBroadcaster) PublishPartyInvalidation(ctx context.Context, tenantID, partyID uuid.UUID) error {
	return b.Publish(ctx, BalanceInvalidationMessage{
		Action:   BalanceActionInvalidateParty,
		TenantID: tenantID.String(),
		PartyID:  partyID.String(),
	})
}

// PublishTenantInvalidation broadcasts that every balance of a tenant went stale
func (b *RedisBalanceBroadcaster) PublishTenantInvalidation(ctx context.Context, tenantID uuid.UUID) error {
	return b.Publish(ctx, BalanceInvalidationMessage{
		Action:   BalanceActionInvalidateTenant,
		TenantID: tenantID.String(),
	})
}

// Subscribe starts listening for invalidation messages.
// The callback function is invoked for each received message.
// This method should be called in a goroutine as it blocks.
func (b *RedisBalanceBroadcaster) Subscribe(ctx context.Context, callback func(msg BalanceInvalidationMessage)) error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	b.isRunning = true
	b.mu.Unlock()

	// Create a cancellable context
	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancelFn = cancel
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	_, err := pubsub.Receive(subCtx)
	if err != nil {
		b.mu.Lock()
		b.isRunning = false
		b.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Info("Subscribed to balance invalidation channel",
		zap.String("channel", b.channel))

	// Get the message channel
	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			b.logger.Info("Balance invalidation subscription stopped")
			b.mu.Lock()
			b.isRunning = false
			b.mu.Unlock()
			b.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("Balance invalidation channel closed")
				b.mu.Lock()
				b.isRunning = false
				b.mu.Unlock()
				b.markDone()
				return nil
			}

			var invalidation BalanceInvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &invalidation); err != nil {
				b.logger.Error("Failed to unmarshal balance invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			b.logger.Debug("Received balance invalidation message",
				zap.String("action", string(invalidation.Action)),
				zap.String("tenant_id", invalidation.TenantID),
				zap.String("party_id", invalidation.PartyID))

			// Call the callback in a separate goroutine to prevent blocking
			go func(m BalanceInvalidationMessage) {
				defer func() {
					if r := recover(); r != nil {
						b.logger.Error("Panic in balance invalidation callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(invalidation)
		}
	}
}

// markDone safely marks the broadcaster as done
func (b *RedisBalanceBroadcaster) markDone() {
	b.doneOnce.Do(func() {
		close(b.doneCh)
	})
}

// Close releases any resources held by the broadcaster
func (b *RedisBalanceBroadcaster) Close() error {
	b.mu.Lock()
	cancelFn := b.cancelFn
	b.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		// Wait for subscription to stop with timeout
		select {
		case <-b.doneCh:
		case <-time.After(defaultCloseTimeout):
			b.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	// Only close client if we own it
	if b.ownsClient {
		return b.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (b *RedisBalanceBroadcaster) GetClient() *redis.Client {
	return b.client
}
