package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLedgerHandler struct {
	mock.Mock
}

func (m *mockLedgerHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockLedgerHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type mockDedupStore struct {
	mock.Mock
}

func (m *mockDedupStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockDedupStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockDedupStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type dedupTestEvent struct {
	shared.BaseDomainEvent
	Party string
}

func newDedupTestEvent() *dedupTestEvent {
	return &dedupTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("payment.recorded", "VendorLedger", uuid.New(), uuid.New()),
		Party:           "Sharma Traders",
	}
}

func TestIdempotentHandler_Handle(t *testing.T) {
	logger := zap.NewNop()

	t.Run("first delivery is processed", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(mockLedgerHandler)
		evt := newDedupTestEvent()
		inner.On("Handle", mock.Anything, evt).Return(nil)

		handler := NewIdempotentHandler(inner, store, logger)

		require.NoError(t, handler.Handle(context.Background(), evt))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
	})

	t.Run("redeliveries are swallowed", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(mockLedgerHandler)
		evt := newDedupTestEvent()
		inner.On("Handle", mock.Anything, evt).Return(nil).Once()

		handler := NewIdempotentHandler(inner, store, logger)

		require.NoError(t, handler.Handle(context.Background(), evt))
		require.NoError(t, handler.Handle(context.Background(), evt))
		require.NoError(t, handler.Handle(context.Background(), evt))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(2), handler.metrics.EventsDuplicate.Load())
	})

	t.Run("handler failure keeps the dedup key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(mockLedgerHandler)
		evt := newDedupTestEvent()
		handlerErr := errors.New("ledger rebuild failed")
		inner.On("Handle", mock.Anything, evt).Return(handlerErr)

		handler := NewIdempotentHandler(inner, store, logger)

		err := handler.Handle(context.Background(), evt)
		require.Error(t, err)
		assert.Equal(t, handlerErr, err)

		assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(1), handler.metrics.EventsFailed.Load())
	})

	t.Run("store failure still processes the event", func(t *testing.T) {
		store := new(mockDedupStore)
		inner := new(mockLedgerHandler)
		evt := newDedupTestEvent()

		store.On("MarkProcessed", mock.Anything, evt.EventID().String(), mock.Anything).
			Return(false, errors.New("redis unavailable"))
		inner.On("Handle", mock.Anything, evt).Return(nil)

		handler := NewIdempotentHandler(inner, store, logger)

		require.NoError(t, handler.Handle(context.Background(), evt))

		store.AssertExpectations(t)
		inner.AssertExpectations(t)
	})

	t.Run("disabled config passes everything through", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(mockLedgerHandler)
		evt := newDedupTestEvent()
		inner.On("Handle", mock.Anything, evt).Return(nil).Times(3)

		config := shared.DefaultIdempotencyConfig()
		config.Enabled = false

		handler := NewIdempotentHandler(inner, store, logger, WithIdempotencyConfig(config))

		for i := 0; i < 3; i++ {
			require.NoError(t, handler.Handle(context.Background(), evt))
		}

		inner.AssertExpectations(t)
		assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
	})

	t.Run("custom TTL is forwarded to the store", func(t *testing.T) {
		store := new(mockDedupStore)
		inner := new(mockLedgerHandler)
		evt := newDedupTestEvent()

		store.On("MarkProcessed", mock.Anything, evt.EventID().String(), 1*time.Hour).
			Return(true, nil)
		inner.On("Handle", mock.Anything, evt).Return(nil).Once()

		handler := NewIdempotentHandler(inner, store, logger,
			WithIdempotencyConfig(shared.IdempotencyConfig{TTL: 1 * time.Hour, Enabled: true}),
		)

		require.NoError(t, handler.Handle(context.Background(), evt))

		store.AssertExpectations(t)
		inner.AssertExpectations(t)
	})
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(mockLedgerHandler)
	expected := []string{"payment.recorded", "payment.reversed"}
	inner.On("EventTypes").Return(expected)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	assert.Equal(t, expected, handler.EventTypes())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_GetWrappedHandler(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(mockLedgerHandler)
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	assert.Equal(t, inner, handler.GetWrappedHandler())
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	metrics := &IdempotencyMetrics{}

	innerA := new(mockLedgerHandler)
	innerB := new(mockLedgerHandler)
	evtA := newDedupTestEvent()
	evtB := newDedupTestEvent()
	innerA.On("Handle", mock.Anything, evtA).Return(nil)
	innerB.On("Handle", mock.Anything, evtB).Return(nil)

	handlerA := NewIdempotentHandler(innerA, store, zap.NewNop(), WithIdempotencyMetrics(metrics))
	handlerB := NewIdempotentHandler(innerB, store, zap.NewNop(), WithIdempotencyMetrics(metrics))

	require.NoError(t, handlerA.Handle(context.Background(), evtA))
	require.NoError(t, handlerB.Handle(context.Background(), evtB))

	assert.Equal(t, int64(2), metrics.EventsProcessed.Load())
	innerA.AssertExpectations(t)
	innerB.AssertExpectations(t)
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	handlers := []shared.EventHandler{new(mockLedgerHandler), new(mockLedgerHandler)}

	wrapped := WrapHandlersWithIdempotency(handlers, store, zap.NewNop())

	require.Len(t, wrapped, 2)
	for i, h := range wrapped {
		dedup, ok := h.(*IdempotentHandler)
		require.True(t, ok, "handler %d is not wrapped", i)
		assert.Equal(t, handlers[i], dedup.GetWrappedHandler())
	}
}

func TestIdempotencyMetrics_Stats(t *testing.T) {
	metrics := &IdempotencyMetrics{}

	metrics.EventsProcessed.Add(10)
	metrics.EventsDuplicate.Add(5)
	metrics.EventsFailed.Add(2)

	stats := metrics.Stats()

	assert.Equal(t, int64(10), stats.EventsProcessed)
	assert.Equal(t, int64(5), stats.EventsDuplicate)
	assert.Equal(t, int64(2), stats.EventsFailed)
}

func TestIdempotentHandler_ConcurrentDeliveries(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(mockLedgerHandler)
	evt := newDedupTestEvent()
	inner.On("Handle", mock.Anything, evt).Return(nil).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	const deliveries = 50
	errCh := make(chan error, deliveries)
	for i := 0; i < deliveries; i++ {
		go func() {
			errCh <- handler.Handle(context.Background(), evt)
		}()
	}
	for i := 0; i < deliveries; i++ {
		assert.NoError(t, <-errCh)
	}

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(deliveries-1), handler.metrics.EventsDuplicate.Load())
}
