package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerTestEvent struct {
	shared.BaseDomainEvent
	Party string `json:"party"`
}

func newLedgerTestEvent(eventType string, tenantID uuid.UUID) *ledgerTestEvent {
	return &ledgerTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "VendorLedger", uuid.New(), tenantID),
		Party:           "Sharma Traders",
	}
}

type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	seen       []shared.DomainEvent
	err        error
	panicMsg   string
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, evt)
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) seenEvents() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.seen...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to a subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("order.recorded")
		bus.Subscribe(handler, "order.recorded")

		evt := newLedgerTestEvent("order.recorded", uuid.New())
		require.NoError(t, bus.Publish(context.Background(), evt))

		require.Len(t, handler.seenEvents(), 1)
		assert.Equal(t, evt, handler.seenEvents()[0])
	})

	t.Run("delivers a batch in order", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("order.recorded")
		bus.Subscribe(handler, "order.recorded")

		first := newLedgerTestEvent("order.recorded", uuid.New())
		second := newLedgerTestEvent("order.recorded", uuid.New())
		require.NoError(t, bus.Publish(context.Background(), first, second))

		seen := handler.seenEvents()
		require.Len(t, seen, 2)
		assert.Equal(t, first, seen[0])
		assert.Equal(t, second, seen[1])
	})

	t.Run("fans out to every handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		ledger := newRecordingHandler("payment.recorded")
		audit := newRecordingHandler("payment.recorded")
		bus.Subscribe(ledger, "payment.recorded")
		bus.Subscribe(audit, "payment.recorded")

		require.NoError(t, bus.Publish(context.Background(), newLedgerTestEvent("payment.recorded", uuid.New())))

		assert.Len(t, ledger.seenEvents(), 1)
		assert.Len(t, audit.seenEvents(), 1)
	})

	t.Run("catch-all handler sees every type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		audit := newRecordingHandler()
		bus.Subscribe(audit)

		require.NoError(t, bus.Publish(context.Background(),
			newLedgerTestEvent("order.recorded", uuid.New()),
			newLedgerTestEvent("payment.recorded", uuid.New()),
		))

		assert.Len(t, audit.seenEvents(), 2)
	})

	t.Run("handler error does not halt delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		broken := newRecordingHandler("order.recorded")
		broken.err = errors.New("statement rebuild failed")
		healthy := newRecordingHandler("order.recorded")
		bus.Subscribe(broken, "order.recorded")
		bus.Subscribe(healthy, "order.recorded")

		require.NoError(t, bus.Publish(context.Background(), newLedgerTestEvent("order.recorded", uuid.New())))

		assert.Len(t, broken.seenEvents(), 1)
		assert.Len(t, healthy.seenEvents(), 1)
	})

	t.Run("handler panic does not halt delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := newRecordingHandler("order.recorded")
		panicking.panicMsg = "nil balance"
		healthy := newRecordingHandler("order.recorded")
		bus.Subscribe(panicking, "order.recorded")
		bus.Subscribe(healthy, "order.recorded")

		require.NotPanics(t, func() {
			require.NoError(t, bus.Publish(context.Background(), newLedgerTestEvent("order.recorded", uuid.New())))
		})

		assert.Len(t, healthy.seenEvents(), 1)
	})

	t.Run("unmatched events go nowhere", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("payment.recorded")
		bus.Subscribe(handler, "payment.recorded")

		require.NoError(t, bus.Publish(context.Background(), newLedgerTestEvent("order.recorded", uuid.New())))

		assert.Empty(t, handler.seenEvents())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("order.recorded")
	bus.Subscribe(handler, "order.recorded")

	require.NoError(t, bus.Publish(context.Background(), newLedgerTestEvent("order.recorded", uuid.New())))
	require.Len(t, handler.seenEvents(), 1)

	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newLedgerTestEvent("order.recorded", uuid.New())))
	assert.Len(t, handler.seenEvents(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))

	handler := newRecordingHandler("order.recorded")
	bus.Subscribe(handler, "order.recorded")
	require.NoError(t, bus.Publish(ctx, newLedgerTestEvent("order.recorded", uuid.New())))
	assert.Len(t, handler.seenEvents(), 1)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
}
