package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/govindji/backoffice/internal/domain/shared"
)

// StubEventHandler records every event delivered to it and can be told
// to fail, for exercising bus dispatch and retry paths.
type StubEventHandler struct {
	mu       sync.Mutex
	types    []string
	events   []shared.DomainEvent
	failWith error
}

// NewStubEventHandler subscribes to the given event types; with none it
// receives everything the bus carries.
func NewStubEventHandler(eventTypes ...string) *StubEventHandler {
	return &StubEventHandler{types: eventTypes}
}

func (h *StubEventHandler) EventTypes() []string {
	return h.types
}

func (h *StubEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.failWith
}

// Events returns a copy of everything handled so far.
func (h *StubEventHandler) Events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Count returns how many events have been handled.
func (h *StubEventHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// FailWith makes subsequent Handle calls return err. Events are still
// recorded, matching a handler that fails after side effects.
func (h *StubEventHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failWith = err
}

// Reset drops recorded events and clears any injected failure.
func (h *StubEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
	h.failWith = nil
}

// StubEvent is a minimal domain event for bus plumbing tests.
type StubEvent struct {
	shared.BaseDomainEvent
	Note string
}

// NewStubEvent builds an event of the given type against a throwaway
// party aggregate.
func NewStubEvent(eventType string, tenantID uuid.UUID) *StubEvent {
	return &StubEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Party", uuid.New(), tenantID),
		Note:            "ledger-test",
	}
}

// WaitForEvents polls until the handler has seen at least n events,
// reporting false when the timeout passes first.
func WaitForEvents(t *testing.T, h *StubEventHandler, n int, timeout time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if h.Count() >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return h.Count() >= n
}
