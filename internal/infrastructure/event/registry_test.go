package event

import (
	"context"
	"testing"

	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type registryHandler struct {
	eventTypes []string
}

func (h *registryHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	return nil
}

func (h *registryHandler) EventTypes() []string {
	return h.eventTypes
}

func subscriberFor(eventTypes ...string) *registryHandler {
	return &registryHandler{eventTypes: eventTypes}
}

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := subscriberFor("order.recorded", "order.amended")

		registry.Register(handler, "order.recorded", "order.amended")

		assert.Equal(t, []shared.EventHandler{handler}, registry.GetHandlers("order.recorded"))
		assert.Equal(t, []shared.EventHandler{handler}, registry.GetHandlers("order.amended"))
		assert.Empty(t, registry.GetHandlers("order.voided"))
	})

	t.Run("no types means catch-all", func(t *testing.T) {
		registry := NewHandlerRegistry()
		audit := subscriberFor()

		registry.Register(audit)

		assert.Equal(t, []shared.EventHandler{audit}, registry.GetHandlers("order.recorded"))
		assert.Equal(t, []shared.EventHandler{audit}, registry.GetHandlers("payment.recorded"))
	})

	t.Run("specific handlers precede catch-all", func(t *testing.T) {
		registry := NewHandlerRegistry()
		ledger := subscriberFor("order.recorded")
		audit := subscriberFor()

		registry.Register(ledger, "order.recorded")
		registry.Register(audit)

		assert.Equal(t, []shared.EventHandler{ledger, audit}, registry.GetHandlers("order.recorded"))
		assert.Equal(t, []shared.EventHandler{audit}, registry.GetHandlers("payment.recorded"))
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	t.Run("removes only the target handler", func(t *testing.T) {
		registry := NewHandlerRegistry()
		first := subscriberFor("order.recorded")
		second := subscriberFor("order.recorded")
		registry.Register(first, "order.recorded")
		registry.Register(second, "order.recorded")

		registry.Unregister(first)

		assert.Equal(t, []shared.EventHandler{second}, registry.GetHandlers("order.recorded"))
	})

	t.Run("removes catch-all subscriptions", func(t *testing.T) {
		registry := NewHandlerRegistry()
		audit := subscriberFor()
		registry.Register(audit)
		assert.Len(t, registry.GetHandlers("payment.recorded"), 1)

		registry.Unregister(audit)

		assert.Empty(t, registry.GetHandlers("payment.recorded"))
	})
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	t.Run("counts each registration once", func(t *testing.T) {
		registry := NewHandlerRegistry()
		registry.Register(subscriberFor("order.recorded"), "order.recorded")
		registry.Register(subscriberFor("payment.recorded"), "payment.recorded")
		registry.Register(subscriberFor())

		assert.Len(t, registry.GetAllHandlers(), 3)
	})

	t.Run("deduplicates multi-type handlers", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := subscriberFor("order.recorded", "order.amended")

		registry.Register(handler, "order.recorded", "order.amended")

		assert.Len(t, registry.GetAllHandlers(), 1)
	})
}
