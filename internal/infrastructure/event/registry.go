package event

import (
	"sync"

	"github.com/govindji/backoffice/internal/domain/shared"
)

// HandlerRegistry tracks which handlers receive which event types. Handlers
// registered without any event type are catch-all subscribers and see every
// published event.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		byType:   make(map[string][]shared.EventHandler),
		catchAll: make([]shared.EventHandler, 0),
	}
}

// Register subscribes the handler to the given event types, or to all events
// when none are given.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.catchAll = append(r.catchAll, handler)
		return
	}

	for _, eventType := range eventTypes {
		r.byType[eventType] = append(r.byType[eventType], handler)
	}
}

// Unregister removes every subscription the handler holds.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catchAll = without(r.catchAll, handler)

	for eventType, handlers := range r.byType {
		remaining := without(handlers, handler)
		if len(remaining) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = remaining
	}
}

// GetHandlers returns the type-specific handlers for eventType followed by
// the catch-all handlers.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.byType[eventType]
	result := make([]shared.EventHandler, 0, len(matched)+len(r.catchAll))
	result = append(result, matched...)
	return append(result, r.catchAll...)
}

// GetAllHandlers returns every distinct registered handler.
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]bool)
	result := make([]shared.EventHandler, 0, len(r.catchAll))

	collect := func(handlers []shared.EventHandler) {
		for _, h := range handlers {
			if seen[h] {
				continue
			}
			seen[h] = true
			result = append(result, h)
		}
	}

	collect(r.catchAll)
	for _, handlers := range r.byType {
		collect(handlers)
	}

	return result
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	kept := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			kept = append(kept, h)
		}
	}
	return kept
}
