package shared

import "context"

// EventHandler consumes domain events, e.g. updating a party's cached
// balance when a payment is recorded.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types this handler wants. An empty slice
	// subscribes the handler to every event.
	EventTypes() []string
}

// EventPublisher publishes one or more domain events. Application services
// hold this narrow interface; they never need subscription control.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations.
type EventSubscriber interface {
	// Subscribe registers a handler. With no event types the handler's own
	// EventTypes() decides what it receives.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the full bus: publish, subscribe, and lifecycle. The in-memory
// bus and the outbox processor both satisfy it.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver saves domain events to the outbox table within a
// transaction. Repositories call this so event rows commit or roll back with
// the aggregate write.
type OutboxEventSaver interface {
	// SaveEvents saves domain events within the current transaction.
	// The txProvider should be a *gorm.DB transaction.
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
