package event

import (
	"context"
	"fmt"

	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox table inside the same
// transaction that persists the aggregate, so an event row exists if and only
// if the aggregate change committed.
type OutboxPublisher struct {
	serializer *VersionedSerializer
}

func NewOutboxPublisher(serializer *VersionedSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx serializes the events and saves them as outbox entries using
// the caller's transaction.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, evt := range events {
		payload, err := p.serializer.Serialize(evt)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(evt.TenantID(), evt, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver. The repositories hand over
// their transaction as an opaque value so the domain layer stays free of gorm.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
