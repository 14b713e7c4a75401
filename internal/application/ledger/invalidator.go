package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// BalanceCacheInvalidator drops a party's cached balance whenever an order
// or payment event changes what the balance would compute to. Receiving an
// order is not such an event: the balance counts every non-cancelled order
// whether or not goods have arrived.
type BalanceCacheInvalidator struct {
	cache  BalanceCache
	logger *zap.Logger
}

// NewBalanceCacheInvalidator creates a new invalidator over the given cache
func NewBalanceCacheInvalidator(cache BalanceCache, logger *zap.Logger) *BalanceCacheInvalidator {
	return &BalanceCacheInvalidator{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BalanceCacheInvalidator) EventTypes() []string {
	return []string{
		order.EventTypePurchaseOrderCreated,
		order.EventTypePurchaseOrderAmended,
		order.EventTypePurchaseOrderCancelled,
		payment.EventTypePartyPaymentRecorded,
		payment.EventTypePartyPaymentVoided,
	}
}

// Handle invalidates the cached balance of the event's party
func (h *BalanceCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	partyID, ok := partyIDFromEvent(event)
	if !ok {
		h.logger.Error("unexpected event type for balance invalidation",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if err := h.cache.Invalidate(ctx, event.TenantID(), partyID); err != nil {
		h.logger.Error("failed to invalidate party balance",
			zap.String("event_type", event.EventType()),
			zap.String("party_id", partyID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to invalidate party balance: %w", err)
	}

	h.logger.Debug("party balance invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("party_id", partyID.String()),
	)
	return nil
}

// partyIDFromEvent extracts the party the event belongs to
func partyIDFromEvent(event shared.DomainEvent) (uuid.UUID, bool) {
	switch e := event.(type) {
	case *order.PurchaseOrderCreatedEvent:
		return e.PartyID, true
	case *order.PurchaseOrderAmendedEvent:
		return e.PartyID, true
	case *order.PurchaseOrderCancelledEvent:
		return e.PartyID, true
	case *payment.PartyPaymentRecordedEvent:
		return e.PartyID, true
	case *payment.PartyPaymentVoidedEvent:
		return e.PartyID, true
	}
	return uuid.Nil, false
}

// Ensure BalanceCacheInvalidator implements shared.EventHandler
var _ shared.EventHandler = (*BalanceCacheInvalidator)(nil)
