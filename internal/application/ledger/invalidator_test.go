package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createInvalidatorOrder(t *testing.T, tenantID, partyID uuid.UUID) *order.PurchaseOrder {
	t.Helper()
	o, err := order.NewPurchaseOrder(tenantID, "PO-2026-001", partyID, "Govind Dry Fruits",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		[]order.ItemInput{{
			ItemName:     "Kashmiri Almonds",
			Quantity:     decimal.NewFromInt(10),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(850),
		}},
	)
	require.NoError(t, err)
	return o
}

func createInvalidatorPayment(t *testing.T, tenantID, partyID uuid.UUID) *payment.PartyPayment {
	t.Helper()
	p, err := payment.NewPartyPayment(tenantID, "PAY-2026-001", partyID, "Govind Dry Fruits",
		payment.TypePayment, valueobject.NewMoneyINR(decimal.NewFromInt(5000)),
		payment.MethodBankTransfer, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}

func TestBalanceCacheInvalidator_Handle(t *testing.T) {
	tenantID := uuid.New()
	partyID := uuid.New()

	o := createInvalidatorOrder(t, tenantID, partyID)
	p := createInvalidatorPayment(t, tenantID, partyID)

	balanceMovingEvents := []shared.DomainEvent{
		order.NewPurchaseOrderCreatedEvent(o),
		order.NewPurchaseOrderAmendedEvent(o, decimal.NewFromInt(9000)),
		order.NewPurchaseOrderCancelledEvent(o),
		payment.NewPartyPaymentRecordedEvent(p),
		payment.NewPartyPaymentVoidedEvent(p),
	}

	for _, evt := range balanceMovingEvents {
		t.Run(evt.EventType(), func(t *testing.T) {
			cache := new(MockBalanceCache)
			handler := NewBalanceCacheInvalidator(cache, zap.NewNop())

			cache.On("Invalidate", mock.Anything, tenantID, partyID).Return(nil)

			err := handler.Handle(context.Background(), evt)

			assert.NoError(t, err)
			cache.AssertExpectations(t)
		})
	}

	t.Run("propagates a cache failure", func(t *testing.T) {
		cache := new(MockBalanceCache)
		handler := NewBalanceCacheInvalidator(cache, zap.NewNop())

		cache.On("Invalidate", mock.Anything, tenantID, partyID).
			Return(errors.New("redis down"))

		err := handler.Handle(context.Background(), payment.NewPartyPaymentRecordedEvent(p))

		assert.Error(t, err)
	})

	t.Run("rejects events it is not subscribed to", func(t *testing.T) {
		cache := new(MockBalanceCache)
		handler := NewBalanceCacheInvalidator(cache, zap.NewNop())

		pty, err := party.NewParty(tenantID, "GOVIND-01", "Govind Dry Fruits")
		require.NoError(t, err)

		err = handler.Handle(context.Background(), party.NewPartyCreatedEvent(pty))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
		cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBalanceCacheInvalidator_EventTypes(t *testing.T) {
	handler := NewBalanceCacheInvalidator(new(MockBalanceCache), zap.NewNop())

	assert.ElementsMatch(t, []string{
		order.EventTypePurchaseOrderCreated,
		order.EventTypePurchaseOrderAmended,
		order.EventTypePurchaseOrderCancelled,
		payment.EventTypePartyPaymentRecorded,
		payment.EventTypePartyPaymentVoided,
	}, handler.EventTypes())

	// Receiving goods does not move the balance, so it is not subscribed
	assert.NotContains(t, handler.EventTypes(), order.EventTypePurchaseOrderReceived)
}
