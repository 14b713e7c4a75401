package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
)

func TestRegisterAllEvents_RegistersAllDomains(t *testing.T) {
	serializer := NewVersionedSerializer(zap.NewNop())
	require.NoError(t, RegisterAllEvents(serializer))

	for _, eventType := range []string{
		party.EventTypePartyCreated,
		party.EventTypePartyArchived,
		order.EventTypePurchaseOrderCreated,
		order.EventTypePurchaseOrderReceived,
		payment.EventTypePartyPaymentRecorded,
		payment.EventTypePartyPaymentVoided,
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}

	assert.False(t, serializer.IsRegistered("order.retired"))
}

func TestRegisterAllEvents_PaymentRecordedChain(t *testing.T) {
	serializer := NewVersionedSerializer(zap.NewNop())
	require.NoError(t, RegisterAllEvents(serializer))

	version, ok := serializer.GetCurrentVersion(payment.EventTypePartyPaymentRecorded)
	require.True(t, ok)
	assert.Equal(t, payment.PartyPaymentRecordedSchemaVersion, version)

	// A stored version 1 payload gains the method field on read
	legacy := &payment.PartyPaymentRecordedEventV1{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypePartyPaymentRecorded, payment.AggregateTypePartyPayment, uuid.New(), uuid.New()),
		PaymentID:       uuid.New(),
		PaymentNumber:   "PAY-2023-0042",
		PartyID:         uuid.New(),
		PartyName:       "Sharma Traders",
		PaymentType:     payment.TypePayment,
		Amount:          decimal.NewFromInt(7300),
		PaymentDate:     time.Now(),
	}
	data, err := serializer.Serialize(legacy)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(payment.EventTypePartyPaymentRecorded, data)
	require.NoError(t, err)

	evt, ok := decoded.(*payment.PartyPaymentRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, payment.MethodCash, evt.Method)
	assert.Equal(t, legacy.PaymentNumber, evt.PaymentNumber)
	assert.Equal(t, legacy.PartyName, evt.PartyName)
	assert.True(t, legacy.Amount.Equal(evt.Amount))
}

func TestRegisterAllEvents_RoundTripPreservesEnvelope(t *testing.T) {
	serializer := NewVersionedSerializer(zap.NewNop())
	require.NoError(t, RegisterAllEvents(serializer))

	original := &party.PartyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(party.EventTypePartyCreated, party.AggregateTypeParty, uuid.New(), uuid.New()),
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(party.EventTypePartyCreated, data)
	require.NoError(t, err)

	assert.Equal(t, original.EventID(), decoded.EventID())
	assert.Equal(t, original.EventType(), decoded.EventType())
	assert.Equal(t, original.AggregateID(), decoded.AggregateID())
	assert.Equal(t, original.AggregateType(), decoded.AggregateType())
	assert.Equal(t, original.TenantID(), decoded.TenantID())
}
