package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePartyPayment = "PartyPayment"

// Event type constants
const (
	EventTypePartyPaymentRecorded = "PartyPaymentRecorded"
	EventTypePartyPaymentVoided   = "PartyPaymentVoided"
)

// PartyPaymentRecordedSchemaVersion is the current schema version of
// PartyPaymentRecordedEvent. Version 2 added the method field; stored
// version 1 payloads are upgraded on read.
const PartyPaymentRecordedSchemaVersion = 2

// PartyPaymentRecordedEventV1 is the version 1 payload shape, before
// payments carried a settlement method. Kept for the upgrade chain.
type PartyPaymentRecordedEventV1 struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyName     string          `json:"party_name"`
	PaymentType   Type            `json:"payment_type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// PartyPaymentRecordedEvent is raised when a payment or adjustment is recorded.
// Consumers use it to invalidate the party's cached balance.
type PartyPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyName     string          `json:"party_name"`
	PaymentType   Type            `json:"payment_type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        Method          `json:"method"`
}

// NewPartyPaymentRecordedEvent creates a new PartyPaymentRecordedEvent
func NewPartyPaymentRecordedEvent(p *PartyPayment) *PartyPaymentRecordedEvent {
	return &PartyPaymentRecordedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypePartyPaymentRecorded, AggregateTypePartyPayment, p.ID, p.TenantID, PartyPaymentRecordedSchemaVersion),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PartyID:         p.PartyID,
		PartyName:       p.PartyName,
		PaymentType:     p.Type,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          p.Method,
	}
}

// EventType returns the event type name
func (e *PartyPaymentRecordedEvent) EventType() string {
	return EventTypePartyPaymentRecorded
}

// PartyPaymentVoidedEvent is raised when a payment is voided
type PartyPaymentVoidedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	PartyID       uuid.UUID       `json:"party_id"`
	PaymentType   Type            `json:"payment_type"`
	Amount        decimal.Decimal `json:"amount"`
	VoidReason    string          `json:"void_reason"`
}

// NewPartyPaymentVoidedEvent creates a new PartyPaymentVoidedEvent
func NewPartyPaymentVoidedEvent(p *PartyPayment) *PartyPaymentVoidedEvent {
	return &PartyPaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyPaymentVoided, AggregateTypePartyPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PartyID:         p.PartyID,
		PaymentType:     p.Type,
		Amount:          p.Amount,
		VoidReason:      p.VoidReason,
	}
}

// EventType returns the event type name
func (e *PartyPaymentVoidedEvent) EventType() string {
	return EventTypePartyPaymentVoided
}
