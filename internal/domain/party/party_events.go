package party

import (
	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// Aggregate type constant for Party
const AggregateTypeParty = "Party"

// Event type constants for Party
const (
	EventTypePartyCreated    = "PartyCreated"
	EventTypePartyUpdated    = "PartyUpdated"
	EventTypePartyArchived   = "PartyArchived"
	EventTypePartyUnarchived = "PartyUnarchived"
)

// PartyCreatedEvent is published when a new party is created
type PartyCreatedEvent struct {
	shared.BaseDomainEvent
	PartyID uuid.UUID `json:"party_id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
}

// NewPartyCreatedEvent creates a new PartyCreatedEvent
func NewPartyCreatedEvent(p *Party) *PartyCreatedEvent {
	return &PartyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyCreated, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		Code:            p.Code,
		Name:            p.Name,
	}
}

// PartyUpdatedEvent is published when a party is updated
type PartyUpdatedEvent struct {
	shared.BaseDomainEvent
	PartyID uuid.UUID `json:"party_id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
}

// NewPartyUpdatedEvent creates a new PartyUpdatedEvent
func NewPartyUpdatedEvent(p *Party) *PartyUpdatedEvent {
	return &PartyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyUpdated, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		Code:            p.Code,
		Name:            p.Name,
	}
}

// PartyArchivedEvent is published when a party is archived
type PartyArchivedEvent struct {
	shared.BaseDomainEvent
	PartyID uuid.UUID `json:"party_id"`
	Code    string    `json:"code"`
}

// NewPartyArchivedEvent creates a new PartyArchivedEvent
func NewPartyArchivedEvent(p *Party) *PartyArchivedEvent {
	return &PartyArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyArchived, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		Code:            p.Code,
	}
}

// PartyUnarchivedEvent is published when an archived party is restored
type PartyUnarchivedEvent struct {
	shared.BaseDomainEvent
	PartyID uuid.UUID `json:"party_id"`
	Code    string    `json:"code"`
}

// NewPartyUnarchivedEvent creates a new PartyUnarchivedEvent
func NewPartyUnarchivedEvent(p *Party) *PartyUnarchivedEvent {
	return &PartyUnarchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyUnarchived, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		Code:            p.Code,
	}
}
