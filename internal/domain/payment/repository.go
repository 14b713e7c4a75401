package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// Repository defines the interface for party payment persistence
type Repository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PartyPayment, error)

	// FindByIDForTenant finds a payment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PartyPayment, error)

	// FindByPaymentNumber finds a payment by payment number for a tenant
	FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*PartyPayment, error)

	// FindAllForTenant finds all payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PartyPayment, error)

	// FindByParty finds payments for a party with filtering
	FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]PartyPayment, error)

	// FindAllActiveByParty finds every RECORDED payment for a party, ordered
	// by creation time. Voided records are excluded. This is the ledger's
	// payment history fetch.
	FindAllActiveByParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]PartyPayment, error)

	// FindByPartyAndDateRange finds a party's payments whose payment date falls in [from, to]
	FindByPartyAndDateRange(ctx context.Context, tenantID, partyID uuid.UUID, from, to time.Time) ([]PartyPayment, error)

	// FindByType finds payments of a given type for a tenant
	FindByType(ctx context.Context, tenantID uuid.UUID, paymentType Type, filter shared.Filter) ([]PartyPayment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, p *PartyPayment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, p *PartyPayment) error

	// DeleteForTenant deletes a payment for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts payments for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByParty counts payments for a party
	CountByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error)

	// ExistsByPaymentNumber checks if a payment number exists for a tenant
	ExistsByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (bool, error)

	// GeneratePaymentNumber generates a unique payment number for a tenant
	GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
