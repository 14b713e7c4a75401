package party

import (
	"context"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// Repository defines the interface for party persistence
type Repository interface {
	// FindByID finds a party by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)

	// FindByIDForTenant finds a party by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Party, error)

	// FindByCode finds a party by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Party, error)

	// FindAllForTenant finds all parties for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Party, error)

	// FindByStatus finds parties by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status PartyStatus, filter shared.Filter) ([]Party, error)

	// Save creates or updates a party
	Save(ctx context.Context, p *Party) error

	// DeleteForTenant deletes a party within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts parties for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a party with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
