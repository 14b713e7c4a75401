package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// Repository defines the interface for purchase order persistence
type Repository interface {
	// FindByID finds a purchase order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForTenant finds a purchase order by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByPONumber finds a purchase order by PO number for a tenant
	FindByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*PurchaseOrder, error)

	// FindAllForTenant finds all purchase orders for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByParty finds purchase orders for a party with filtering
	FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindAllByParty finds every purchase order for a party, items included,
	// ordered by creation time. This is the ledger's order history fetch.
	FindAllByParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]PurchaseOrder, error)

	// FindByPartyAndDateRange finds a party's orders whose order date falls in [from, to]
	FindByPartyAndDateRange(ctx context.Context, tenantID, partyID uuid.UUID, from, to time.Time) ([]PurchaseOrder, error)

	// FindByStatus finds purchase orders by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status Status, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order
	Save(ctx context.Context, o *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *PurchaseOrder) error

	// DeleteForTenant deletes a purchase order and its items for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts purchase orders for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByParty counts purchase orders for a party
	CountByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error)

	// CountPendingByParty counts PENDING orders for a party.
	// Used to block archiving a party that still has open orders.
	CountPendingByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error)

	// ExistsByPONumber checks if a PO number exists for a tenant
	ExistsByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (bool, error)

	// GeneratePONumber generates a unique PO number for a tenant
	GeneratePONumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
