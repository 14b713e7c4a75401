package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCache caches the derived outstanding balance per party.
// Implementations should treat backend failures as misses so a degraded
// cache slows reads down instead of failing them.
type BalanceCache interface {
	// Get returns the cached balance and whether one was present
	Get(ctx context.Context, tenantID, partyID uuid.UUID) (decimal.Decimal, bool, error)
	// Set stores the computed balance for a party
	Set(ctx context.Context, tenantID, partyID uuid.UUID, balance decimal.Decimal) error
	// Invalidate drops the cached balance for a party
	Invalidate(ctx context.Context, tenantID, partyID uuid.UUID) error
}
