package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/persistence"
)

func testItems() []order.ItemInput {
	return []order.ItemInput{
		{
			ItemName:     "Kashmiri Almonds",
			SKU:          "ALM-KAS-1KG",
			Quantity:     decimal.NewFromInt(25),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(900),
		},
		{
			ItemName:     "Green Raisins",
			Quantity:     decimal.NewFromInt(10),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(320),
		},
	}
}

// TestPurchaseOrderRepository_Integration exercises order persistence
// including the item reconciliation on update.
func TestPurchaseOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormPurchaseOrderRepository(testDB.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	partyID := uuid.New()
	orderDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Save and FindByID loads items in position order", func(t *testing.T) {
		o, err := order.NewPurchaseOrder(tenantID, "PO-2025-00001", partyID, "Kaju Traders", orderDate, testItems())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 2)
		assert.Equal(t, "Kashmiri Almonds", found.Items[0].ItemName)
		assert.Equal(t, "Green Raisins", found.Items[1].ItemName)
		assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(25700)))
		assert.True(t, found.FinalAmount.Equal(decimal.NewFromInt(25700)))
		assert.Equal(t, order.StatusPending, found.Status)
	})

	t.Run("ReplaceItems reconciles line rows", func(t *testing.T) {
		o, err := order.NewPurchaseOrder(tenantID, "PO-2025-00002", partyID, "Kaju Traders", orderDate, testItems())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))

		err = o.ReplaceItems([]order.ItemInput{
			{
				ItemName:     "Anjeer",
				Quantity:     decimal.NewFromInt(5),
				Unit:         "kg",
				PricePerUnit: decimal.NewFromInt(1200),
			},
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))

		found, err := repo.FindByIDForTenant(ctx, tenantID, o.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Anjeer", found.Items[0].ItemName)
		assert.True(t, found.FinalAmount.Equal(decimal.NewFromInt(6000)))

		// No orphaned item rows are left behind
		var itemCount int64
		require.NoError(t, testDB.DB.Table("purchase_order_items").
			Where("order_id = ?", o.ID).Count(&itemCount).Error)
		assert.Equal(t, int64(1), itemCount)
	})

	t.Run("FindByPONumber is tenant scoped", func(t *testing.T) {
		found, err := repo.FindByPONumber(ctx, tenantID, "PO-2025-00001")
		require.NoError(t, err)
		assert.Equal(t, "PO-2025-00001", found.PONumber)

		_, err = repo.FindByPONumber(ctx, uuid.New(), "PO-2025-00001")
		assert.Error(t, err)
	})

	t.Run("Status transitions persist", func(t *testing.T) {
		o, err := order.NewPurchaseOrder(tenantID, "PO-2025-00003", partyID, "Kaju Traders", orderDate, testItems())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))

		require.NoError(t, o.MarkReceived())
		require.NoError(t, repo.Save(ctx, o))

		found, err := repo.FindByIDForTenant(ctx, tenantID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusReceived, found.Status)
		require.NotNil(t, found.ReceivedAt)
	})

	t.Run("FindByPartyAndDateRange bounds are inclusive", func(t *testing.T) {
		from := orderDate
		to := orderDate.Add(24 * time.Hour)
		orders, err := repo.FindByPartyAndDateRange(ctx, tenantID, partyID, from, to)
		require.NoError(t, err)
		assert.Len(t, orders, 3)

		orders, err = repo.FindByPartyAndDateRange(ctx, tenantID, partyID, to, to.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("GeneratePONumber produces sequential numbers", func(t *testing.T) {
		freshTenant := uuid.New()
		first, err := repo.GeneratePONumber(ctx, freshTenant)
		require.NoError(t, err)
		assert.NotEmpty(t, first)

		o, err := order.NewPurchaseOrder(freshTenant, first, partyID, "Kaju Traders", orderDate, testItems())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))

		second, err := repo.GeneratePONumber(ctx, freshTenant)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("CountPendingByParty excludes received orders", func(t *testing.T) {
		count, err := repo.CountPendingByParty(ctx, tenantID, partyID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("FindByStatus filters", func(t *testing.T) {
		received, err := repo.FindByStatus(ctx, tenantID, order.StatusReceived, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, "PO-2025-00003", received[0].PONumber)
	})
}
