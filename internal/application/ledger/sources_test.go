package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/ledger"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSourceOrder(t *testing.T, items ...order.ItemInput) *order.PurchaseOrder {
	t.Helper()
	if len(items) == 0 {
		items = []order.ItemInput{{
			ItemName:     "Kashmiri Almonds",
			SKU:          "ALM-KAS-500",
			Quantity:     decimal.NewFromInt(10),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(850),
		}}
	}
	o, err := order.NewPurchaseOrder(uuid.New(), "PO-2026-042", uuid.New(), "Govind Dry Fruits",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), items)
	require.NoError(t, err)
	return o
}

func createSourcePayment(t *testing.T, paymentType payment.Type) *payment.PartyPayment {
	t.Helper()
	p, err := payment.NewPartyPayment(uuid.New(), "PAY-2026-042", uuid.New(), "Govind Dry Fruits",
		paymentType, valueobject.NewMoneyINR(decimal.NewFromInt(5000)),
		payment.MethodUPI, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}

func TestToOrderSnapshot(t *testing.T) {
	t.Run("copies every ledger-relevant field", func(t *testing.T) {
		o := createSourceOrder(t)

		snap := ToOrderSnapshot(o)

		assert.Equal(t, o.ID, snap.ID)
		assert.Equal(t, "PO-2026-042", snap.PONumber)
		assert.Equal(t, o.OrderDate, snap.OrderDate)
		assert.Equal(t, ledger.OrderStatus("pending"), snap.Status)
		require.NotNil(t, snap.CreatedAt)
		assert.Equal(t, o.CreatedAt, *snap.CreatedAt)
		require.NotNil(t, snap.FinalAmount)
		assert.True(t, snap.FinalAmount.Equal(decimal.NewFromInt(8500)))
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "Kashmiri Almonds", snap.Items[0].ItemName)
		assert.Equal(t, "ALM-KAS-500", snap.Items[0].SKU)
		assert.Equal(t, "kg", snap.Items[0].Unit)
		assert.True(t, snap.Items[0].TotalAmount.Equal(decimal.NewFromInt(8500)))
	})

	t.Run("snapshot holds no reference back to the aggregate", func(t *testing.T) {
		o := createSourceOrder(t)

		snap := ToOrderSnapshot(o)
		o.FinalAmount = decimal.NewFromInt(999999)
		o.Items[0].ItemName = "changed"

		assert.True(t, snap.FinalAmount.Equal(decimal.NewFromInt(8500)))
		assert.Equal(t, "Kashmiri Almonds", snap.Items[0].ItemName)
	})

	t.Run("statuses normalize to the forms the core excludes on", func(t *testing.T) {
		o := createSourceOrder(t)
		require.NoError(t, o.Cancel("duplicate entry"))

		snap := ToOrderSnapshot(o)

		assert.Equal(t, ledger.OrderStatus("cancelled"), snap.Status)
		assert.True(t, snap.Status.IsCancelled())
	})

	t.Run("preserves item order across a multi-line order", func(t *testing.T) {
		o := createSourceOrder(t,
			order.ItemInput{ItemName: "Mamra Almonds", Quantity: decimal.NewFromInt(5), Unit: "kg", PricePerUnit: decimal.NewFromInt(2200)},
			order.ItemInput{ItemName: "Anjeer", Quantity: decimal.NewFromInt(3), Unit: "kg", PricePerUnit: decimal.NewFromInt(1400)},
			order.ItemInput{ItemName: "Pista Salted", Quantity: decimal.NewFromInt(2), Unit: "kg", PricePerUnit: decimal.NewFromInt(1800)},
		)

		snapshots := ToOrderSnapshots([]order.PurchaseOrder{*o})

		require.Len(t, snapshots, 1)
		require.Len(t, snapshots[0].Items, 3)
		assert.Equal(t, "Mamra Almonds", snapshots[0].Items[0].ItemName)
		assert.Equal(t, "Anjeer", snapshots[0].Items[1].ItemName)
		assert.Equal(t, "Pista Salted", snapshots[0].Items[2].ItemName)
	})
}

func TestToPaymentSnapshot(t *testing.T) {
	t.Run("payment type converts to a valid core type", func(t *testing.T) {
		p := createSourcePayment(t, payment.TypePayment)
		require.NoError(t, p.SetReferenceNumber("UTR-88219034"))

		snap := ToPaymentSnapshot(p)

		assert.Equal(t, p.ID, snap.ID)
		assert.Equal(t, ledger.PaymentTypePayment, snap.Type)
		assert.True(t, snap.Type.IsValid())
		assert.True(t, snap.Type.ReducesBalance())
		require.NotNil(t, snap.Amount)
		assert.True(t, snap.Amount.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, p.PaymentDate, snap.PaymentDate)
		assert.Equal(t, "UTR-88219034", snap.ReferenceNumber)
	})

	t.Run("adjustment type converts to a valid core type", func(t *testing.T) {
		p := createSourcePayment(t, payment.TypeAdjustment)

		snap := ToPaymentSnapshot(p)

		assert.Equal(t, ledger.PaymentTypeAdjustment, snap.Type)
		assert.True(t, snap.Type.IsValid())
		assert.False(t, snap.Type.ReducesBalance())
	})
}

// The converted snapshots must be directly computable: a conversion that
// leaked aggregate-cased statuses or types would surface here as spurious
// warnings or a wrong balance.
func TestConvertedSnapshotsReconcile(t *testing.T) {
	o := createSourceOrder(t)
	p := createSourcePayment(t, payment.TypePayment)
	adj := createSourcePayment(t, payment.TypeAdjustment)

	stmt := ledger.Compute(
		ToOrderSnapshots([]order.PurchaseOrder{*o}),
		ToPaymentSnapshots([]payment.PartyPayment{*p, *adj}),
	)

	assert.Empty(t, stmt.Warnings)
	assert.Len(t, stmt.Entries, 3)
	// 8500 ordered - 5000 paid; the adjustment is visible but does not move the balance
	assert.True(t, stmt.Balance.Equal(decimal.NewFromInt(3500)))
}
