package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func createTestOrder(t *testing.T, items ...ItemInput) *PurchaseOrder {
	t.Helper()
	if len(items) == 0 {
		items = []ItemInput{testItem("Kashmiri Almonds", 10, 850)}
	}
	o, err := NewPurchaseOrder(uuid.New(), "PO-2026-001", uuid.New(), "Govind Traders", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), items)
	require.NoError(t, err)
	return o
}

func testItem(name string, qty, price float64) ItemInput {
	return ItemInput{
		ItemName:     name,
		Quantity:     decimal.NewFromFloat(qty),
		Unit:         "kg",
		PricePerUnit: decimal.NewFromFloat(price),
	}
}

// ============================================
// Status Tests
// ============================================

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  Status
		isValid bool
	}{
		{StatusPending, true},
		{StatusReceived, true},
		{StatusCancelled, true},
		{Status("DRAFT"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		// From PENDING
		{StatusPending, StatusReceived, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		// From RECEIVED (terminal)
		{StatusReceived, StatusPending, false},
		{StatusReceived, StatusCancelled, false},
		// From CANCELLED (terminal)
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusReceived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// PurchaseOrder Tests
// ============================================

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates a pending order with computed totals", func(t *testing.T) {
		o := createTestOrder(t,
			testItem("Kashmiri Almonds", 10, 850),
			testItem("Green Raisins", 25, 320),
		)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, 2, o.ItemCount())
		assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(16500)))
		assert.True(t, o.Discount.IsZero())
		assert.True(t, o.FinalAmount.Equal(decimal.NewFromInt(16500)))

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderCreated, events[0].EventType())
	})

	t.Run("items keep their entry order", func(t *testing.T) {
		o := createTestOrder(t,
			testItem("Almonds", 1, 100),
			testItem("Cashews", 1, 100),
			testItem("Pistachios", 1, 100),
		)

		require.Len(t, o.Items, 3)
		assert.Equal(t, 0, o.Items[0].Position)
		assert.Equal(t, "Almonds", o.Items[0].ItemName)
		assert.Equal(t, 2, o.Items[2].Position)
		assert.Equal(t, "Pistachios", o.Items[2].ItemName)
	})

	t.Run("rejects order without items", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "Vendor", time.Now(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty PO number", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "", uuid.New(), "Vendor", time.Now(), []ItemInput{testItem("Almonds", 1, 100)})
		assert.Error(t, err)
	})

	t.Run("rejects nil party", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.Nil, "Vendor", time.Now(), []ItemInput{testItem("Almonds", 1, 100)})
		assert.Error(t, err)
	})

	t.Run("rejects zero order date", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "Vendor", time.Time{}, []ItemInput{testItem("Almonds", 1, 100)})
		assert.Error(t, err)
	})

	t.Run("rejects item with zero quantity", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "Vendor", time.Now(), []ItemInput{testItem("Almonds", 0, 100)})
		assert.Error(t, err)
	})

	t.Run("rejects item with negative price", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "Vendor", time.Now(), []ItemInput{testItem("Almonds", 1, -5)})
		assert.Error(t, err)
	})
}

func TestPurchaseOrderLineTotals(t *testing.T) {
	t.Run("line total is quantity times price rounded to paise", func(t *testing.T) {
		o := createTestOrder(t, ItemInput{
			ItemName:     "Saffron",
			Quantity:     decimal.RequireFromString("2.5"),
			Unit:         "g",
			PricePerUnit: decimal.RequireFromString("437.333"),
		})

		assert.Equal(t, "1093.33", o.Items[0].TotalAmount.StringFixed(2))
		assert.Equal(t, "1093.33", o.FinalAmount.StringFixed(2))
	})

	t.Run("fractional quantities accumulate without drift", func(t *testing.T) {
		items := make([]ItemInput, 0, 10)
		for i := 0; i < 10; i++ {
			items = append(items, ItemInput{
				ItemName:     "Dates",
				Quantity:     decimal.RequireFromString("0.1"),
				Unit:         "kg",
				PricePerUnit: decimal.NewFromInt(1),
			})
		}
		o := createTestOrder(t, items...)

		assert.Equal(t, "1.00", o.Subtotal.StringFixed(2))
	})
}

func TestPurchaseOrderReplaceItems(t *testing.T) {
	t.Run("replaces items and recomputes totals", func(t *testing.T) {
		o := createTestOrder(t, testItem("Almonds", 10, 850))
		o.ClearDomainEvents()
		v := o.GetVersion()

		require.NoError(t, o.ReplaceItems([]ItemInput{
			testItem("Cashews", 5, 900),
			testItem("Walnuts", 2, 1200),
		}))

		assert.Equal(t, 2, o.ItemCount())
		assert.True(t, o.FinalAmount.Equal(decimal.NewFromInt(6900)))
		assert.Equal(t, v+1, o.GetVersion())

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderAmended, events[0].EventType())
	})

	t.Run("no amended event when the total is unchanged", func(t *testing.T) {
		o := createTestOrder(t, testItem("Almonds", 10, 850))
		o.ClearDomainEvents()

		require.NoError(t, o.ReplaceItems([]ItemInput{testItem("Cashews", 10, 850)}))

		assert.Empty(t, o.GetDomainEvents())
	})

	t.Run("rejected after the order is received", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkReceived())

		err := o.ReplaceItems([]ItemInput{testItem("Cashews", 1, 100)})
		assert.Error(t, err)
	})

	t.Run("rejects empty replacement", func(t *testing.T) {
		o := createTestOrder(t)
		assert.Error(t, o.ReplaceItems(nil))
	})
}

func TestPurchaseOrderApplyDiscount(t *testing.T) {
	t.Run("discount reduces final amount", func(t *testing.T) {
		o := createTestOrder(t, testItem("Almonds", 10, 100))
		o.ClearDomainEvents()

		require.NoError(t, o.ApplyDiscount(valueobject.NewMoneyINRFromFloat(150)))

		assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.True(t, o.Discount.Equal(decimal.NewFromInt(150)))
		assert.True(t, o.FinalAmount.Equal(decimal.NewFromInt(850)))

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderAmended, events[0].EventType())
	})

	t.Run("rejects discount above subtotal", func(t *testing.T) {
		o := createTestOrder(t, testItem("Almonds", 1, 100))
		assert.Error(t, o.ApplyDiscount(valueobject.NewMoneyINRFromFloat(101)))
	})

	t.Run("rejects negative discount", func(t *testing.T) {
		o := createTestOrder(t)
		assert.Error(t, o.ApplyDiscount(valueobject.NewMoneyINRFromFloat(-1)))
	})

	t.Run("rejected on a cancelled order", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Cancel("duplicate entry"))
		assert.Error(t, o.ApplyDiscount(valueobject.NewMoneyINRFromFloat(10)))
	})
}

func TestPurchaseOrderMarkReceived(t *testing.T) {
	t.Run("pending order becomes received", func(t *testing.T) {
		o := createTestOrder(t)
		o.ClearDomainEvents()

		require.NoError(t, o.MarkReceived())

		assert.Equal(t, StatusReceived, o.Status)
		require.NotNil(t, o.ReceivedAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderReceived, events[0].EventType())
	})

	t.Run("receiving twice fails", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkReceived())
		assert.Error(t, o.MarkReceived())
	})

	t.Run("cancelled order cannot be received", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Cancel("vendor out of stock"))
		assert.Error(t, o.MarkReceived())
	})
}

func TestPurchaseOrderCancel(t *testing.T) {
	t.Run("pending order can be cancelled with a reason", func(t *testing.T) {
		o := createTestOrder(t)
		o.ClearDomainEvents()

		require.NoError(t, o.Cancel("vendor out of stock"))

		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, "vendor out of stock", o.CancelReason)
		require.NotNil(t, o.CancelledAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderCancelled, events[0].EventType())
	})

	t.Run("reason is required", func(t *testing.T) {
		o := createTestOrder(t)
		assert.Error(t, o.Cancel(""))
	})

	t.Run("received order cannot be cancelled", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkReceived())
		assert.Error(t, o.Cancel("too late"))
	})
}

func TestPurchaseOrderReschedule(t *testing.T) {
	o := createTestOrder(t)
	newDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, o.Reschedule(newDate))
	assert.True(t, o.OrderDate.Equal(newDate))

	require.NoError(t, o.MarkReceived())
	assert.Error(t, o.Reschedule(newDate.AddDate(0, 0, 7)))
}
