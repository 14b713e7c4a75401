package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderEntry(t *testing.T) {
	t.Run("pending order becomes a debit entry", func(t *testing.T) {
		order := orderSnap(t, "PO1", OrderStatusPending, "1000", "2024-01-01", "2024-01-01T10:00")

		entry, warn := BuildOrderEntry(order)
		require.Nil(t, warn)
		require.NotNil(t, entry)

		assert.Equal(t, EntryKindDebit, entry.Kind)
		assert.True(t, entry.Amount.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, "Purchase Order: PO1", entry.Description)
		assert.Equal(t, when(t, "2024-01-01"), entry.Date)
		assert.Equal(t, when(t, "2024-01-01T10:00"), entry.CreatedAt)
	})

	t.Run("created_at falls back to order date", func(t *testing.T) {
		order := orderSnap(t, "PO2", OrderStatusReceived, "250", "2024-02-10", "")

		entry, warn := BuildOrderEntry(order)
		require.Nil(t, warn)
		require.NotNil(t, entry)
		assert.Equal(t, when(t, "2024-02-10"), entry.CreatedAt)
	})

	t.Run("cancelled order excluded silently", func(t *testing.T) {
		order := orderSnap(t, "PO3", OrderStatusCancelled, "999", "2024-01-01", "2024-01-01T10:00")

		entry, warn := BuildOrderEntry(order)
		assert.Nil(t, entry)
		assert.Nil(t, warn)
	})

	t.Run("cancelled status matching is case-insensitive", func(t *testing.T) {
		order := orderSnap(t, "PO3", OrderStatus("CANCELLED"), "999", "2024-01-01", "")

		entry, warn := BuildOrderEntry(order)
		assert.Nil(t, entry)
		assert.Nil(t, warn)
	})

	t.Run("missing final amount is skipped with warning", func(t *testing.T) {
		order := orderSnap(t, "PO4", OrderStatusPending, "", "2024-01-01", "")

		entry, warn := BuildOrderEntry(order)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Equal(t, "order", warn.Kind)
		assert.Equal(t, order.ID, warn.ID)
		assert.Contains(t, warn.Reason, "final_amount")
		assert.Contains(t, warn.String(), order.ID.String())
	})

	t.Run("negative final amount is skipped with warning", func(t *testing.T) {
		order := orderSnap(t, "PO5", OrderStatusPending, "-10", "2024-01-01", "")

		entry, warn := BuildOrderEntry(order)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Contains(t, warn.Reason, "negative")
	})

	t.Run("missing order date is skipped with warning", func(t *testing.T) {
		order := orderSnap(t, "PO6", OrderStatusPending, "10", "", "")

		entry, warn := BuildOrderEntry(order)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Contains(t, warn.Reason, "order_date")
	})

	t.Run("detail is a copy of the order items", func(t *testing.T) {
		order := orderSnap(t, "PO7", OrderStatusPending, "100", "2024-01-01", "",
			item("Almonds", "2", "kg", "50", "100"))

		entry, warn := BuildOrderEntry(order)
		require.Nil(t, warn)
		require.Len(t, entry.Detail, 1)

		// Mutating the source snapshot must not reach the entry.
		order.Items[0].ItemName = "changed"
		assert.Equal(t, "Almonds", entry.Detail[0].ItemName)
	})
}

func TestBuildPaymentEntry(t *testing.T) {
	t.Run("payment becomes a credit entry", func(t *testing.T) {
		payment := paymentSnap(t, PaymentTypePayment, "400", "2024-01-05", "2024-01-05T09:00", "TXN-881")

		entry, warn := BuildPaymentEntry(payment)
		require.Nil(t, warn)
		require.NotNil(t, entry)

		assert.Equal(t, EntryKindCredit, entry.Kind)
		assert.True(t, entry.Amount.Equal(decimal.NewFromInt(400)))
		assert.False(t, entry.Adjustment)
		assert.Equal(t, "Payment", entry.Description)
		assert.Equal(t, "TXN-881", entry.Reference)
		assert.Equal(t, when(t, "2024-01-05"), entry.Date)
		assert.Equal(t, when(t, "2024-01-05T09:00"), entry.CreatedAt)
	})

	t.Run("adjustment appears in the ledger labeled Adjustment", func(t *testing.T) {
		payment := paymentSnap(t, PaymentTypeAdjustment, "50", "2024-01-06", "", "")

		entry, warn := BuildPaymentEntry(payment)
		require.Nil(t, warn)
		require.NotNil(t, entry)
		assert.Equal(t, EntryKindCredit, entry.Kind)
		assert.True(t, entry.Adjustment)
		assert.Equal(t, "Adjustment", entry.Description)
	})

	t.Run("created_at falls back to payment date", func(t *testing.T) {
		payment := paymentSnap(t, PaymentTypePayment, "75", "2024-03-01", "", "")

		entry, warn := BuildPaymentEntry(payment)
		require.Nil(t, warn)
		assert.Equal(t, when(t, "2024-03-01"), entry.CreatedAt)
	})

	t.Run("missing amount is skipped with warning carrying the payment id", func(t *testing.T) {
		payment := paymentSnap(t, PaymentTypePayment, "", "2024-01-05", "", "")

		entry, warn := BuildPaymentEntry(payment)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Equal(t, "payment", warn.Kind)
		assert.Equal(t, payment.ID, warn.ID)
		assert.Contains(t, warn.String(), payment.ID.String())
	})

	t.Run("negative amount is skipped with warning", func(t *testing.T) {
		payment := paymentSnap(t, PaymentTypePayment, "-5", "2024-01-05", "", "")

		entry, warn := BuildPaymentEntry(payment)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Contains(t, warn.Reason, "negative")
	})

	t.Run("missing payment date is skipped with warning", func(t *testing.T) {
		payment := paymentSnap(t, PaymentTypePayment, "5", "", "", "")

		entry, warn := BuildPaymentEntry(payment)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Contains(t, warn.Reason, "payment_date")
	})

	t.Run("unknown payment type is skipped with warning", func(t *testing.T) {
		payment := paymentSnap(t, PaymentType("refund"), "5", "2024-01-05", "", "")

		entry, warn := BuildPaymentEntry(payment)
		assert.Nil(t, entry)
		require.NotNil(t, warn)
		assert.Contains(t, warn.Reason, "refund")
	})
}

// Test data helpers shared by the ledger package tests.

// when parses "2006-01-02" dates and "2006-01-02T15:04" timestamps.
func when(t *testing.T, value string) time.Time {
	t.Helper()
	if ts, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return ts
	}
	ts, err := time.Parse("2006-01-02", value)
	require.NoError(t, err, "bad test time %q", value)
	return ts
}

// orderSnap builds an order snapshot. Empty amount or date strings produce
// the corresponding missing field.
func orderSnap(t *testing.T, poNumber string, status OrderStatus, amount, orderDate, createdAt string, items ...ItemSnapshot) OrderSnapshot {
	t.Helper()
	o := OrderSnapshot{
		ID:       uuid.New(),
		PONumber: poNumber,
		Status:   status,
		Items:    items,
	}
	if amount != "" {
		d := decimal.RequireFromString(amount)
		o.FinalAmount = &d
	}
	if orderDate != "" {
		o.OrderDate = when(t, orderDate)
	}
	if createdAt != "" {
		ts := when(t, createdAt)
		o.CreatedAt = &ts
	}
	return o
}

func paymentSnap(t *testing.T, typ PaymentType, amount, paymentDate, createdAt, reference string) PaymentSnapshot {
	t.Helper()
	p := PaymentSnapshot{
		ID:              uuid.New(),
		Type:            typ,
		ReferenceNumber: reference,
	}
	if amount != "" {
		d := decimal.RequireFromString(amount)
		p.Amount = &d
	}
	if paymentDate != "" {
		p.PaymentDate = when(t, paymentDate)
	}
	if createdAt != "" {
		ts := when(t, createdAt)
		p.CreatedAt = &ts
	}
	return p
}

func item(name, qty, unit, price, total string) ItemSnapshot {
	return ItemSnapshot{
		ItemName:     name,
		Quantity:     decimal.RequireFromString(qty),
		Unit:         unit,
		PricePerUnit: decimal.RequireFromString(price),
		TotalAmount:  decimal.RequireFromString(total),
	}
}
