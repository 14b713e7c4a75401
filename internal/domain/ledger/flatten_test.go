package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenItems(t *testing.T) {
	t.Run("annotates each item with its parent order", func(t *testing.T) {
		order := orderSnap(t, "PO1", OrderStatusPending, "1700", "2024-01-01", "",
			item("Almonds", "2", "kg", "450", "900"),
			item("Cashews", "1", "kg", "800", "800"))

		flat := FlattenItems([]OrderSnapshot{order})
		require.Len(t, flat, 2)

		for _, fi := range flat {
			assert.Equal(t, "PO1", fi.PONumber)
			assert.Equal(t, when(t, "2024-01-01"), fi.OrderDate)
			assert.Equal(t, OrderStatusPending, fi.OrderStatus)
			assert.Equal(t, order.ID, fi.OrderID)
		}
	})

	t.Run("preserves item order within and across orders", func(t *testing.T) {
		first := orderSnap(t, "PO1", OrderStatusPending, "30", "2024-05-01", "",
			item("A", "1", "kg", "10", "10"),
			item("B", "1", "kg", "20", "20"))
		second := orderSnap(t, "PO2", OrderStatusReceived, "40", "2024-04-01", "",
			item("C", "1", "kg", "40", "40"))

		// Input order is deliberately not chronological; the flattener must
		// not re-sort.
		flat := FlattenItems([]OrderSnapshot{first, second})
		require.Len(t, flat, 3)
		assert.Equal(t, "A", flat[0].ItemName)
		assert.Equal(t, "B", flat[1].ItemName)
		assert.Equal(t, "C", flat[2].ItemName)
	})

	t.Run("items of cancelled orders are not emitted", func(t *testing.T) {
		kept := orderSnap(t, "PO1", OrderStatusPending, "10", "2024-01-01", "",
			item("A", "1", "kg", "10", "10"))
		dropped := orderSnap(t, "PO2", OrderStatusCancelled, "99", "2024-01-02", "",
			item("B", "1", "kg", "99", "99"))

		flat := FlattenItems([]OrderSnapshot{kept, dropped})
		require.Len(t, flat, 1)
		assert.Equal(t, "A", flat[0].ItemName)
	})

	t.Run("orders without items contribute nothing", func(t *testing.T) {
		order := orderSnap(t, "PO1", OrderStatusPending, "10", "2024-01-01", "")
		flat := FlattenItems([]OrderSnapshot{order})
		assert.Empty(t, flat)
	})

	t.Run("emitted items are copies", func(t *testing.T) {
		order := orderSnap(t, "PO1", OrderStatusPending, "10", "2024-01-01", "",
			item("A", "1", "kg", "10", "10"))

		flat := FlattenItems([]OrderSnapshot{order})
		require.Len(t, flat, 1)

		order.Items[0].ItemName = "changed"
		assert.Equal(t, "A", flat[0].ItemName)
	})
}
