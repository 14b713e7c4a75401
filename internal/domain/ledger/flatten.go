package ledger

// FlattenItems flattens per-order line items into one annotated list for
// item-level reporting. Each order's internal item order is preserved and
// orders are emitted in the given input order; this function never
// re-sorts. Items of cancelled orders are not emitted. Every emitted item
// is a value copy annotated with its parent's po_number, order_date,
// order_status and order_id.
func FlattenItems(orders []OrderSnapshot) []FlatItem {
	flat := make([]FlatItem, 0)
	for _, o := range orders {
		if o.Status.IsCancelled() {
			continue
		}
		for _, it := range o.Items {
			flat = append(flat, FlatItem{
				ItemSnapshot: it,
				PONumber:     o.PONumber,
				OrderDate:    o.OrderDate,
				OrderStatus:  o.Status,
				OrderID:      o.ID,
			})
		}
	}
	return flat
}
