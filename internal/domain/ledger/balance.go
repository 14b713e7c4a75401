package ledger

import "github.com/shopspring/decimal"

// CalculateBalance reduces the raw snapshots to the vendor's outstanding
// balance: the sum of final amounts over non-cancelled orders minus the
// sum of amounts over payment-typed payments. Adjustment-typed records
// never move the balance. Records that fail field validation contribute
// zero (the builder reports them as warnings).
//
// Positive means the vendor is owed money; zero or negative means settled
// or overpaid. Accumulation is decimal throughout, rounded to the
// currency's two decimal places only at the end.
func CalculateBalance(orders []OrderSnapshot, payments []PaymentSnapshot) decimal.Decimal {
	balance := decimal.Zero

	for _, o := range orders {
		if o.Status.IsCancelled() {
			continue
		}
		if o.invalidReason() != "" {
			continue
		}
		balance = balance.Add(*o.FinalAmount)
	}

	for _, p := range payments {
		if !p.Type.ReducesBalance() {
			continue
		}
		if p.invalidReason() != "" {
			continue
		}
		balance = balance.Sub(*p.Amount)
	}

	return balance.Round(2)
}

// CalculateItemsTotal sums total_amount over flattened items whose parent
// order is not cancelled, rounded to two decimal places.
func CalculateItemsTotal(items []FlatItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.OrderStatus.IsCancelled() {
			continue
		}
		total = total.Add(it.TotalAmount)
	}
	return total.Round(2)
}
