package ledger

// Compute produces a full statement from one pair of snapshots: the merged
// chronological ledger, the outstanding balance, the flattened item list
// with its total, and a warning per skipped record.
//
// The computation is synchronous and pure. Invalid records are excluded
// from every output and reported once in Warnings, in input order (orders
// first, then payments); cancelled orders are excluded silently. Calling
// Compute twice on identical snapshots yields identical statements.
func Compute(orders []OrderSnapshot, payments []PaymentSnapshot) Statement {
	warnings := make([]string, 0)

	orderEntries := make([]Entry, 0, len(orders))
	validOrders := make([]OrderSnapshot, 0, len(orders))
	for _, o := range orders {
		entry, warn := BuildOrderEntry(o)
		if warn != nil {
			warnings = append(warnings, warn.String())
			continue
		}
		validOrders = append(validOrders, o)
		if entry != nil {
			orderEntries = append(orderEntries, *entry)
		}
	}

	paymentEntries := make([]Entry, 0, len(payments))
	for _, p := range payments {
		entry, warn := BuildPaymentEntry(p)
		if warn != nil {
			warnings = append(warnings, warn.String())
			continue
		}
		if entry != nil {
			paymentEntries = append(paymentEntries, *entry)
		}
	}

	flatItems := FlattenItems(validOrders)

	return Statement{
		Entries:    Merge(orderEntries, paymentEntries),
		Balance:    CalculateBalance(orders, payments),
		ItemsTotal: CalculateItemsTotal(flatItems),
		FlatItems:  flatItems,
		Warnings:   warnings,
	}
}
