package ledger

import "sort"

// Merge combines order entries and payment entries into one oldest-first
// sequence, sorted ascending by (created_at, date).
//
// The inputs are concatenated order entries first, then payment entries,
// and the sort is stable, so two entries with identical sort keys keep
// that relative order: a debit created at the same instant as a credit
// lands before it. The result is deterministic for a given pair of
// snapshots regardless of which fetch completed first. Neither input
// slice is mutated.
func Merge(orderEntries, paymentEntries []Entry) []Entry {
	merged := make([]Entry, 0, len(orderEntries)+len(paymentEntries))
	merged = append(merged, orderEntries...)
	merged = append(merged, paymentEntries...)

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.Before(merged[j].CreatedAt)
		}
		return merged[i].Date.Before(merged[j].Date)
	})

	return merged
}
