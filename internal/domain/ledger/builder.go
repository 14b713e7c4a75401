package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// SkipWarning reports a single record that failed field validation and was
// excluded from the computation. It is non-fatal: the rest of the statement
// is still produced.
type SkipWarning struct {
	Kind   string // "order" or "payment"
	ID     uuid.UUID
	Reason string
}

func (w SkipWarning) String() string {
	return fmt.Sprintf("skipped %s %s: %s", w.Kind, w.ID, w.Reason)
}

// BuildOrderEntry converts a purchase order into a debit entry.
//
// Cancelled orders return (nil, nil): excluded silently, not a warning.
// Orders failing field validation return (nil, warning). The entry's
// created_at falls back to the order date when the record has none, and
// the line items are copied so the entry holds no reference back to the
// snapshot's slice.
func BuildOrderEntry(o OrderSnapshot) (*Entry, *SkipWarning) {
	if o.Status.IsCancelled() {
		return nil, nil
	}
	if reason := o.invalidReason(); reason != "" {
		return nil, &SkipWarning{Kind: "order", ID: o.ID, Reason: reason}
	}

	detail := make([]ItemSnapshot, len(o.Items))
	copy(detail, o.Items)

	return &Entry{
		Kind:        EntryKindDebit,
		Date:        o.OrderDate,
		CreatedAt:   o.effectiveCreatedAt(),
		Amount:      *o.FinalAmount,
		Description: "Purchase Order: " + o.PONumber,
		Detail:      detail,
	}, nil
}

// BuildPaymentEntry converts a payment record into a credit entry.
//
// Both payment- and adjustment-typed records appear in the ledger;
// adjustments are labeled "Adjustment" for audit visibility even though
// they never count toward the balance (see CalculateBalance). Records
// failing field validation return (nil, warning).
func BuildPaymentEntry(p PaymentSnapshot) (*Entry, *SkipWarning) {
	if reason := p.invalidReason(); reason != "" {
		return nil, &SkipWarning{Kind: "payment", ID: p.ID, Reason: reason}
	}

	description := "Payment"
	if p.Type == PaymentTypeAdjustment {
		description = "Adjustment"
	}

	return &Entry{
		Kind:        EntryKindCredit,
		Date:        p.PaymentDate,
		CreatedAt:   p.effectiveCreatedAt(),
		Amount:      *p.Amount,
		Adjustment:  p.Type == PaymentTypeAdjustment,
		Description: description,
		Reference:   p.ReferenceNumber,
	}, nil
}
