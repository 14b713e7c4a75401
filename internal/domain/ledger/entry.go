package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind is the side of a ledger entry. Amounts are always non-negative
// magnitudes; the sign semantics live entirely in the kind.
type EntryKind string

const (
	// EntryKindDebit is debt incurred: a purchase order.
	EntryKindDebit EntryKind = "debit"
	// EntryKindCredit is debt reduced or annotated: a payment or adjustment.
	EntryKindCredit EntryKind = "credit"
)

// Entry is one row of the reconciled vendor ledger. Entries are derived
// fresh on every computation and never stored.
type Entry struct {
	Kind      EntryKind
	Date      time.Time
	CreatedAt time.Time
	Amount    decimal.Decimal
	// Adjustment marks a credit that is visible in the ledger but never
	// moves the balance (see CalculateBalance).
	Adjustment  bool
	Description string
	Reference   string
	Detail      []ItemSnapshot
}

// FlatItem is a purchase-order line item annotated with fields copied from
// its parent order, for item-level reporting.
type FlatItem struct {
	ItemSnapshot
	PONumber    string
	OrderDate   time.Time
	OrderStatus OrderStatus
	OrderID     uuid.UUID
}

// Statement is the full output of one ledger computation.
type Statement struct {
	Entries    []Entry
	Balance    decimal.Decimal
	ItemsTotal decimal.Decimal
	FlatItems  []FlatItem
	Warnings   []string
}
