// Package ledger reconciles a vendor's purchase-order history and payment
// history into a single chronological account statement.
//
// The two histories arrive as independent, asynchronously fetched snapshots
// with no shared sequence number. Everything in this package is a pure
// function over those snapshots: no component holds state, inputs are never
// mutated, and derived output carries no reference back to source records.
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of a purchase order as seen by the
// ledger. The set is open-ended; only "cancelled" changes ledger behavior.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsCancelled reports whether the status excludes the order from every
// ledger and balance computation.
func (s OrderStatus) IsCancelled() bool {
	return strings.EqualFold(string(s), string(OrderStatusCancelled))
}

// PaymentType distinguishes real payments from adjustment records.
type PaymentType string

const (
	PaymentTypePayment    PaymentType = "payment"
	PaymentTypeAdjustment PaymentType = "adjustment"
)

// IsValid returns true if the payment type is a known value
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypePayment, PaymentTypeAdjustment:
		return true
	}
	return false
}

// ReducesBalance reports whether amounts of this type count against the
// outstanding balance. Adjustments are visible in the ledger but never
// move the balance.
func (t PaymentType) ReducesBalance() bool {
	return t == PaymentTypePayment
}

// OrderSnapshot is an immutable view of a purchase order at fetch time.
// Optional fields are pointers; validation happens here at the boundary,
// not scattered through the arithmetic.
type OrderSnapshot struct {
	ID          uuid.UUID
	PONumber    string
	OrderDate   time.Time
	CreatedAt   *time.Time
	Status      OrderStatus
	FinalAmount *decimal.Decimal
	Items       []ItemSnapshot
}

// invalidReason returns a non-empty reason when the record must be skipped.
// Cancellation is not invalidity; cancelled orders are simply excluded.
func (o OrderSnapshot) invalidReason() string {
	if o.FinalAmount == nil {
		return "missing final_amount"
	}
	if o.FinalAmount.IsNegative() {
		return "negative final_amount"
	}
	if o.OrderDate.IsZero() {
		return "missing order_date"
	}
	return ""
}

// effectiveCreatedAt falls back to the order date when the record carries
// no creation timestamp.
func (o OrderSnapshot) effectiveCreatedAt() time.Time {
	if o.CreatedAt != nil && !o.CreatedAt.IsZero() {
		return *o.CreatedAt
	}
	return o.OrderDate
}

// ItemSnapshot is one line item of a purchase order.
type ItemSnapshot struct {
	ItemName     string
	Quantity     decimal.Decimal
	Unit         string
	PricePerUnit decimal.Decimal
	TotalAmount  decimal.Decimal
	SKU          string
	Description  string
}

// PaymentSnapshot is an immutable view of a vendor payment at fetch time.
type PaymentSnapshot struct {
	ID              uuid.UUID
	Type            PaymentType
	Amount          *decimal.Decimal
	PaymentDate     time.Time
	CreatedAt       *time.Time
	ReferenceNumber string
	Notes           string
}

// invalidReason returns a non-empty reason when the record must be skipped.
func (p PaymentSnapshot) invalidReason() string {
	if !p.Type.IsValid() {
		return "unknown payment_type \"" + string(p.Type) + "\""
	}
	if p.Amount == nil {
		return "missing amount"
	}
	if p.Amount.IsNegative() {
		return "negative amount"
	}
	if p.PaymentDate.IsZero() {
		return "missing payment_date"
	}
	return ""
}

func (p PaymentSnapshot) effectiveCreatedAt() time.Time {
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		return *p.CreatedAt
	}
	return p.PaymentDate
}
