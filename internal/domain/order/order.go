// Package order contains the purchase order aggregate. A purchase order is
// the debit side of a vendor's account: once placed it owes money to the
// vendor until payments cover it, unless it is cancelled.
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a purchase order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// RECEIVED and CANCELLED are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusReceived || target == StatusCancelled
	case StatusReceived, StatusCancelled:
		return false
	}
	return false
}

// Item represents a line item in a purchase order
type Item struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"` // preserves the entry order of the line
	ItemName     string          `gorm:"type:varchar(200);not null"`
	SKU          string          `gorm:"type:varchar(50)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"` // Quantity * PricePerUnit
	Description  string          `gorm:"type:varchar(500)"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "purchase_order_items"
}

// ItemInput carries the caller-supplied fields for one order line.
type ItemInput struct {
	ItemName     string          `json:"item_name"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Description  string          `json:"description,omitempty"`
}

func newItem(orderID uuid.UUID, position int, input ItemInput) (*Item, error) {
	if input.ItemName == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if input.Unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if input.PricePerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price per unit cannot be negative")
	}

	now := time.Now()
	return &Item{
		ID:           uuid.New(),
		OrderID:      orderID,
		Position:     position,
		ItemName:     input.ItemName,
		SKU:          input.SKU,
		Quantity:     input.Quantity,
		Unit:         input.Unit,
		PricePerUnit: input.PricePerUnit,
		TotalAmount:  input.Quantity.Mul(input.PricePerUnit).Round(2),
		Description:  input.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetTotalAmountMoney returns the line total as Money
func (i *Item) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(i.TotalAmount)
}

// PurchaseOrder represents a purchase order aggregate root.
// Orders are created against a vendor party with their full item list;
// lines stay editable while the order is PENDING and freeze once it is
// received or cancelled.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	PONumber     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	PartyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartyName    string          `gorm:"type:varchar(200);not null"`
	OrderDate    time.Time       `gorm:"not null;index"`
	Items        []Item          `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	FinalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Subtotal - Discount
	Status       Status          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Notes        string          `gorm:"type:text"`
	ReceivedAt   *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new pending purchase order with its items.
// Totals are computed from the items; an order without items is rejected.
func NewPurchaseOrder(tenantID uuid.UUID, poNumber string, partyID uuid.UUID, partyName string, orderDate time.Time, items []ItemInput) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if len(poNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if orderDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ORDER_DATE", "Order date is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase order must have at least one item")
	}

	o := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PONumber:            poNumber,
		PartyID:             partyID,
		PartyName:           partyName,
		OrderDate:           orderDate,
		Items:               make([]Item, 0, len(items)),
		Subtotal:            decimal.Zero,
		Discount:            decimal.Zero,
		FinalAmount:         decimal.Zero,
		Status:              StatusPending,
	}

	for idx, input := range items {
		item, err := newItem(o.ID, idx, input)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, *item)
	}
	o.recalculateTotals()

	o.AddDomainEvent(NewPurchaseOrderCreatedEvent(o))

	return o, nil
}

// ReplaceItems replaces the full item list and recomputes totals.
// Only allowed while the order is PENDING.
func (o *PurchaseOrder) ReplaceItems(items []ItemInput) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit items of a %s order", o.Status))
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Purchase order must have at least one item")
	}

	rebuilt := make([]Item, 0, len(items))
	for idx, input := range items {
		item, err := newItem(o.ID, idx, input)
		if err != nil {
			return err
		}
		rebuilt = append(rebuilt, *item)
	}

	previousAmount := o.FinalAmount
	o.Items = rebuilt
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if !o.FinalAmount.Equal(previousAmount) {
		o.AddDomainEvent(NewPurchaseOrderAmendedEvent(o, previousAmount))
	}

	return nil
}

// ApplyDiscount applies an order-level discount.
// Only allowed while the order is PENDING.
func (o *PurchaseOrder) ApplyDiscount(discount valueobject.Money) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply discount to a %s order", o.Status))
	}
	if discount.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.Amount().GreaterThan(o.Subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}

	previousAmount := o.FinalAmount
	o.Discount = discount.Amount().Round(2)
	o.FinalAmount = o.Subtotal.Sub(o.Discount)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if !o.FinalAmount.Equal(previousAmount) {
		o.AddDomainEvent(NewPurchaseOrderAmendedEvent(o, previousAmount))
	}

	return nil
}

// Reschedule changes the order date.
// Only allowed while the order is PENDING.
func (o *PurchaseOrder) Reschedule(orderDate time.Time) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reschedule a %s order", o.Status))
	}
	if orderDate.IsZero() {
		return shared.NewDomainError("INVALID_ORDER_DATE", "Order date is required")
	}

	o.OrderDate = orderDate
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetNotes sets the free-form order notes
func (o *PurchaseOrder) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// MarkReceived marks the order as received, transitioning PENDING to RECEIVED
func (o *PurchaseOrder) MarkReceived() error {
	if !o.Status.CanTransitionTo(StatusReceived) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusReceived
	o.ReceivedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o))

	return nil
}

// Cancel cancels the order. Cancelled orders drop out of the vendor's
// ledger and balance entirely; only PENDING orders can be cancelled.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))

	return nil
}

// recalculateTotals recalculates subtotal and final amount from the items
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalAmount)
	}
	o.Subtotal = subtotal.Round(2)
	o.FinalAmount = o.Subtotal.Sub(o.Discount)

	// Clamp if the discount was applied before an item edit shrank the order
	if o.FinalAmount.IsNegative() {
		o.Discount = o.Subtotal
		o.FinalAmount = decimal.Zero
	}
}

// GetSubtotalMoney returns the subtotal as Money
func (o *PurchaseOrder) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyINR(o.Subtotal)
}

// GetDiscountMoney returns the discount as Money
func (o *PurchaseOrder) GetDiscountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(o.Discount)
}

// GetFinalAmountMoney returns the final amount as Money
func (o *PurchaseOrder) GetFinalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(o.FinalAmount)
}

// ItemCount returns the number of items in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsPending returns true if the order is pending
func (o *PurchaseOrder) IsPending() bool {
	return o.Status == StatusPending
}

// IsReceived returns true if the order has been received
func (o *PurchaseOrder) IsReceived() bool {
	return o.Status == StatusReceived
}

// IsCancelled returns true if the order is cancelled
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// CanModify returns true if the order can still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.IsPending()
}
