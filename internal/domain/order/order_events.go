package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderAmended   = "PurchaseOrderAmended"
	EventTypePurchaseOrderReceived  = "PurchaseOrderReceived"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
)

// ItemInfo represents line item information carried by order events
type ItemInfo struct {
	ItemID       uuid.UUID       `json:"item_id"`
	ItemName     string          `json:"item_name"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

func itemInfos(o *PurchaseOrder) []ItemInfo {
	infos := make([]ItemInfo, len(o.Items))
	for i, item := range o.Items {
		infos[i] = ItemInfo{
			ItemID:       item.ID,
			ItemName:     item.ItemName,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			PricePerUnit: item.PricePerUnit,
			TotalAmount:  item.TotalAmount,
		}
	}
	return infos
}

// PurchaseOrderCreatedEvent is raised when a new purchase order is created.
// Consumers use it to invalidate the party's cached balance.
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	PONumber    string          `json:"po_number"`
	PartyID     uuid.UUID       `json:"party_id"`
	PartyName   string          `json:"party_name"`
	OrderDate   time.Time       `json:"order_date"`
	Items       []ItemInfo      `json:"items"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		PONumber:        o.PONumber,
		PartyID:         o.PartyID,
		PartyName:       o.PartyName,
		OrderDate:       o.OrderDate,
		Items:           itemInfos(o),
		FinalAmount:     o.FinalAmount,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCreatedEvent) EventType() string {
	return EventTypePurchaseOrderCreated
}

// PurchaseOrderAmendedEvent is raised when a pending order's amount changes,
// through an item edit or a discount. The party's cached balance depends on
// the final amount, so consumers must invalidate it.
type PurchaseOrderAmendedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	PONumber       string          `json:"po_number"`
	PartyID        uuid.UUID       `json:"party_id"`
	PartyName      string          `json:"party_name"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// NewPurchaseOrderAmendedEvent creates a new PurchaseOrderAmendedEvent
func NewPurchaseOrderAmendedEvent(o *PurchaseOrder, previousAmount decimal.Decimal) *PurchaseOrderAmendedEvent {
	return &PurchaseOrderAmendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderAmended, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		PONumber:        o.PONumber,
		PartyID:         o.PartyID,
		PartyName:       o.PartyName,
		PreviousAmount:  previousAmount,
		FinalAmount:     o.FinalAmount,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderAmendedEvent) EventType() string {
	return EventTypePurchaseOrderAmended
}

// PurchaseOrderReceivedEvent is raised when an order is marked received
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	PONumber    string          `json:"po_number"`
	PartyID     uuid.UUID       `json:"party_id"`
	PartyName   string          `json:"party_name"`
	Items       []ItemInfo      `json:"items"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder) *PurchaseOrderReceivedEvent {
	receivedAt := time.Now()
	if o.ReceivedAt != nil {
		receivedAt = *o.ReceivedAt
	}

	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		PONumber:        o.PONumber,
		PartyID:         o.PartyID,
		PartyName:       o.PartyName,
		Items:           itemInfos(o),
		FinalAmount:     o.FinalAmount,
		ReceivedAt:      receivedAt,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderReceivedEvent) EventType() string {
	return EventTypePurchaseOrderReceived
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled.
// A cancelled order no longer owes the vendor anything, so consumers
// must invalidate the party's cached balance.
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	PONumber     string          `json:"po_number"`
	PartyID      uuid.UUID       `json:"party_id"`
	PartyName    string          `json:"party_name"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	CancelReason string          `json:"cancel_reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		PONumber:        o.PONumber,
		PartyID:         o.PartyID,
		PartyName:       o.PartyName,
		FinalAmount:     o.FinalAmount,
		CancelReason:    o.CancelReason,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCancelledEvent) EventType() string {
	return EventTypePurchaseOrderCancelled
}
