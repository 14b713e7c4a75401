package catalog

import (
	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductUpdated       = "ProductUpdated"
	EventTypeProductStatusChanged = "ProductStatusChanged"
	EventTypeProductPriceChanged  = "ProductPriceChanged"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Unit:            p.Unit,
	}
}

// EventType returns the event type name
func (e *ProductCreatedEvent) EventType() string {
	return EventTypeProductCreated
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Grade       string    `json:"grade,omitempty"`
	Origin      string    `json:"origin,omitempty"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Grade:           p.Grade,
		Origin:          p.Origin,
	}
}

// EventType returns the event type name
func (e *ProductUpdatedEvent) EventType() string {
	return EventTypeProductUpdated
}

// ProductStatusChangedEvent is published when a product's status changes
type ProductStatusChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID     `json:"product_id"`
	SKU       string        `json:"sku"`
	OldStatus ProductStatus `json:"old_status"`
	NewStatus ProductStatus `json:"new_status"`
}

// NewProductStatusChangedEvent creates a new ProductStatusChangedEvent
func NewProductStatusChangedEvent(p *Product, oldStatus, newStatus ProductStatus) *ProductStatusChangedEvent {
	return &ProductStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStatusChanged, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// EventType returns the event type name
func (e *ProductStatusChangedEvent) EventType() string {
	return EventTypeProductStatusChanged
}

// ProductPriceChangedEvent is published when a product's prices change
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID        uuid.UUID       `json:"product_id"`
	SKU              string          `json:"sku"`
	OldPurchasePrice decimal.Decimal `json:"old_purchase_price"`
	NewPurchasePrice decimal.Decimal `json:"new_purchase_price"`
	OldSellingPrice  decimal.Decimal `json:"old_selling_price"`
	NewSellingPrice  decimal.Decimal `json:"new_selling_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(p *Product, oldPurchasePrice, oldSellingPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:        p.ID,
		SKU:              p.SKU,
		OldPurchasePrice: oldPurchasePrice,
		NewPurchasePrice: p.PurchasePrice,
		OldSellingPrice:  oldSellingPrice,
		NewSellingPrice:  p.SellingPrice,
	}
}

// EventType returns the event type name
func (e *ProductPriceChangedEvent) EventType() string {
	return EventTypeProductPriceChanged
}
