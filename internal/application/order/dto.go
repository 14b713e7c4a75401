package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// PurchaseOrderItemRequest represents one order line in a create or update request
type PurchaseOrderItemRequest struct {
	ItemName     string          `json:"item_name" binding:"required,min=1,max=200"`
	SKU          string          `json:"sku" binding:"max=50"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Unit         string          `json:"unit" binding:"required,max=20"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" binding:"required"`
	Description  string          `json:"description" binding:"max=500"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	PartyID   uuid.UUID                  `json:"party_id" binding:"required"`
	OrderDate time.Time                  `json:"order_date" binding:"required"`
	Items     []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount  *decimal.Decimal           `json:"discount"`
	Notes     string                     `json:"notes"`
	CreatedBy *uuid.UUID                 `json:"-"` // Set from JWT context, not from request body
}

// UpdatePurchaseOrderRequest represents a request to update a pending order.
// Items, when present, replace the full line list.
type UpdatePurchaseOrderRequest struct {
	Items     *[]PurchaseOrderItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	Discount  *decimal.Decimal            `json:"discount"`
	OrderDate *time.Time                  `json:"order_date"`
	Notes     *string                     `json:"notes"`
}

// CancelPurchaseOrderRequest represents a request to cancel an order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PurchaseOrderListFilter represents filter options for the order list
type PurchaseOrderListFilter struct {
	PartyID  *uuid.UUID `form:"party_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING RECEIVED CANCELLED"`
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderItemResponse represents an order line in API responses
type PurchaseOrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Position     int             `json:"position"`
	ItemName     string          `json:"item_name"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Description  string          `json:"description,omitempty"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	TenantID     uuid.UUID                   `json:"tenant_id"`
	PONumber     string                      `json:"po_number"`
	PartyID      uuid.UUID                   `json:"party_id"`
	PartyName    string                      `json:"party_name"`
	OrderDate    time.Time                   `json:"order_date"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	Subtotal     decimal.Decimal             `json:"subtotal"`
	Discount     decimal.Decimal             `json:"discount"`
	FinalAmount  decimal.Decimal             `json:"final_amount"`
	Status       string                      `json:"status"`
	Notes        string                      `json:"notes"`
	ReceivedAt   *time.Time                  `json:"received_at,omitempty"`
	CancelledAt  *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason string                      `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Version      int                         `json:"version"`
}

// PurchaseOrderListItemResponse represents a list row for purchase orders
type PurchaseOrderListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	PONumber    string          `json:"po_number"`
	PartyID     uuid.UUID       `json:"party_id"`
	PartyName   string          `json:"party_name"`
	OrderDate   time.Time       `json:"order_date"`
	ItemCount   int             `json:"item_count"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseOrderStatusSummary represents order counts by status
type PurchaseOrderStatusSummary struct {
	Pending   int64 `json:"pending"`
	Received  int64 `json:"received"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// toItemInputs converts request lines to domain item inputs
func toItemInputs(items []PurchaseOrderItemRequest) []order.ItemInput {
	inputs := make([]order.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = order.ItemInput{
			ItemName:     item.ItemName,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			PricePerUnit: item.PricePerUnit,
			Description:  item.Description,
		}
	}
	return inputs
}

// ToPurchaseOrderItemResponse converts a domain Item to PurchaseOrderItemResponse
func ToPurchaseOrderItemResponse(item *order.Item) PurchaseOrderItemResponse {
	return PurchaseOrderItemResponse{
		ID:           item.ID,
		Position:     item.Position,
		ItemName:     item.ItemName,
		SKU:          item.SKU,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		PricePerUnit: item.PricePerUnit,
		TotalAmount:  item.TotalAmount,
		Description:  item.Description,
	}
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(o *order.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = ToPurchaseOrderItemResponse(&o.Items[i])
	}

	return PurchaseOrderResponse{
		ID:           o.ID,
		TenantID:     o.TenantID,
		PONumber:     o.PONumber,
		PartyID:      o.PartyID,
		PartyName:    o.PartyName,
		OrderDate:    o.OrderDate,
		Items:        items,
		Subtotal:     o.Subtotal,
		Discount:     o.Discount,
		FinalAmount:  o.FinalAmount,
		Status:       string(o.Status),
		Notes:        o.Notes,
		ReceivedAt:   o.ReceivedAt,
		CancelledAt:  o.CancelledAt,
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}
}

// ToPurchaseOrderListItemResponse converts a domain PurchaseOrder to a list row
func ToPurchaseOrderListItemResponse(o *order.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:          o.ID,
		PONumber:    o.PONumber,
		PartyID:     o.PartyID,
		PartyName:   o.PartyName,
		OrderDate:   o.OrderDate,
		ItemCount:   o.ItemCount(),
		FinalAmount: o.FinalAmount,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}

// ToPurchaseOrderListItemResponses converts a slice of domain PurchaseOrders to list rows
func ToPurchaseOrderListItemResponses(orders []order.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderListItemResponse(&orders[i])
	}
	return responses
}
