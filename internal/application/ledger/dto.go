package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ==================== Statement DTOs ====================

// StatementFilter narrows the statement to a business-date window.
// Bounds are inclusive; a nil bound leaves that side open.
type StatementFilter struct {
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
}

// IsZero reports whether the filter imposes no window at all.
func (f StatementFilter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil
}

// LedgerEntryResponse represents one row of the reconciled ledger in API responses
type LedgerEntryResponse struct {
	Kind        string               `json:"kind"`
	Date        time.Time            `json:"date"`
	CreatedAt   time.Time            `json:"created_at"`
	Amount      decimal.Decimal      `json:"amount"`
	Adjustment  bool                 `json:"adjustment,omitempty"`
	Description string               `json:"description"`
	Reference   string               `json:"reference,omitempty"`
	Detail      []LedgerItemResponse `json:"detail,omitempty"`
}

// LedgerItemResponse represents a purchase order line item in API responses
type LedgerItemResponse struct {
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	SKU          string          `json:"sku,omitempty"`
	Description  string          `json:"description,omitempty"`
}

// FlatItemResponse represents an annotated line item in the item-level table
type FlatItemResponse struct {
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	SKU          string          `json:"sku,omitempty"`
	Description  string          `json:"description,omitempty"`
	PONumber     string          `json:"po_number"`
	OrderDate    time.Time       `json:"order_date"`
	OrderStatus  string          `json:"order_status"`
	OrderID      uuid.UUID       `json:"order_id"`
}

// StatementResponse is the full reconciled statement for one party
type StatementResponse struct {
	PartyID     uuid.UUID             `json:"party_id"`
	PartyName   string                `json:"party_name"`
	Entries     []LedgerEntryResponse `json:"entries"`
	Balance     decimal.Decimal       `json:"balance"`
	ItemsTotal  decimal.Decimal       `json:"items_total"`
	FlatItems   []FlatItemResponse    `json:"flat_items"`
	Warnings    []string              `json:"warnings"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// BalanceResponse is the headline outstanding balance for one party
type BalanceResponse struct {
	PartyID uuid.UUID       `json:"party_id"`
	Balance decimal.Decimal `json:"balance"`
}

// ToLedgerItemResponse converts a core item snapshot to a response DTO
func ToLedgerItemResponse(item ledger.ItemSnapshot) LedgerItemResponse {
	return LedgerItemResponse{
		ItemName:     item.ItemName,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		PricePerUnit: item.PricePerUnit,
		TotalAmount:  item.TotalAmount,
		SKU:          item.SKU,
		Description:  item.Description,
	}
}

// ToLedgerEntryResponse converts a core ledger entry to a response DTO
func ToLedgerEntryResponse(entry ledger.Entry) LedgerEntryResponse {
	var detail []LedgerItemResponse
	if len(entry.Detail) > 0 {
		detail = make([]LedgerItemResponse, len(entry.Detail))
		for i := range entry.Detail {
			detail[i] = ToLedgerItemResponse(entry.Detail[i])
		}
	}

	return LedgerEntryResponse{
		Kind:        string(entry.Kind),
		Date:        entry.Date,
		CreatedAt:   entry.CreatedAt,
		Amount:      entry.Amount,
		Adjustment:  entry.Adjustment,
		Description: entry.Description,
		Reference:   entry.Reference,
		Detail:      detail,
	}
}

// ToFlatItemResponse converts an annotated core item to a response DTO
func ToFlatItemResponse(item ledger.FlatItem) FlatItemResponse {
	return FlatItemResponse{
		ItemName:     item.ItemName,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		PricePerUnit: item.PricePerUnit,
		TotalAmount:  item.TotalAmount,
		SKU:          item.SKU,
		Description:  item.Description,
		PONumber:     item.PONumber,
		OrderDate:    item.OrderDate,
		OrderStatus:  string(item.OrderStatus),
		OrderID:      item.OrderID,
	}
}

// ToStatementResponse converts a computed statement to the response DTO
func ToStatementResponse(partyID uuid.UUID, partyName string, stmt ledger.Statement) StatementResponse {
	entries := make([]LedgerEntryResponse, len(stmt.Entries))
	for i := range stmt.Entries {
		entries[i] = ToLedgerEntryResponse(stmt.Entries[i])
	}

	flatItems := make([]FlatItemResponse, len(stmt.FlatItems))
	for i := range stmt.FlatItems {
		flatItems[i] = ToFlatItemResponse(stmt.FlatItems[i])
	}

	return StatementResponse{
		PartyID:     partyID,
		PartyName:   partyName,
		Entries:     entries,
		Balance:     stmt.Balance,
		ItemsTotal:  stmt.ItemsTotal,
		FlatItems:   flatItems,
		Warnings:    stmt.Warnings,
		GeneratedAt: time.Now(),
	}
}
