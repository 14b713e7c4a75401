package party

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/shopspring/decimal"
)

// ==================== Party DTOs ====================

// CreatePartyRequest represents a request to create a new vendor party
type CreatePartyRequest struct {
	Code           string           `json:"code" binding:"required,min=1,max=50"`
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	ContactName    string           `json:"contact_name" binding:"max=100"`
	Phone          string           `json:"phone" binding:"max=50"`
	Email          string           `json:"email" binding:"omitempty,email,max=200"`
	Address        string           `json:"address" binding:"max=500"`
	City           string           `json:"city" binding:"max=100"`
	State          string           `json:"state" binding:"max=100"`
	PinCode        string           `json:"pin_code" binding:"max=20"`
	GSTIN          string           `json:"gstin" binding:"omitempty,len=15"`
	CreditDays     *int             `json:"credit_days" binding:"omitempty,min=0,max=365"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	Notes          string           `json:"notes"`
	SortOrder      *int             `json:"sort_order"`
	CreatedBy      *uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdatePartyRequest represents a request to update a vendor party.
// Nil fields keep their current value.
type UpdatePartyRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName    *string          `json:"contact_name" binding:"omitempty,max=100"`
	Phone          *string          `json:"phone" binding:"omitempty,max=50"`
	Email          *string          `json:"email" binding:"omitempty,email,max=200"`
	Address        *string          `json:"address" binding:"omitempty,max=500"`
	City           *string          `json:"city" binding:"omitempty,max=100"`
	State          *string          `json:"state" binding:"omitempty,max=100"`
	PinCode        *string          `json:"pin_code" binding:"omitempty,max=20"`
	GSTIN          *string          `json:"gstin" binding:"omitempty,len=15"`
	CreditDays     *int             `json:"credit_days" binding:"omitempty,min=0,max=365"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	Notes          *string          `json:"notes"`
	SortOrder      *int             `json:"sort_order"`
}

// UpdatePartyCodeRequest represents a request to change a party's code
type UpdatePartyCodeRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
}

// PartyListFilter represents filter options for the party list.
// An empty Status lists active parties only; "all" includes archived ones.
type PartyListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active archived all"`
	City     string `form:"city"`
	State    string `form:"state"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PartyResponse represents a vendor party in API responses.
// CurrentBalance is the ledger-derived outstanding amount; it is omitted
// when the balance could not be computed so stale master data never poses
// as a number.
type PartyResponse struct {
	ID             uuid.UUID        `json:"id"`
	TenantID       uuid.UUID        `json:"tenant_id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	ContactName    string           `json:"contact_name"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	Address        string           `json:"address"`
	City           string           `json:"city"`
	State          string           `json:"state"`
	PinCode        string           `json:"pin_code"`
	GSTIN          string           `json:"gstin"`
	CreditDays     int              `json:"credit_days"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	CurrentBalance *decimal.Decimal `json:"current_balance,omitempty"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes"`
	SortOrder      int              `json:"sort_order"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Version        int              `json:"version"`
}

// PartyListResponse represents a list row for parties
type PartyListResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	City        string    `json:"city"`
	GSTIN       string    `json:"gstin"`
	CreditDays  int       `json:"credit_days"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToPartyResponse converts a domain Party to PartyResponse
func ToPartyResponse(p *party.Party) PartyResponse {
	return PartyResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Code:           p.Code,
		Name:           p.Name,
		ContactName:    p.ContactName,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		City:           p.City,
		State:          p.State,
		PinCode:        p.PinCode,
		GSTIN:          p.GSTIN,
		CreditDays:     p.CreditDays,
		OpeningBalance: p.OpeningBalance,
		Status:         string(p.Status),
		Notes:          p.Notes,
		SortOrder:      p.SortOrder,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToPartyListResponse converts a domain Party to PartyListResponse
func ToPartyListResponse(p *party.Party) PartyListResponse {
	return PartyListResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		ContactName: p.ContactName,
		Phone:       p.Phone,
		City:        p.City,
		GSTIN:       p.GSTIN,
		CreditDays:  p.CreditDays,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}

// ToPartyListResponses converts a slice of domain Parties to PartyListResponses
func ToPartyListResponses(parties []party.Party) []PartyListResponse {
	responses := make([]PartyListResponse, len(parties))
	for i := range parties {
		responses[i] = ToPartyListResponse(&parties[i])
	}
	return responses
}
