package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/govindji/backoffice/internal/domain/payment"
)

// ==================== Party Payment DTOs ====================

// RecordPaymentRequest represents a request to record a payment or adjustment
// against a party.
type RecordPaymentRequest struct {
	PartyID         uuid.UUID       `json:"party_id" binding:"required"`
	Type            string          `json:"type" binding:"omitempty,oneof=PAYMENT ADJUSTMENT"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate     time.Time       `json:"payment_date" binding:"required"`
	Method          string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER UPI CHEQUE"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes" binding:"max=1000"`

	// IdempotencyKey is taken from the Idempotency-Key header, not the body
	IdempotencyKey string     `json:"-"`
	CreatedBy      *uuid.UUID `json:"-"` // Set from JWT context, not from request body
}

// UpdatePaymentDetailsRequest represents a request to annotate a recorded
// payment. Amount, date, party and type are append-only and cannot change;
// a wrong entry is voided and re-recorded.
type UpdatePaymentDetailsRequest struct {
	ReferenceNumber *string `json:"reference_number" binding:"omitempty,max=100"`
	Notes           *string `json:"notes" binding:"omitempty,max=1000"`
}

// VoidPaymentRequest represents a request to void a payment
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	PartyID  *uuid.UUID `form:"party_id"`
	Type     string     `form:"type" binding:"omitempty,oneof=PAYMENT ADJUSTMENT"`
	Method   string     `form:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER UPI CHEQUE"`
	Status   string     `form:"status" binding:"omitempty,oneof=RECORDED VOIDED"`
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	PaymentNumber   string          `json:"payment_number"`
	PartyID         uuid.UUID       `json:"party_id"`
	PartyName       string          `json:"party_name"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Status          string          `json:"status"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty"`
	VoidReason      string          `json:"void_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// PaymentListItemResponse represents a payment in list responses
type PaymentListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyName     string          `json:"party_name"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ==================== Converters ====================

// ToPaymentResponse converts a domain payment to PaymentResponse
func ToPaymentResponse(p *payment.PartyPayment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		PaymentNumber:   p.PaymentNumber,
		PartyID:         p.PartyID,
		PartyName:       p.PartyName,
		Type:            string(p.Type),
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          string(p.Method),
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		Status:          string(p.Status),
		VoidedAt:        p.VoidedAt,
		VoidReason:      p.VoidReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.GetVersion(),
	}
}

// ToPaymentListItemResponse converts a domain payment to PaymentListItemResponse
func ToPaymentListItemResponse(p *payment.PartyPayment) PaymentListItemResponse {
	return PaymentListItemResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		PartyID:       p.PartyID,
		PartyName:     p.PartyName,
		Type:          string(p.Type),
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		Method:        string(p.Method),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
	}
}

// ToPaymentListItemResponses converts a slice of domain payments to list responses
func ToPaymentListItemResponses(payments []payment.PartyPayment) []PaymentListItemResponse {
	responses := make([]PaymentListItemResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentListItemResponse(&payments[i])
	}
	return responses
}
