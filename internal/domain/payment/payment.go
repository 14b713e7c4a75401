// Package payment contains the party payment aggregate. A payment is the
// credit side of a vendor's account; adjustments share the same record
// shape but never move the outstanding balance.
package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Type distinguishes real payments from bookkeeping adjustments
type Type string

const (
	TypePayment    Type = "PAYMENT"
	TypeAdjustment Type = "ADJUSTMENT"
)

// IsValid checks if the type is a known value
func (t Type) IsValid() bool {
	switch t {
	case TypePayment, TypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation of the type
func (t Type) String() string {
	return string(t)
}

// Method represents how the payment was made
type Method string

const (
	MethodCash         Method = "CASH"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodUPI          Method = "UPI"
	MethodCheque       Method = "CHEQUE"
)

// IsValid checks if the method is a known value
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodUPI, MethodCheque:
		return true
	}
	return false
}

// String returns the string representation of the method
func (m Method) String() string {
	return string(m)
}

// Status represents the lifecycle status of a payment record
type Status string

const (
	StatusRecorded Status = "RECORDED"
	StatusVoided   Status = "VOIDED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusRecorded, StatusVoided:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// PartyPayment represents a payment (or adjustment) recorded against a
// vendor party. Records are append-only: a wrong entry is voided and
// re-recorded, never edited in place.
type PartyPayment struct {
	shared.TenantAggregateRoot
	PaymentNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_party_payment_tenant_number,priority:2"`
	PartyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartyName       string          `gorm:"type:varchar(200);not null"`
	Type            Type            `gorm:"type:varchar(20);not null;default:'PAYMENT'"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate     time.Time       `gorm:"not null;index"`
	Method          Method          `gorm:"type:varchar(30);not null"`
	ReferenceNumber string          `gorm:"type:varchar(100)"` // bank txn id, cheque number, UPI ref
	Notes           string          `gorm:"type:text"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'RECORDED';index"`
	VoidedAt        *time.Time
	VoidReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PartyPayment) TableName() string {
	return "party_payments"
}

// NewPartyPayment records a new payment or adjustment against a party
func NewPartyPayment(
	tenantID uuid.UUID,
	paymentNumber string,
	partyID uuid.UUID,
	partyName string,
	paymentType Type,
	amount valueobject.Money,
	method Method,
	paymentDate time.Time,
) (*PartyPayment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if len(paymentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	p := &PartyPayment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       paymentNumber,
		PartyID:             partyID,
		PartyName:           partyName,
		Type:                paymentType,
		Amount:              amount.Amount().Round(2),
		PaymentDate:         paymentDate,
		Method:              method,
		Status:              StatusRecorded,
	}

	p.AddDomainEvent(NewPartyPaymentRecordedEvent(p))

	return p, nil
}

// SetReferenceNumber sets the external payment reference
func (p *PartyPayment) SetReferenceNumber(reference string) error {
	if p.Status != StatusRecorded {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a voided payment")
	}
	if len(reference) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference number cannot exceed 100 characters")
	}

	p.ReferenceNumber = reference
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetNotes sets the free-form notes
func (p *PartyPayment) SetNotes(notes string) error {
	if p.Status != StatusRecorded {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a voided payment")
	}

	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Void voids the payment. A voided payment drops out of the party's
// ledger and balance; the record stays for the audit trail.
func (p *PartyPayment) Void(reason string) error {
	if p.Status == StatusVoided {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Payment %s is already voided", p.PaymentNumber))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	p.Status = StatusVoided
	p.VoidedAt = &now
	p.VoidReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPartyPaymentVoidedEvent(p))

	return nil
}

// GetAmountMoney returns the amount as Money
func (p *PartyPayment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.Amount)
}

// IsRecorded returns true if the payment is active
func (p *PartyPayment) IsRecorded() bool {
	return p.Status == StatusRecorded
}

// IsVoided returns true if the payment has been voided
func (p *PartyPayment) IsVoided() bool {
	return p.Status == StatusVoided
}

// IsAdjustment returns true for adjustment records
func (p *PartyPayment) IsAdjustment() bool {
	return p.Type == TypeAdjustment
}
