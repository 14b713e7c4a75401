package party

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyStatus represents the lifecycle status of a party
type PartyStatus string

const (
	PartyStatusActive   PartyStatus = "active"
	PartyStatusArchived PartyStatus = "archived"
)

// Party is a vendor counterparty: the owning scope for purchase orders and
// payments. It is the aggregate root for vendor master data. The outstanding
// balance is derived from the ledger and cached outside the aggregate; it is
// deliberately not a column here.
type Party struct {
	shared.TenantAggregateRoot
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_party_tenant_code,priority:2"`
	Name        string `gorm:"type:varchar(200);not null"`
	ContactName string `gorm:"type:varchar(100)"`
	Phone       string `gorm:"type:varchar(50);index"`
	Email       string `gorm:"type:varchar(200);index"`
	Address     string `gorm:"type:text"`
	City        string `gorm:"type:varchar(100)"`
	State       string `gorm:"type:varchar(100)"`
	PinCode     string `gorm:"type:varchar(20)"`
	GSTIN       string `gorm:"type:varchar(20)"` // Goods and Services Tax identification
	CreditDays  int    `gorm:"not null;default:0"`
	// OpeningBalance is the dues carried in from before the books moved here.
	// It is master data shown next to the derived balance, never folded into it.
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status         PartyStatus     `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes          string          `gorm:"type:text"`
	SortOrder      int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Party) TableName() string {
	return "parties"
}

// NewParty creates a new vendor party with required fields
func NewParty(tenantID uuid.UUID, code, name string) (*Party, error) {
	if err := validatePartyCode(code); err != nil {
		return nil, err
	}
	if err := validatePartyName(name); err != nil {
		return nil, err
	}

	p := &Party{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		OpeningBalance:      decimal.Zero,
		Status:              PartyStatusActive,
	}

	p.AddDomainEvent(NewPartyCreatedEvent(p))

	return p, nil
}

// Update updates the party's name
func (p *Party) Update(name string) error {
	if err := validatePartyName(name); err != nil {
		return err
	}

	p.Name = name
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartyUpdatedEvent(p))

	return nil
}

// UpdateCode updates the party's code
func (p *Party) UpdateCode(code string) error {
	if err := validatePartyCode(code); err != nil {
		return err
	}

	p.Code = strings.ToUpper(code)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartyUpdatedEvent(p))

	return nil
}

// SetContact sets the party's contact information
func (p *Party) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	p.ContactName = contactName
	p.Phone = phone
	p.Email = email
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetAddress sets the party's address information
func (p *Party) SetAddress(address, city, state, pinCode string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}
	if state != "" && len(state) > 100 {
		return shared.NewDomainError("INVALID_STATE", "State cannot exceed 100 characters")
	}
	if pinCode != "" && len(pinCode) > 20 {
		return shared.NewDomainError("INVALID_PIN_CODE", "PIN code cannot exceed 20 characters")
	}

	p.Address = address
	p.City = city
	p.State = state
	p.PinCode = pinCode
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetGSTIN sets the party's GST identification number
func (p *Party) SetGSTIN(gstin string) error {
	if gstin != "" && len(gstin) != 15 {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be exactly 15 characters")
	}

	p.GSTIN = strings.ToUpper(gstin)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetCreditDays sets the payment terms in days
func (p *Party) SetCreditDays(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days cannot be negative")
	}
	if days > 365 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days cannot exceed 365")
	}

	p.CreditDays = days
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetOpeningBalance sets the carried-in dues. Negative means an advance
// was already paid to the vendor.
func (p *Party) SetOpeningBalance(balance decimal.Decimal) {
	p.OpeningBalance = balance
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetNotes sets the party's notes
func (p *Party) SetNotes(notes string) {
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetSortOrder sets the display order
func (p *Party) SetSortOrder(order int) {
	p.SortOrder = order
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Archive archives the party. Archived parties are hidden from default
// lists but their order, payment and ledger history stays queryable.
func (p *Party) Archive() error {
	if p.Status == PartyStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Party is already archived")
	}

	p.Status = PartyStatusArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartyArchivedEvent(p))

	return nil
}

// Unarchive restores an archived party
func (p *Party) Unarchive() error {
	if p.Status == PartyStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Party is already active")
	}

	p.Status = PartyStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartyUnarchivedEvent(p))

	return nil
}

// IsActive returns true if the party is active
func (p *Party) IsActive() bool {
	return p.Status == PartyStatusActive
}

// IsArchived returns true if the party is archived
func (p *Party) IsArchived() bool {
	return p.Status == PartyStatusArchived
}

// Validation functions

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validatePartyCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Party code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Party code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Party code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validatePartyName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Party name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Party name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	for _, r := range phone {
		if !((r >= '0' && r <= '9') || r == '+' || r == '-' || r == ' ' || r == '(' || r == ')') {
			return shared.NewDomainError("INVALID_PHONE", "Phone contains invalid characters")
		}
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}
