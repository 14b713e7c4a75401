package party

import (
	"context"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceProvider supplies the ledger-derived outstanding balance for a
// party. The statement service implements it. Wiring one is optional;
// detail responses simply omit the balance when none is set.
type BalanceProvider interface {
	GetBalance(ctx context.Context, tenantID, partyID uuid.UUID) (decimal.Decimal, error)
}

// PartyService handles vendor master data operations
type PartyService struct {
	partyRepo       party.Repository
	orderRepo       order.Repository
	balanceProvider BalanceProvider
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo party.Repository, orderRepo order.Repository) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		orderRepo: orderRepo,
	}
}

// SetBalanceProvider wires the ledger balance into detail responses
func (s *PartyService) SetBalanceProvider(provider BalanceProvider) {
	s.balanceProvider = provider
}

// Create creates a new vendor party
func (s *PartyService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (*PartyResponse, error) {
	// Check if code already exists
	exists, err := s.partyRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Party with this code already exists")
	}

	// Create the party
	p, err := party.NewParty(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	// Set contact
	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := p.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}

	// Set address
	if req.Address != "" || req.City != "" || req.State != "" || req.PinCode != "" {
		if err := p.SetAddress(req.Address, req.City, req.State, req.PinCode); err != nil {
			return nil, err
		}
	}

	// Set GSTIN
	if req.GSTIN != "" {
		if err := p.SetGSTIN(req.GSTIN); err != nil {
			return nil, err
		}
	}

	// Set credit days
	if req.CreditDays != nil {
		if err := p.SetCreditDays(*req.CreditDays); err != nil {
			return nil, err
		}
	}

	// Set opening balance
	if req.OpeningBalance != nil {
		p.SetOpeningBalance(*req.OpeningBalance)
	}

	// Set notes
	if req.Notes != "" {
		p.SetNotes(req.Notes)
	}

	// Set sort order
	if req.SortOrder != nil {
		p.SetSortOrder(*req.SortOrder)
	}

	// Set creator
	if req.CreatedBy != nil {
		p.SetCreatedBy(*req.CreatedBy)
	}

	// Save the party
	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	return &response, nil
}

// GetByID retrieves a party by ID, with the derived balance when available
func (s *PartyService) GetByID(ctx context.Context, tenantID, partyID uuid.UUID) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	s.attachBalance(ctx, &response)
	return &response, nil
}

// GetByCode retrieves a party by code
func (s *PartyService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	s.attachBalance(ctx, &response)
	return &response, nil
}

// attachBalance fills CurrentBalance when a provider is wired. A provider
// failure leaves it nil: vendor master data stays readable while the
// ledger sources are down.
func (s *PartyService) attachBalance(ctx context.Context, response *PartyResponse) {
	if s.balanceProvider == nil {
		return
	}

	balance, err := s.balanceProvider.GetBalance(ctx, response.TenantID, response.ID)
	if err != nil {
		return
	}
	response.CurrentBalance = &balance
}

// List retrieves a list of parties with filtering and pagination.
// Archived parties are excluded unless the filter asks for them.
func (s *PartyService) List(ctx context.Context, tenantID uuid.UUID, filter PartyListFilter) ([]PartyListResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sort_order"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	// Add specific filters
	switch filter.Status {
	case "", string(party.PartyStatusActive):
		domainFilter.Filters["status"] = string(party.PartyStatusActive)
	case "all":
		// No status filter: include archived parties
	default:
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}

	// Get parties
	parties, err := s.partyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	// Get total count
	total, err := s.partyRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPartyListResponses(parties), total, nil
}

// Update updates a party
func (s *PartyService) Update(ctx context.Context, tenantID, partyID uuid.UUID, req UpdatePartyRequest) (*PartyResponse, error) {
	// Get existing party
	p, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	// Update name
	if req.Name != nil {
		if err := p.Update(*req.Name); err != nil {
			return nil, err
		}
	}

	// Update contact
	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contactName := p.ContactName
		phone := p.Phone
		email := p.Email

		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}

		if err := p.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}

	// Update address
	if req.Address != nil || req.City != nil || req.State != nil || req.PinCode != nil {
		address := p.Address
		city := p.City
		state := p.State
		pinCode := p.PinCode

		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		if req.PinCode != nil {
			pinCode = *req.PinCode
		}

		if err := p.SetAddress(address, city, state, pinCode); err != nil {
			return nil, err
		}
	}

	// Update GSTIN
	if req.GSTIN != nil {
		if err := p.SetGSTIN(*req.GSTIN); err != nil {
			return nil, err
		}
	}

	// Update credit days
	if req.CreditDays != nil {
		if err := p.SetCreditDays(*req.CreditDays); err != nil {
			return nil, err
		}
	}

	// Update opening balance
	if req.OpeningBalance != nil {
		p.SetOpeningBalance(*req.OpeningBalance)
	}

	// Update notes
	if req.Notes != nil {
		p.SetNotes(*req.Notes)
	}

	// Update sort order
	if req.SortOrder != nil {
		p.SetSortOrder(*req.SortOrder)
	}

	// Save the party
	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	return &response, nil
}

// UpdateCode changes a party's code
func (s *PartyService) UpdateCode(ctx context.Context, tenantID, partyID uuid.UUID, newCode string) (*PartyResponse, error) {
	// Get existing party
	p, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	// Check if new code already exists (if different from current)
	if newCode != p.Code {
		exists, err := s.partyRepo.ExistsByCode(ctx, tenantID, newCode)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Party with this code already exists")
		}
	}

	// Update the code
	if err := p.UpdateCode(newCode); err != nil {
		return nil, err
	}

	// Save the party
	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	return &response, nil
}

// Archive archives a party. A party with pending purchase orders cannot be
// archived; those orders have to be received or cancelled first.
func (s *PartyService) Archive(ctx context.Context, tenantID, partyID uuid.UUID) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	pending, err := s.orderRepo.CountPendingByParty(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, shared.NewDomainError("HAS_PENDING_ORDERS", "Cannot archive a party with pending purchase orders")
	}

	if err := p.Archive(); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	return &response, nil
}

// Unarchive restores an archived party
func (s *PartyService) Unarchive(ctx context.Context, tenantID, partyID uuid.UUID) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	if err := p.Unarchive(); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPartyResponse(p)
	return &response, nil
}

// Delete deletes a party. Only archived parties can be deleted; archiving
// is the normal way to retire a vendor while keeping its ledger queryable.
func (s *PartyService) Delete(ctx context.Context, tenantID, partyID uuid.UUID) error {
	p, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return err
	}

	if !p.IsArchived() {
		return shared.NewDomainError("CANNOT_DELETE", "Only archived parties can be deleted")
	}

	return s.partyRepo.DeleteForTenant(ctx, tenantID, partyID)
}

// CountByStatus returns party counts by status for a tenant
func (s *PartyService) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	counts := make(map[string]int64)

	var total int64
	for _, status := range []party.PartyStatus{party.PartyStatusActive, party.PartyStatusArchived} {
		filter := shared.Filter{
			Filters: map[string]any{"status": string(status)},
		}
		count, err := s.partyRepo.CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		counts[string(status)] = count
		total += count
	}
	counts["total"] = total

	return counts, nil
}
