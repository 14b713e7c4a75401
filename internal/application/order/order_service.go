package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
)

// OrderService handles purchase order business operations
type OrderService struct {
	orderRepo      order.Repository
	partyRepo      party.Repository
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, partyRepo party.Repository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		partyRepo: partyRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order against a vendor party
func (s *OrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	// Resolve the party; its name is denormalized onto the order
	pty, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, req.PartyID)
	if err != nil {
		return nil, err
	}
	if pty.IsArchived() {
		return nil, shared.NewDomainError("ARCHIVED_PARTY", "Cannot create an order for an archived party")
	}

	// Generate PO number
	poNumber, err := s.orderRepo.GeneratePONumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Create order with its items
	o, err := order.NewPurchaseOrder(tenantID, poNumber, pty.ID, pty.Name, req.OrderDate, toItemInputs(req.Items))
	if err != nil {
		return nil, err
	}

	// Apply discount if provided
	if req.Discount != nil {
		if err := o.ApplyDiscount(valueobject.NewMoneyINR(*req.Discount)); err != nil {
			return nil, err
		}
	}

	// Set notes
	if req.Notes != "" {
		o.SetNotes(req.Notes)
	}

	// Set created_by if provided (from JWT context via handler)
	if req.CreatedBy != nil {
		o.SetCreatedBy(*req.CreatedBy)
	}

	// Save order
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToPurchaseOrderResponse(o)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *OrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(o)
	return &response, nil
}

// GetByPONumber retrieves a purchase order by PO number
func (s *OrderService) GetByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*PurchaseOrderResponse, error) {
	o, err := s.orderRepo.FindByPONumber(ctx, tenantID, poNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(o)
	return &response, nil
}

// List retrieves a list of purchase orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
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
	if filter.PartyID != nil {
		domainFilter.Filters["party_id"] = *filter.PartyID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	// Get orders
	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	// Get total count
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderListItemResponses(orders), total, nil
}

// ListByParty retrieves purchase orders for a specific party
func (s *OrderService) ListByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	filter.PartyID = &partyID
	return s.List(ctx, tenantID, filter)
}

// Update updates a pending purchase order. Items, when present, replace
// the full line list; partial line edits are not supported.
func (s *OrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if !o.IsPending() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only pending orders can be modified")
	}

	// Replace items
	if req.Items != nil {
		if err := o.ReplaceItems(toItemInputs(*req.Items)); err != nil {
			return nil, err
		}
	}

	// Update discount
	if req.Discount != nil {
		if err := o.ApplyDiscount(valueobject.NewMoneyINR(*req.Discount)); err != nil {
			return nil, err
		}
	}

	// Reschedule
	if req.OrderDate != nil {
		if err := o.Reschedule(*req.OrderDate); err != nil {
			return nil, err
		}
	}

	// Update notes
	if req.Notes != nil {
		o.SetNotes(*req.Notes)
	}

	// Save with optimistic locking
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToPurchaseOrderResponse(o)
	return &response, nil
}

// MarkReceived marks a pending order as received
func (s *OrderService) MarkReceived(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkReceived(); err != nil {
		return nil, err
	}

	// Save with optimistic locking
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToPurchaseOrderResponse(o)
	return &response, nil
}

// Cancel cancels a pending order. The cancelled order drops out of the
// party's ledger and balance.
func (s *OrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}

	// Save with optimistic locking
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToPurchaseOrderResponse(o)
	return &response, nil
}

// GetStatusSummary retrieves order counts by status for a tenant
func (s *OrderService) GetStatusSummary(ctx context.Context, tenantID uuid.UUID) (*PurchaseOrderStatusSummary, error) {
	counts := make(map[order.Status]int64, 3)
	for _, status := range []order.Status{order.StatusPending, order.StatusReceived, order.StatusCancelled} {
		filter := shared.Filter{
			Filters: map[string]any{"status": string(status)},
		}
		count, err := s.orderRepo.CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return &PurchaseOrderStatusSummary{
		Pending:   counts[order.StatusPending],
		Received:  counts[order.StatusReceived],
		Cancelled: counts[order.StatusCancelled],
		Total:     counts[order.StatusPending] + counts[order.StatusReceived] + counts[order.StatusCancelled],
	}, nil
}

// publishEvents drains the order's pending domain events to the bus so the
// balance cache invalidator sees the mutation. The save has already
// happened, so delivery failures do not fail the operation.
func (s *OrderService) publishEvents(ctx context.Context, o *order.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}

	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}
