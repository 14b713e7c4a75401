package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/govindji/backoffice/internal/infrastructure/telemetry"
)

// PaymentService handles party payment business operations
type PaymentService struct {
	paymentRepo      payment.Repository
	partyRepo        party.Repository
	eventPublisher   shared.EventPublisher
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	logger           *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo payment.Repository, partyRepo party.Repository) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		partyRepo:      partyRepo,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		logger:         zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the store used to de-duplicate submissions
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, config shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = config
}

// SetLogger sets the logger
func (s *PaymentService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Record records a new payment or adjustment against a party. Submissions
// carrying an Idempotency-Key are de-duplicated: a retry of an already
// processed key is rejected instead of creating a second record.
func (s *PaymentService) Record(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartyID, req.PartyID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		"method", req.Method,
	)

	if err := s.checkSubmissionKey(ctx, tenantID, req.IdempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Resolve the party; its name is denormalized onto the payment.
	// Archived parties stay payable: dues from before archiving still
	// get settled.
	pty, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, req.PartyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Generate payment number
	paymentNumber, err := s.paymentRepo.GeneratePaymentNumber(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paymentType := payment.TypePayment
	if req.Type != "" {
		paymentType = payment.Type(req.Type)
	}

	p, err := payment.NewPartyPayment(
		tenantID,
		paymentNumber,
		pty.ID,
		pty.Name,
		paymentType,
		valueobject.NewMoneyINR(req.Amount),
		payment.Method(req.Method),
		req.PaymentDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Set reference number if provided
	if req.ReferenceNumber != "" {
		if err := p.SetReferenceNumber(req.ReferenceNumber); err != nil {
			return nil, err
		}
	}

	// Set notes if provided
	if req.Notes != "" {
		if err := p.SetNotes(req.Notes); err != nil {
			return nil, err
		}
	}

	// Set created_by if provided (from JWT context via handler)
	if req.CreatedBy != nil {
		p.SetCreatedBy(*req.CreatedBy)
	}

	// Save payment
	if err := s.paymentRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, p)

	telemetry.AddEvent(span, "payment_recorded",
		telemetry.SpanAttrPaymentID, p.ID.String(),
		"payment_number", p.PaymentNumber,
	)

	response := ToPaymentResponse(p)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// GetByPaymentNumber retrieves a payment by payment number
func (s *PaymentService) GetByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByPaymentNumber(ctx, tenantID, paymentNumber)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// List retrieves a list of payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentListItemResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "payment_date"
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Method != "" {
		domainFilter.Filters["method"] = filter.Method
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

	// Get payments
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	// Get total count
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPaymentListItemResponses(payments), total, nil
}

// ListByParty retrieves payments for a specific party
func (s *PaymentService) ListByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter PaymentListFilter) ([]PaymentListItemResponse, int64, error) {
	filter.PartyID = &partyID
	return s.List(ctx, tenantID, filter)
}

// UpdateDetails annotates a recorded payment with a reference number or
// notes. Amount, date, party and type cannot change.
func (s *PaymentService) UpdateDetails(ctx context.Context, tenantID, paymentID uuid.UUID, req UpdatePaymentDetailsRequest) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	// Update reference number
	if req.ReferenceNumber != nil {
		if err := p.SetReferenceNumber(*req.ReferenceNumber); err != nil {
			return nil, err
		}
	}

	// Update notes
	if req.Notes != nil {
		if err := p.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}

	// Save with optimistic locking
	if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// Void voids a recorded payment. The voided payment drops out of the
// party's ledger and balance; the record stays for the audit trail.
func (s *PaymentService) Void(ctx context.Context, tenantID, paymentID uuid.UUID, req VoidPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "void")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := p.Void(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Save with optimistic locking
	if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, p)

	telemetry.AddEvent(span, "payment_voided",
		"reason", req.Reason,
	)

	response := ToPaymentResponse(p)
	return &response, nil
}

// checkSubmissionKey consumes the request's idempotency key. The second
// submission of a key within the TTL is rejected. When the store is down
// the submission goes through unchecked; a possible duplicate is easier
// to fix than a payment the admin could not record.
func (s *PaymentService) checkSubmissionKey(ctx context.Context, tenantID uuid.UUID, key string) error {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || key == "" {
		return nil
	}

	storeKey := fmt.Sprintf("payment-submit:%s:%s", tenantID, key)
	isNew, err := s.idempotencyStore.MarkProcessed(ctx, storeKey, s.idempotencyCfg.TTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable, recording without dedup",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return nil
	}
	if !isNew {
		return shared.NewDomainError("DUPLICATE_SUBMISSION", "This payment was already submitted")
	}
	return nil
}

// publishEvents drains the payment's pending domain events to the bus so
// the balance cache invalidator sees the mutation. The save has already
// happened, so delivery failures do not fail the operation.
func (s *PaymentService) publishEvents(ctx context.Context, p *payment.PartyPayment) {
	if s.eventPublisher == nil {
		return
	}

	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}
