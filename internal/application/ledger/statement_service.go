package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/ledger"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// StatementService builds reconciled vendor statements. The two source
// histories are fetched in parallel and joined; a statement is never
// computed from one side alone.
type StatementService struct {
	partyRepo     party.Repository
	orderSource   OrderSource
	paymentSource PaymentSource
	balanceCache  BalanceCache
}

// NewStatementService creates a new StatementService
func NewStatementService(partyRepo party.Repository, orders OrderSource, payments PaymentSource) *StatementService {
	return &StatementService{
		partyRepo:     partyRepo,
		orderSource:   orders,
		paymentSource: payments,
	}
}

// SetBalanceCache sets the read-through cache for party balances
func (s *StatementService) SetBalanceCache(cache BalanceCache) {
	s.balanceCache = cache
}

// BuildStatement fetches both histories for a party, reconciles them, and
// returns the statement. Record-level problems are reported in the result's
// Warnings; a failed fetch on either side fails the whole request with one
// aggregate error.
func (s *StatementService) BuildStatement(ctx context.Context, tenantID, partyID uuid.UUID, filter StatementFilter) (*StatementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "build")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartyID, partyID.String(),
	)

	pty, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		response StatementResponse
		buildErr error
	)
	labels := telemetry.OperationLabels("build_statement", map[string]string{
		telemetry.ProfilingLabelTenantID: tenantID.String(),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
		orders, payments, err := s.fetchBoth(c, tenantID, partyID)
		if err != nil {
			telemetry.RecordError(span, err)
			buildErr = err
			return
		}

		orders = filterOrdersByDate(orders, filter)
		payments = filterPaymentsByDate(payments, filter)

		stmt := ledger.Compute(orders, payments)
		response = ToStatementResponse(pty.ID, pty.Name, stmt)
	})
	if buildErr != nil {
		return nil, buildErr
	}

	telemetry.AddEvent(span, "statement_built",
		"entry_count", len(response.Entries),
		"warning_count", len(response.Warnings),
		telemetry.SpanAttrAmount, response.Balance.String(),
	)

	return &response, nil
}

// GetBalance returns the party's outstanding balance over its full history,
// read through the cache when one is configured.
func (s *StatementService) GetBalance(ctx context.Context, tenantID, partyID uuid.UUID) (decimal.Decimal, error) {
	if s.balanceCache != nil {
		if balance, ok, err := s.balanceCache.Get(ctx, tenantID, partyID); err == nil && ok {
			return balance, nil
		}
	}

	orders, payments, err := s.fetchBoth(ctx, tenantID, partyID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := ledger.CalculateBalance(orders, payments)

	if s.balanceCache != nil {
		// Best effort: a missed write only costs the next read a recompute
		_ = s.balanceCache.Set(ctx, tenantID, partyID, balance)
	}

	return balance, nil
}

// fetchBoth requests both histories in parallel and joins them. If either
// side fails the pair is aborted with a single aggregate error; a statement
// over a partial snapshot is never produced.
func (s *StatementService) fetchBoth(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.OrderSnapshot, []ledger.PaymentSnapshot, error) {
	var (
		wg         sync.WaitGroup
		orders     []ledger.OrderSnapshot
		payments   []ledger.PaymentSnapshot
		orderErr   error
		paymentErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		orders, orderErr = s.orderSource.FetchOrders(ctx, tenantID, partyID)
	}()
	go func() {
		defer wg.Done()
		payments, paymentErr = s.paymentSource.FetchPayments(ctx, tenantID, partyID)
	}()
	wg.Wait()

	if orderErr != nil || paymentErr != nil {
		return nil, nil, sourceUnavailableError(orderErr, paymentErr)
	}

	return orders, payments, nil
}

// sourceUnavailableError folds one or both fetch failures into a single
// error that matches shared.ErrSourceUnavailable under errors.Is.
func sourceUnavailableError(orderErr, paymentErr error) error {
	parts := make([]string, 0, 2)
	if orderErr != nil {
		parts = append(parts, "orders: "+orderErr.Error())
	}
	if paymentErr != nil {
		parts = append(parts, "payments: "+paymentErr.Error())
	}
	return fmt.Errorf("%w: %s", shared.ErrSourceUnavailable, strings.Join(parts, "; "))
}

// filterOrdersByDate keeps orders whose business date falls in the window
func filterOrdersByDate(orders []ledger.OrderSnapshot, filter StatementFilter) []ledger.OrderSnapshot {
	if filter.IsZero() {
		return orders
	}
	filtered := make([]ledger.OrderSnapshot, 0, len(orders))
	for _, o := range orders {
		if inDateWindow(o.OrderDate, filter) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// filterPaymentsByDate keeps payments whose business date falls in the window
func filterPaymentsByDate(payments []ledger.PaymentSnapshot, filter StatementFilter) []ledger.PaymentSnapshot {
	if filter.IsZero() {
		return payments
	}
	filtered := make([]ledger.PaymentSnapshot, 0, len(payments))
	for _, p := range payments {
		if inDateWindow(p.PaymentDate, filter) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// inDateWindow checks a date against the filter's inclusive bounds
func inDateWindow(date time.Time, filter StatementFilter) bool {
	if filter.DateFrom != nil && date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && date.After(*filter.DateTo) {
		return false
	}
	return true
}
