// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the back office.
// It tracks purchase order creation, payment activity, and vendor ledger health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal  *Counter
	orderAmountTotal   *Counter
	paymentTotal       *Counter
	statementTotal     *Counter
	recordSkippedTotal *Counter

	// Gauge metrics (point-in-time values)
	outstandingBalance *Gauge
	openOrderCount     *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	ledgerProvider LedgerMetricsProvider
}

// LedgerMetricsProvider provides vendor ledger data for periodic metrics
// collection. This interface lets the telemetry layer query ledger state
// without depending on the ledger application layer directly.
type LedgerMetricsProvider interface {
	// GetTotalOutstandingPaise returns the sum of outstanding vendor balances
	// for a tenant, in paise.
	GetTotalOutstandingPaise(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetOpenOrderCount returns the number of purchase orders still pending
	// receipt for a tenant.
	GetOpenOrderCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	LedgerProvider  LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	// Initialize counter metrics
	var err error

	// Purchase order metrics
	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_purchase_order_created_total",
		"Total number of purchase orders created",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_purchase_order_amount_total",
		"Total purchase order amount in paise",
		"{paise}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_payment_total",
		"Total number of party payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Ledger computation metrics
	bm.statementTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_statement_computed_total",
		"Total number of vendor statements computed",
		"{statements}",
	)
	if err != nil {
		return nil, err
	}

	bm.recordSkippedTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_ledger_record_skipped_total",
		"Total number of malformed records skipped during ledger computation",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	// Ledger gauge metrics
	bm.outstandingBalance, err = NewGauge(
		cfg.Meter,
		"backoffice_outstanding_balance_paise",
		"Sum of outstanding vendor balances in paise",
		"{paise}",
	)
	if err != nil {
		return nil, err
	}

	bm.openOrderCount, err = NewGauge(
		cfg.Meter,
		"backoffice_open_purchase_order_count",
		"Number of purchase orders pending receipt",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Purchase Order Metrics
// =============================================================================

// RecordOrderCreated records a purchase order creation event.
// This should be called from the application layer when an order is created.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID) {
	bm.orderCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOrderAmount records the purchase order amount.
// Amount should be in the smallest currency unit (paise).
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, tenantID uuid.UUID, amountPaise int64) {
	bm.orderAmountTotal.Add(ctx, amountPaise,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	bm.RecordOrderCreated(ctx, tenantID)

	// Convert to paise (multiply by 100)
	amountPaise := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, tenantID, amountPaise)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// RecordPayment records a recorded party payment.
// paymentType distinguishes real payments from adjustments.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentType, paymentMethod string) {
	bm.paymentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentType.String(paymentType),
		AttrPaymentMethod.String(paymentMethod),
	)
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordStatementComputed records a completed vendor statement computation.
func (bm *BusinessMetrics) RecordStatementComputed(ctx context.Context, tenantID uuid.UUID) {
	bm.statementTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordSkippedRecords records malformed records skipped during a ledger
// computation. Skips are expected to be rare; a sustained rate points at
// corrupt source data.
func (bm *BusinessMetrics) RecordSkippedRecords(ctx context.Context, tenantID uuid.UUID, count int64) {
	if count <= 0 {
		return
	}
	bm.recordSkippedTotal.Add(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOutstandingBalance records the current total outstanding balance for a tenant.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOutstandingBalance(ctx context.Context, tenantID uuid.UUID, paise int64) {
	bm.outstandingBalance.Record(ctx, paise,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOpenOrderCount records the number of purchase orders pending receipt.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenOrderCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.openOrderCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects ledger metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectLedgerMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectLedgerMetrics(ctx, tenantProvider)
		}
	}
}

// collectLedgerMetrics collects ledger gauge metrics for all tenants.
func (bm *BusinessMetrics) collectLedgerMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.ledgerProvider == nil {
		bm.logger.Debug("No ledger provider configured, skipping ledger metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantLedgerMetrics(ctx, tenantID)
	}
}

// collectTenantLedgerMetrics collects ledger metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantLedgerMetrics(ctx context.Context, tenantID uuid.UUID) {
	outstanding, err := bm.ledgerProvider.GetTotalOutstandingPaise(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding balance for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOutstandingBalance(ctx, tenantID, outstanding)
	}

	openOrders, err := bm.ledgerProvider.GetOpenOrderCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get open order count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOpenOrderCount(ctx, tenantID, openOrders)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrPaymentType = attribute.Key("payment_type")
)
