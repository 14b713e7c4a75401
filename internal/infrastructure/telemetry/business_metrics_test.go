package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordOrderCreated(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	bm.RecordOrderCreated(ctx, tenantID)
	bm.RecordOrderCreated(ctx, tenantID)
}

func TestBusinessMetrics_RecordOrderAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	bm.RecordOrderAmount(ctx, tenantID, 10000) // 100.00 INR
	bm.RecordOrderAmount(ctx, tenantID, 50000)
}

func TestBusinessMetrics_RecordOrderWithAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	amount := decimal.NewFromFloat(199.99)

	// Should not panic and record both count and amount
	bm.RecordOrderWithAmount(ctx, tenantID, amount)
}

func TestBusinessMetrics_RecordPayment(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	bm.RecordPayment(ctx, tenantID, "payment", "bank_transfer")
	bm.RecordPayment(ctx, tenantID, "adjustment", "cash")
}

func TestBusinessMetrics_RecordStatementComputed(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	bm.RecordStatementComputed(ctx, tenantID)
}

func TestBusinessMetrics_RecordSkippedRecords(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic; zero and negative counts are ignored
	bm.RecordSkippedRecords(ctx, tenantID, 3)
	bm.RecordSkippedRecords(ctx, tenantID, 0)
	bm.RecordSkippedRecords(ctx, tenantID, -1)
}

func TestBusinessMetrics_RecordOutstandingBalance(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic; overpaid tenants report a negative gauge
	bm.RecordOutstandingBalance(ctx, tenantID, 250000)
	bm.RecordOutstandingBalance(ctx, tenantID, -40000)
}

// Mock implementations for testing periodic collection

type mockTenantProvider struct {
	tenantIDs []uuid.UUID
	err       error
}

func (m *mockTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.tenantIDs, m.err
}

type mockLedgerProvider struct {
	outstanding int64
	openOrders  int64
	err         error
}

func (m *mockLedgerProvider) GetTotalOutstandingPaise(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.outstanding, nil
}

func (m *mockLedgerProvider) GetOpenOrderCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.openOrders, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	tenantID := uuid.New()

	ledgerProvider := &mockLedgerProvider{
		outstanding: 1250000,
		openOrders:  7,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meter,
		Logger:         zap.NewNop(),
		LedgerProvider: ledgerProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{tenantID},
	}

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, tenantProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	bm.Stop()

	// Should complete without error
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No ledger provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no ledger provider
	bm.StartPeriodicCollection(ctx, tenantProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Hour)
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Minute)
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Second)

	bm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
