package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/govindji/backoffice/internal/infrastructure/persistence"
)

// TestPartyPaymentRepository_Integration exercises payment persistence
// against a real PostgreSQL database.
func TestPartyPaymentRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormPartyPaymentRepository(testDB.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	partyID := uuid.New()
	payDate := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	newPayment := func(t *testing.T, number string, amount int64, payType payment.Type) *payment.PartyPayment {
		t.Helper()
		p, err := payment.NewPartyPayment(
			tenantID, number, partyID, "Kaju Traders",
			payType, valueobject.NewMoneyINR(decimal.NewFromInt(amount)),
			payment.MethodBankTransfer, payDate,
		)
		require.NoError(t, err)
		return p
	}

	t.Run("Save and FindByID", func(t *testing.T) {
		p := newPayment(t, "PAY-2025-00001", 5000, payment.TypePayment)
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "PAY-2025-00001", found.PaymentNumber)
		assert.True(t, found.Amount.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, payment.StatusRecorded, found.Status)
	})

	t.Run("Duplicate payment number within tenant is rejected", func(t *testing.T) {
		dup := newPayment(t, "PAY-2025-00001", 100, payment.TypePayment)
		assert.Error(t, repo.Save(ctx, dup))
	})

	t.Run("Void persists with reason", func(t *testing.T) {
		p := newPayment(t, "PAY-2025-00002", 1200, payment.TypePayment)
		require.NoError(t, repo.Save(ctx, p))

		require.NoError(t, p.Void("entered against wrong party"))
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusVoided, found.Status)
		assert.Equal(t, "entered against wrong party", found.VoidReason)
		require.NotNil(t, found.VoidedAt)
	})

	t.Run("FindAllActiveByParty excludes voided payments", func(t *testing.T) {
		active, err := repo.FindAllActiveByParty(ctx, tenantID, partyID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "PAY-2025-00001", active[0].PaymentNumber)
	})

	t.Run("FindByType separates adjustments", func(t *testing.T) {
		adj := newPayment(t, "PAY-2025-00003", 250, payment.TypeAdjustment)
		require.NoError(t, repo.Save(ctx, adj))

		adjustments, err := repo.FindByType(ctx, tenantID, payment.TypeAdjustment, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, adjustments, 1)
		assert.Equal(t, "PAY-2025-00003", adjustments[0].PaymentNumber)
	})

	t.Run("FindByPartyAndDateRange is tenant scoped", func(t *testing.T) {
		from := payDate.Add(-time.Hour)
		to := payDate.Add(time.Hour)

		payments, err := repo.FindByPartyAndDateRange(ctx, tenantID, partyID, from, to)
		require.NoError(t, err)
		assert.Len(t, payments, 3)

		payments, err = repo.FindByPartyAndDateRange(ctx, uuid.New(), partyID, from, to)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("GeneratePaymentNumber produces unique numbers", func(t *testing.T) {
		first, err := repo.GeneratePaymentNumber(ctx, tenantID)
		require.NoError(t, err)
		assert.NotEmpty(t, first)

		p := newPayment(t, first, 10, payment.TypePayment)
		require.NoError(t, repo.Save(ctx, p))

		second, err := repo.GeneratePaymentNumber(ctx, tenantID)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}
