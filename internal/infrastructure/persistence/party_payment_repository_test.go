package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPartyPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPartyPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPartyPaymentRepository(gormDB), mock, mockDB
}

func newTestPayment(t *testing.T, tenantID uuid.UUID) *payment.PartyPayment {
	t.Helper()
	p, err := payment.NewPartyPayment(
		tenantID,
		"PAY-2026-00001",
		uuid.New(),
		"Mehta Traders",
		payment.TypePayment,
		valueobject.NewMoneyINR(decimal.NewFromInt(5000)),
		payment.MethodBankTransfer,
		time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return p
}

func TestGormPartyPaymentRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds payment within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "payment_number", "party_name", "type", "amount", "method", "status"}).
			AddRow(paymentID, tenantID, "PAY-2026-00007", "Mehta Traders", "PAYMENT", decimal.NewFromInt(5000), "BANK_TRANSFER", "RECORDED")

		mock.ExpectQuery(`SELECT \* FROM "party_payments" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, paymentID, 1).
			WillReturnRows(rows)

		p, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		assert.NoError(t, err)
		assert.NotNil(t, p)
		assert.Equal(t, "PAY-2026-00007", p.PaymentNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "party_payments" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		p, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		assert.Nil(t, p)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPartyPaymentRepository_FindAllActiveByParty(t *testing.T) {
	t.Run("selects only recorded payments in creation order", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		partyID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "party_id", "payment_number", "type", "amount", "status"}).
			AddRow(uuid.New(), tenantID, partyID, "PAY-2026-00001", "PAYMENT", decimal.NewFromInt(5000), "RECORDED").
			AddRow(uuid.New(), tenantID, partyID, "PAY-2026-00002", "ADJUSTMENT", decimal.NewFromInt(250), "RECORDED")

		mock.ExpectQuery(`SELECT \* FROM "party_payments" WHERE tenant_id = \$1 AND party_id = \$2 AND status = \$3 ORDER BY created_at ASC, id ASC`).
			WithArgs(tenantID, partyID, payment.StatusRecorded).
			WillReturnRows(rows)

		payments, err := repo.FindAllActiveByParty(context.Background(), tenantID, partyID)

		assert.NoError(t, err)
		assert.Len(t, payments, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPartyPaymentRepository_Save(t *testing.T) {
	t.Run("saves payment and clears events", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		p := newTestPayment(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "party_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Save(context.Background(), p)

		assert.NoError(t, err)
		assert.Empty(t, p.GetDomainEvents())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPartyPaymentRepository_SaveWithLock(t *testing.T) {
	t.Run("updates row holding the previous version", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		p := newTestPayment(t, uuid.New())
		require.NoError(t, p.Void("duplicate entry")) // bumps version to 2

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "party_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), p)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports concurrent modification when no row matches", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		p := newTestPayment(t, uuid.New())
		require.NoError(t, p.Void("duplicate entry"))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "party_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), p)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPartyPaymentRepository_GeneratePaymentNumber(t *testing.T) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PAY-%d-", year)

	t.Run("starts at 00001 when no payments exist", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "party_payments" WHERE tenant_id = \$1 AND payment_number LIKE \$2 ORDER BY payment_number DESC.* LIMIT .*`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "party_payments" WHERE tenant_id = \$1 AND payment_number = \$2`).
			WithArgs(tenantID, prefix+"00001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GeneratePaymentNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments past the highest existing number", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "payment_number"}).
			AddRow(uuid.New(), tenantID, prefix+"00041")

		mock.ExpectQuery(`SELECT \* FROM "party_payments" WHERE tenant_id = \$1 AND payment_number LIKE \$2 ORDER BY payment_number DESC.* LIMIT .*`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(rows)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "party_payments" WHERE tenant_id = \$1 AND payment_number = \$2`).
			WithArgs(tenantID, prefix+"00042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GeneratePaymentNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("walks past a collision", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "payment_number"}).
			AddRow(uuid.New(), tenantID, prefix+"00041")

		mock.ExpectQuery(`SELECT \* FROM "party_payments" WHERE tenant_id = \$1 AND payment_number LIKE \$2 ORDER BY payment_number DESC.* LIMIT .*`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(rows)

		// Candidate 00042 is already taken; the generator steps to 00043.
		mock.ExpectQuery(`SELECT count\(\*\) FROM "party_payments" WHERE tenant_id = \$1 AND payment_number = \$2`).
			WithArgs(tenantID, prefix+"00042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(`SELECT count\(\*\) FROM "party_payments" WHERE tenant_id = \$1 AND payment_number = \$2`).
			WithArgs(tenantID, prefix+"00043").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GeneratePaymentNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00043", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPartyPaymentRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements payment.Repository interface", func(t *testing.T) {
		repo, _, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		var _ payment.Repository = repo
	})
}
