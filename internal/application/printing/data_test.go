package printing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/govindji/backoffice/internal/application/ledger"
	"github.com/govindji/backoffice/internal/domain/ledger"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPartyRepository is a mock implementation of party.Repository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*party.Party, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]party.Party, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status party.PartyStatus, filter shared.Filter) ([]party.Party, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Party), args.Error(1)
}

func (m *MockPartyRepository) Save(ctx context.Context, p *party.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPartyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartyRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, poNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, partyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAllByParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByPartyAndDateRange(ctx context.Context, tenantID, partyID uuid.UUID, from, to time.Time) ([]order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, partyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.Status, filter shared.Filter) ([]order.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.PurchaseOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.PurchaseOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, partyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountPendingByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, partyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GeneratePONumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PartyPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, partyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllActiveByParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPartyAndDateRange(ctx context.Context, tenantID, partyID uuid.UUID, from, to time.Time) ([]payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, partyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByType(ctx context.Context, tenantID uuid.UUID, paymentType payment.Type, filter shared.Filter) ([]payment.PartyPayment, error) {
	args := m.Called(ctx, tenantID, paymentType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PartyPayment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.PartyPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, p *payment.PartyPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) CountByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, partyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) ExistsByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, paymentNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// stubOrderSource and stubPaymentSource feed canned snapshots into a real
// StatementService so provider tests exercise the same reconciliation path
// production uses.
type stubOrderSource struct {
	orders []ledger.OrderSnapshot
	err    error
}

func (s *stubOrderSource) FetchOrders(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.OrderSnapshot, error) {
	return s.orders, s.err
}

type stubPaymentSource struct {
	payments []ledger.PaymentSnapshot
	err      error
}

func (s *stubPaymentSource) FetchPayments(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.PaymentSnapshot, error) {
	return s.payments, s.err
}

func testParty(t *testing.T, tenantID uuid.UUID) *party.Party {
	t.Helper()
	pty, err := party.NewParty(tenantID, "GJDF-0042", "Mehta Traders")
	require.NoError(t, err)
	pty.ContactName = "Ramesh Mehta"
	pty.Phone = "+91 98250 11111"
	pty.Address = "14 Khadia Char Rasta"
	pty.City = "Ahmedabad"
	pty.State = "Gujarat"
	pty.PinCode = "380001"
	pty.GSTIN = "24ABCDE1234F1Z5"
	pty.CreditDays = 30
	return pty
}

func onDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func debitEntry(date time.Time, amount int64, poNumber string) ledgerapp.LedgerEntryResponse {
	return ledgerapp.LedgerEntryResponse{
		Kind:        string(ledger.EntryKindDebit),
		Date:        date,
		Amount:      decimal.NewFromInt(amount),
		Description: "Purchase Order: " + poNumber,
		Reference:   poNumber,
	}
}

func creditEntry(date time.Time, amount int64, adjustment bool) ledgerapp.LedgerEntryResponse {
	description := "Payment"
	if adjustment {
		description = "Adjustment"
	}
	return ledgerapp.LedgerEntryResponse{
		Kind:        string(ledger.EntryKindCredit),
		Date:        date,
		Amount:      decimal.NewFromInt(amount),
		Adjustment:  adjustment,
		Description: description,
	}
}

func TestBuildStatementData(t *testing.T) {
	tenantID := uuid.New()
	pty := testParty(t, tenantID)

	stmt := &ledgerapp.StatementResponse{
		PartyID:   pty.ID,
		PartyName: pty.Name,
		Entries: []ledgerapp.LedgerEntryResponse{
			debitEntry(onDate(t, "2026-01-10"), 5000, "PO-1"),
			creditEntry(onDate(t, "2026-01-20"), 2000, false),
			creditEntry(onDate(t, "2026-02-05"), 500, true),
			debitEntry(onDate(t, "2026-02-10"), 3000, "PO-2"),
			creditEntry(onDate(t, "2026-03-01"), 1000, false),
		},
		Balance: decimal.NewFromInt(5000),
	}

	t.Run("no window shows the full history", func(t *testing.T) {
		data := buildStatementData(pty, stmt, DataOptions{})

		require.Len(t, data.Rows, 5)
		assert.True(t, data.PeriodOpening.IsZero())

		runnings := make([]string, len(data.Rows))
		for i, row := range data.Rows {
			runnings[i] = row.Running.String()
		}
		assert.Equal(t, []string{"5000", "3000", "3000", "6000", "5000"}, runnings)

		assert.True(t, data.Rows[2].Adjustment)
		assert.Nil(t, data.Rows[2].Debit)
		require.NotNil(t, data.Rows[2].Credit)
		assert.True(t, data.Rows[2].Credit.Equal(decimal.NewFromInt(500)))

		assert.True(t, data.TotalDebits.Equal(decimal.NewFromInt(8000)))
		assert.True(t, data.TotalCredits.Equal(decimal.NewFromInt(3000)))
		assert.True(t, data.TotalAdjustments.Equal(decimal.NewFromInt(500)))
		assert.True(t, data.HasAdjustments)

		// Over the full history the closing balance must agree with the
		// reconciled statement balance.
		assert.True(t, data.ClosingBalance.Equal(stmt.Balance))
	})

	t.Run("window carries the prior balance into the opening line", func(t *testing.T) {
		from := onDate(t, "2026-02-01")
		to := onDate(t, "2026-02-28")

		data := buildStatementData(pty, stmt, DataOptions{PeriodFrom: &from, PeriodTo: &to})

		assert.True(t, data.PeriodOpening.Equal(decimal.NewFromInt(3000)))
		require.Len(t, data.Rows, 2)
		assert.True(t, data.Rows[0].Adjustment)
		assert.True(t, data.Rows[0].Running.Equal(decimal.NewFromInt(3000)))
		assert.True(t, data.Rows[1].Running.Equal(decimal.NewFromInt(6000)))
		assert.True(t, data.TotalDebits.Equal(decimal.NewFromInt(3000)))
		assert.True(t, data.TotalCredits.IsZero())
		assert.True(t, data.ClosingBalance.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("adjustments before the window do not move the opening", func(t *testing.T) {
		from := onDate(t, "2026-02-08")

		data := buildStatementData(pty, stmt, DataOptions{PeriodFrom: &from})

		// 5000 debit - 2000 payment; the 500 adjustment is excluded.
		assert.True(t, data.PeriodOpening.Equal(decimal.NewFromInt(3000)))
		require.Len(t, data.Rows, 2)
		assert.True(t, data.Rows[1].Running.Equal(decimal.NewFromInt(5000)))
		assert.True(t, data.ClosingBalance.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("boundary dates are inclusive", func(t *testing.T) {
		from := onDate(t, "2026-01-10")
		to := onDate(t, "2026-03-01")

		data := buildStatementData(pty, stmt, DataOptions{PeriodFrom: &from, PeriodTo: &to})

		require.Len(t, data.Rows, 5)
		assert.True(t, data.PeriodOpening.IsZero())
	})

	t.Run("empty history produces an empty statement", func(t *testing.T) {
		data := buildStatementData(pty, &ledgerapp.StatementResponse{}, DataOptions{})

		assert.Empty(t, data.Rows)
		assert.True(t, data.ClosingBalance.IsZero())
		assert.False(t, data.HasAdjustments)
	})

	t.Run("maps the party block", func(t *testing.T) {
		data := buildStatementData(pty, stmt, DataOptions{})

		assert.Equal(t, "Mehta Traders", data.Party.Name)
		assert.Equal(t, "GJDF-0042", data.Party.Code)
		assert.Equal(t, "14 Khadia Char Rasta, Ahmedabad, Gujarat 380001", data.Party.Address)
		assert.Equal(t, 30, data.Party.CreditDays)
	})
}

func TestStatementDataProviderLoad(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("builds the statement from both histories", func(t *testing.T) {
		pty := testParty(t, tenantID)
		partyRepo := new(MockPartyRepository)
		partyRepo.On("FindByIDForTenant", ctx, tenantID, pty.ID).Return(pty, nil)

		amount := decimal.NewFromInt(1200)
		created := onDate(t, "2026-01-05")
		statements := ledgerapp.NewStatementService(partyRepo,
			&stubOrderSource{orders: []ledger.OrderSnapshot{{
				ID:          uuid.New(),
				PONumber:    "PO-9",
				OrderDate:   onDate(t, "2026-01-05"),
				CreatedAt:   &created,
				Status:      ledger.OrderStatusPending,
				FinalAmount: &amount,
			}}},
			&stubPaymentSource{payments: []ledger.PaymentSnapshot{{
				ID:          uuid.New(),
				Type:        ledger.PaymentTypePayment,
				Amount:      &amount,
				PaymentDate: onDate(t, "2026-01-15"),
				CreatedAt:   &created,
			}}},
		)

		provider := NewStatementDataProvider(partyRepo, statements)
		loaded, err := provider.Load(ctx, tenantID, pty.ID, DataOptions{})

		require.NoError(t, err)
		assert.Equal(t, "GJDF-0042", loaded.Number)

		data, ok := loaded.Data.(*StatementData)
		require.True(t, ok)
		require.Len(t, data.Rows, 2)
		assert.True(t, data.ClosingBalance.IsZero())
		assert.Empty(t, data.Warnings)
	})

	t.Run("propagates a missing party", func(t *testing.T) {
		partyRepo := new(MockPartyRepository)
		partyID := uuid.New()
		partyRepo.On("FindByIDForTenant", ctx, tenantID, partyID).Return(nil, shared.ErrNotFound)

		statements := ledgerapp.NewStatementService(partyRepo, &stubOrderSource{}, &stubPaymentSource{})
		provider := NewStatementDataProvider(partyRepo, statements)

		_, err := provider.Load(ctx, tenantID, partyID, DataOptions{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPurchaseOrderDataProviderLoad(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newOrder := func(t *testing.T, partyID uuid.UUID) *order.PurchaseOrder {
		t.Helper()
		o, err := order.NewPurchaseOrder(tenantID, "PO-2026-0007", partyID, "Mehta Traders", onDate(t, "2026-03-12"), []order.ItemInput{
			{ItemName: "Almonds", Quantity: decimal.NewFromInt(10), Unit: "kg", PricePerUnit: decimal.NewFromInt(900)},
			{ItemName: "Cashews", Quantity: decimal.NewFromInt(5), Unit: "kg", PricePerUnit: decimal.NewFromInt(1100)},
			{ItemName: "Raisins", Quantity: decimal.NewFromInt(8), Unit: "kg", PricePerUnit: decimal.NewFromInt(400)},
		})
		require.NoError(t, err)
		return o
	}

	t.Run("maps the order with items in position order", func(t *testing.T) {
		pty := testParty(t, tenantID)
		o := newOrder(t, pty.ID)
		// Persistence does not guarantee slice order; the provider re-sorts.
		o.Items[0], o.Items[2] = o.Items[2], o.Items[0]

		orderRepo := new(MockOrderRepository)
		partyRepo := new(MockPartyRepository)
		orderRepo.On("FindByIDForTenant", ctx, tenantID, o.ID).Return(o, nil)
		partyRepo.On("FindByIDForTenant", ctx, tenantID, pty.ID).Return(pty, nil)

		provider := NewPurchaseOrderDataProvider(orderRepo, partyRepo)
		loaded, err := provider.Load(ctx, tenantID, o.ID, DataOptions{})

		require.NoError(t, err)
		assert.Equal(t, "PO-2026-0007", loaded.Number)

		data, ok := loaded.Data.(*PurchaseOrderData)
		require.True(t, ok)
		require.Len(t, data.Order.Items, 3)
		assert.Equal(t, []string{"Almonds", "Cashews", "Raisins"}, []string{
			data.Order.Items[0].ItemName,
			data.Order.Items[1].ItemName,
			data.Order.Items[2].ItemName,
		})
		assert.Equal(t, 1, data.Order.Items[0].Index)
		assert.Equal(t, "Mehta Traders", data.Party.Name)
		assert.Equal(t, "PENDING", data.Order.Status)
		assert.True(t, data.Order.FinalAmount.Equal(o.FinalAmount))
	})

	t.Run("falls back to the denormalized party name", func(t *testing.T) {
		partyID := uuid.New()
		o := newOrder(t, partyID)

		orderRepo := new(MockOrderRepository)
		partyRepo := new(MockPartyRepository)
		orderRepo.On("FindByIDForTenant", ctx, tenantID, o.ID).Return(o, nil)
		partyRepo.On("FindByIDForTenant", ctx, tenantID, partyID).Return(nil, shared.ErrNotFound)

		provider := NewPurchaseOrderDataProvider(orderRepo, partyRepo)
		loaded, err := provider.Load(ctx, tenantID, o.ID, DataOptions{})

		require.NoError(t, err)
		data := loaded.Data.(*PurchaseOrderData)
		assert.Equal(t, "Mehta Traders", data.Party.Name)
		assert.Empty(t, data.Party.Code)
	})

	t.Run("propagates a missing order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		partyRepo := new(MockPartyRepository)
		orderID := uuid.New()
		orderRepo.On("FindByIDForTenant", ctx, tenantID, orderID).Return(nil, shared.ErrNotFound)

		provider := NewPurchaseOrderDataProvider(orderRepo, partyRepo)
		_, err := provider.Load(ctx, tenantID, orderID, DataOptions{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentReceiptDataProviderLoad(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newPayment := func(t *testing.T, partyID uuid.UUID, paymentType payment.Type, method payment.Method) *payment.PartyPayment {
		t.Helper()
		pay, err := payment.NewPartyPayment(
			tenantID,
			"PAY-2026-0031",
			partyID,
			"Mehta Traders",
			paymentType,
			valueobject.NewMoneyINR(decimal.NewFromInt(7500)),
			method,
			onDate(t, "2026-04-02"),
		)
		require.NoError(t, err)
		return pay
	}

	t.Run("maps a bank transfer payment", func(t *testing.T) {
		pty := testParty(t, tenantID)
		pay := newPayment(t, pty.ID, payment.TypePayment, payment.MethodBankTransfer)

		paymentRepo := new(MockPaymentRepository)
		partyRepo := new(MockPartyRepository)
		paymentRepo.On("FindByIDForTenant", ctx, tenantID, pay.ID).Return(pay, nil)
		partyRepo.On("FindByIDForTenant", ctx, tenantID, pty.ID).Return(pty, nil)

		provider := NewPaymentReceiptDataProvider(paymentRepo, partyRepo)
		loaded, err := provider.Load(ctx, tenantID, pay.ID, DataOptions{})

		require.NoError(t, err)
		assert.Equal(t, "PAY-2026-0031", loaded.Number)

		data, ok := loaded.Data.(*PaymentReceiptData)
		require.True(t, ok)
		assert.Equal(t, "Payment Receipt", data.Payment.TypeLabel)
		assert.Equal(t, "Bank Transfer", data.Payment.MethodLabel)
		assert.False(t, data.Payment.Adjustment)
		assert.False(t, data.Payment.Voided)
		assert.True(t, data.Payment.Amount.Equal(decimal.NewFromInt(7500)))
		assert.Equal(t, "24ABCDE1234F1Z5", data.Party.GSTIN)
	})

	t.Run("labels adjustments as adjustment memos", func(t *testing.T) {
		pty := testParty(t, tenantID)
		pay := newPayment(t, pty.ID, payment.TypeAdjustment, payment.MethodCash)

		paymentRepo := new(MockPaymentRepository)
		partyRepo := new(MockPartyRepository)
		paymentRepo.On("FindByIDForTenant", ctx, tenantID, pay.ID).Return(pay, nil)
		partyRepo.On("FindByIDForTenant", ctx, tenantID, pty.ID).Return(pty, nil)

		provider := NewPaymentReceiptDataProvider(paymentRepo, partyRepo)
		loaded, err := provider.Load(ctx, tenantID, pay.ID, DataOptions{})

		require.NoError(t, err)
		data := loaded.Data.(*PaymentReceiptData)
		assert.Equal(t, "Adjustment Memo", data.Payment.TypeLabel)
		assert.True(t, data.Payment.Adjustment)
	})

	t.Run("marks voided payments", func(t *testing.T) {
		partyID := uuid.New()
		pay := newPayment(t, partyID, payment.TypePayment, payment.MethodUPI)
		pay.Status = payment.StatusVoided

		paymentRepo := new(MockPaymentRepository)
		partyRepo := new(MockPartyRepository)
		paymentRepo.On("FindByIDForTenant", ctx, tenantID, pay.ID).Return(pay, nil)
		partyRepo.On("FindByIDForTenant", ctx, tenantID, partyID).Return(nil, shared.ErrNotFound)

		provider := NewPaymentReceiptDataProvider(paymentRepo, partyRepo)
		loaded, err := provider.Load(ctx, tenantID, pay.ID, DataOptions{})

		require.NoError(t, err)
		data := loaded.Data.(*PaymentReceiptData)
		assert.True(t, data.Payment.Voided)
		// Party record gone: the receipt still prints with the stored name.
		assert.Equal(t, "Mehta Traders", data.Party.Name)
	})
}

func TestMethodLabel(t *testing.T) {
	assert.Equal(t, "Cash", methodLabel(payment.MethodCash))
	assert.Equal(t, "Bank Transfer", methodLabel(payment.MethodBankTransfer))
	assert.Equal(t, "UPI", methodLabel(payment.MethodUPI))
	assert.Equal(t, "Cheque", methodLabel(payment.MethodCheque))
	assert.Equal(t, "NEFT", methodLabel(payment.Method("NEFT")))
}

func TestFormatPartyAddress(t *testing.T) {
	tenantID := uuid.New()

	full := testParty(t, tenantID)
	assert.Equal(t, "14 Khadia Char Rasta, Ahmedabad, Gujarat 380001", formatPartyAddress(full))

	partial, err := party.NewParty(tenantID, "GJDF-0001", "Surat Nuts")
	require.NoError(t, err)
	partial.City = "Surat"
	assert.Equal(t, "Surat", formatPartyAddress(partial))

	bare, err := party.NewParty(tenantID, "GJDF-0002", "Bare Party")
	require.NoError(t, err)
	assert.Equal(t, "", formatPartyAddress(bare))
}

func TestDataProviderRegistry(t *testing.T) {
	t.Run("rejects unregistered document types", func(t *testing.T) {
		registry := NewDataProviderRegistry()

		_, err := registry.Load(context.Background(), uuid.New(), printing.DocTypeStatement, uuid.New(), DataOptions{})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("lists registered types sorted", func(t *testing.T) {
		registry := NewDataProviderRegistry()
		registry.Register(&stubDataProvider{docType: printing.DocTypeStatement})
		registry.Register(&stubDataProvider{docType: printing.DocTypePaymentReceipt})

		types := registry.RegisteredTypes()

		assert.Equal(t, []printing.DocType{printing.DocTypePaymentReceipt, printing.DocTypeStatement}, types)
	})
}
