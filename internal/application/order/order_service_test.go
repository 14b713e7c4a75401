package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/shared"
)

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

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var testOrderTenantID = uuid.New()

func createOrderTestParty(t *testing.T) *party.Party {
	t.Helper()
	p, err := party.NewParty(testOrderTenantID, "GOVIND-01", "Govind Dry Fruits")
	require.NoError(t, err)
	return p
}

func sampleItemRequests() []PurchaseOrderItemRequest {
	return []PurchaseOrderItemRequest{
		{
			ItemName:     "Kashmiri Almonds",
			SKU:          "ALM-KAS-500",
			Quantity:     decimal.NewFromInt(10),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(850),
		},
		{
			ItemName:     "Afghani Anjeer",
			Quantity:     decimal.NewFromInt(5),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(1200),
		},
	}
}

// createPendingOrder builds an order as the repository would hand it back,
// with no pending domain events.
func createPendingOrder(t *testing.T, partyID uuid.UUID) *order.PurchaseOrder {
	t.Helper()
	o, err := order.NewPurchaseOrder(testOrderTenantID, "PO-2026-0042", partyID, "Govind Dry Fruits",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), toItemInputs(sampleItemRequests()))
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func newOrderTestService() (*OrderService, *MockOrderRepository, *MockPartyRepository) {
	orderRepo := new(MockOrderRepository)
	partyRepo := new(MockPartyRepository)
	service := NewOrderService(orderRepo, partyRepo)
	return service, orderRepo, partyRepo
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending order with computed totals", func(t *testing.T) {
		service, orderRepo, partyRepo := newOrderTestService()
		pty := createOrderTestParty(t)

		partyRepo.On("FindByIDForTenant", ctx, testOrderTenantID, pty.ID).Return(pty, nil)
		orderRepo.On("GeneratePONumber", ctx, testOrderTenantID).Return("PO-2026-0042", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*order.PurchaseOrder")).Return(nil)

		resp, err := service.Create(ctx, testOrderTenantID, CreatePurchaseOrderRequest{
			PartyID:   pty.ID,
			OrderDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Items:     sampleItemRequests(),
		})

		require.NoError(t, err)
		assert.Equal(t, "PO-2026-0042", resp.PONumber)
		assert.Equal(t, "Govind Dry Fruits", resp.PartyName, "party name is denormalized from the party record")
		assert.Equal(t, string(order.StatusPending), resp.Status)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(14500)))
		assert.True(t, resp.FinalAmount.Equal(decimal.NewFromInt(14500)))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "Kashmiri Almonds", resp.Items[0].ItemName)
		assert.Equal(t, "Afghani Anjeer", resp.Items[1].ItemName)
		orderRepo.AssertExpectations(t)
	})

	t.Run("applies a discount at creation", func(t *testing.T) {
		service, orderRepo, partyRepo := newOrderTestService()
		pty := createOrderTestParty(t)

		partyRepo.On("FindByIDForTenant", ctx, testOrderTenantID, pty.ID).Return(pty, nil)
		orderRepo.On("GeneratePONumber", ctx, testOrderTenantID).Return("PO-2026-0043", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*order.PurchaseOrder")).Return(nil)

		discount := decimal.NewFromInt(500)
		resp, err := service.Create(ctx, testOrderTenantID, CreatePurchaseOrderRequest{
			PartyID:   pty.ID,
			OrderDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Items:     sampleItemRequests(),
			Discount:  &discount,
		})

		require.NoError(t, err)
		assert.True(t, resp.Discount.Equal(decimal.NewFromInt(500)))
		assert.True(t, resp.FinalAmount.Equal(decimal.NewFromInt(14000)))
	})

	t.Run("publishes the created event", func(t *testing.T) {
		service, orderRepo, partyRepo := newOrderTestService()
		publisher := new(MockEventPublisher)
		service.SetEventPublisher(publisher)
		pty := createOrderTestParty(t)

		partyRepo.On("FindByIDForTenant", ctx, testOrderTenantID, pty.ID).Return(pty, nil)
		orderRepo.On("GeneratePONumber", ctx, testOrderTenantID).Return("PO-2026-0044", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*order.PurchaseOrder")).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == order.EventTypePurchaseOrderCreated
		})).Return(nil)

		_, err := service.Create(ctx, testOrderTenantID, CreatePurchaseOrderRequest{
			PartyID:   pty.ID,
			OrderDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Items:     sampleItemRequests(),
		})

		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("refuses an archived party", func(t *testing.T) {
		service, orderRepo, partyRepo := newOrderTestService()
		pty := createOrderTestParty(t)
		require.NoError(t, pty.Archive())

		partyRepo.On("FindByIDForTenant", ctx, testOrderTenantID, pty.ID).Return(pty, nil)

		_, err := service.Create(ctx, testOrderTenantID, CreatePurchaseOrderRequest{
			PartyID:   pty.ID,
			OrderDate: time.Now(),
			Items:     sampleItemRequests(),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ARCHIVED_PARTY", domainErr.Code)
		orderRepo.AssertNotCalled(t, "GeneratePONumber", mock.Anything, mock.Anything)
	})

	t.Run("fails when the party is unknown", func(t *testing.T) {
		service, _, partyRepo := newOrderTestService()
		unknownID := uuid.New()

		partyRepo.On("FindByIDForTenant", ctx, testOrderTenantID, unknownID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(ctx, testOrderTenantID, CreatePurchaseOrderRequest{
			PartyID:   unknownID,
			OrderDate: time.Now(),
			Items:     sampleItemRequests(),
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the item list and publishes the amended event", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		publisher := new(MockEventPublisher)
		service.SetEventPublisher(publisher)
		o := createPendingOrder(t, uuid.New())

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)
		orderRepo.On("SaveWithLock", ctx, o).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == order.EventTypePurchaseOrderAmended
		})).Return(nil)

		items := []PurchaseOrderItemRequest{{
			ItemName:     "Mamra Badam",
			Quantity:     decimal.NewFromInt(2),
			Unit:         "kg",
			PricePerUnit: decimal.NewFromInt(2400),
		}}
		resp, err := service.Update(ctx, testOrderTenantID, o.ID, UpdatePurchaseOrderRequest{Items: &items})

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.True(t, resp.FinalAmount.Equal(decimal.NewFromInt(4800)))
		publisher.AssertExpectations(t)
		orderRepo.AssertExpectations(t)
	})

	t.Run("reschedules the order date", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		o := createPendingOrder(t, uuid.New())

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)
		orderRepo.On("SaveWithLock", ctx, o).Return(nil)

		newDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
		resp, err := service.Update(ctx, testOrderTenantID, o.ID, UpdatePurchaseOrderRequest{OrderDate: &newDate})

		require.NoError(t, err)
		assert.True(t, resp.OrderDate.Equal(newDate))
	})

	t.Run("refuses edits on a received order", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		o := createPendingOrder(t, uuid.New())
		require.NoError(t, o.MarkReceived())
		o.ClearDomainEvents()

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)

		notes := "late edit"
		_, err := service.Update(ctx, testOrderTenantID, o.ID, UpdatePurchaseOrderRequest{Notes: &notes})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestOrderService_MarkReceived(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order becomes received", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		publisher := new(MockEventPublisher)
		service.SetEventPublisher(publisher)
		o := createPendingOrder(t, uuid.New())

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)
		orderRepo.On("SaveWithLock", ctx, o).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == order.EventTypePurchaseOrderReceived
		})).Return(nil)

		resp, err := service.MarkReceived(ctx, testOrderTenantID, o.ID)

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusReceived), resp.Status)
		require.NotNil(t, resp.ReceivedAt)
		publisher.AssertExpectations(t)
	})

	t.Run("receiving twice fails", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		o := createPendingOrder(t, uuid.New())
		require.NoError(t, o.MarkReceived())
		o.ClearDomainEvents()

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)

		_, err := service.MarkReceived(ctx, testOrderTenantID, o.ID)

		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels with a reason and publishes", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		publisher := new(MockEventPublisher)
		service.SetEventPublisher(publisher)
		o := createPendingOrder(t, uuid.New())

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)
		orderRepo.On("SaveWithLock", ctx, o).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == order.EventTypePurchaseOrderCancelled
		})).Return(nil)

		resp, err := service.Cancel(ctx, testOrderTenantID, o.ID, CancelPurchaseOrderRequest{Reason: "vendor out of stock"})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusCancelled), resp.Status)
		assert.Equal(t, "vendor out of stock", resp.CancelReason)
		publisher.AssertExpectations(t)
	})

	t.Run("requires a reason", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		o := createPendingOrder(t, uuid.New())

		orderRepo.On("FindByIDForTenant", ctx, testOrderTenantID, o.ID).Return(o, nil)

		_, err := service.Cancel(ctx, testOrderTenantID, o.ID, CancelPurchaseOrderRequest{})

		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults of newest first", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		o := createPendingOrder(t, uuid.New())

		expectDefaults := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20 &&
				f.OrderBy == "created_at" && f.OrderDir == "desc"
		})
		orderRepo.On("FindAllForTenant", ctx, testOrderTenantID, expectDefaults).Return([]order.PurchaseOrder{*o}, nil)
		orderRepo.On("CountForTenant", ctx, testOrderTenantID, expectDefaults).Return(int64(1), nil)

		rows, total, err := service.List(ctx, testOrderTenantID, PurchaseOrderListFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, rows, 1)
		assert.Equal(t, "PO-2026-0042", rows[0].PONumber)
		assert.Equal(t, 2, rows[0].ItemCount)
	})

	t.Run("narrows by party, status and date window", func(t *testing.T) {
		service, orderRepo, _ := newOrderTestService()
		partyID := uuid.New()
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

		narrowed := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["party_id"] == partyID &&
				f.Filters["status"] == string(order.StatusPending) &&
				f.Filters["date_from"] == from &&
				f.Filters["date_to"] == to
		})
		orderRepo.On("FindAllForTenant", ctx, testOrderTenantID, narrowed).Return([]order.PurchaseOrder{}, nil)
		orderRepo.On("CountForTenant", ctx, testOrderTenantID, narrowed).Return(int64(0), nil)

		_, _, err := service.ListByParty(ctx, testOrderTenantID, partyID, PurchaseOrderListFilter{
			Status:   string(order.StatusPending),
			DateFrom: &from,
			DateTo:   &to,
		})

		require.NoError(t, err)
		orderRepo.AssertExpectations(t)
	})
}

func TestOrderService_GetByPONumber(t *testing.T) {
	ctx := context.Background()
	service, orderRepo, _ := newOrderTestService()
	o := createPendingOrder(t, uuid.New())

	orderRepo.On("FindByPONumber", ctx, testOrderTenantID, "PO-2026-0042").Return(o, nil)

	resp, err := service.GetByPONumber(ctx, testOrderTenantID, "PO-2026-0042")

	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)
}

func TestOrderService_GetStatusSummary(t *testing.T) {
	ctx := context.Background()
	service, orderRepo, _ := newOrderTestService()

	statusFilter := func(status order.Status) any {
		return mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == string(status)
		})
	}
	orderRepo.On("CountForTenant", ctx, testOrderTenantID, statusFilter(order.StatusPending)).Return(int64(4), nil)
	orderRepo.On("CountForTenant", ctx, testOrderTenantID, statusFilter(order.StatusReceived)).Return(int64(11), nil)
	orderRepo.On("CountForTenant", ctx, testOrderTenantID, statusFilter(order.StatusCancelled)).Return(int64(2), nil)

	summary, err := service.GetStatusSummary(ctx, testOrderTenantID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.Pending)
	assert.Equal(t, int64(11), summary.Received)
	assert.Equal(t, int64(2), summary.Cancelled)
	assert.Equal(t, int64(17), summary.Total)
}
