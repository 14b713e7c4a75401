package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// purchaseOrderSort lists the order columns exposed for sorting.
var purchaseOrderSort = newSortSpec("order_date",
	"po_number", "party_id", "party_name", "subtotal", "discount",
	"final_amount", "status", "received_at", "cancelled_at",
)

// GormPurchaseOrderRepository implements order.Repository using GORM
type GormPurchaseOrderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPurchaseOrderRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	var o order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.PurchaseOrder, error) {
	var o order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByPONumber finds a purchase order by PO number for a tenant
func (r *GormPurchaseOrderRepository) FindByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*order.PurchaseOrder, error) {
	var o order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("tenant_id = ? AND po_number = ?", tenantID, poNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAllForTenant finds all purchase orders for a tenant with filtering
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).
			Preload("Items", itemOrder).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByParty finds purchase orders for a party with filtering
func (r *GormPurchaseOrderRepository) FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).
			Preload("Items", itemOrder).
			Where("tenant_id = ? AND party_id = ?", tenantID, partyID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAllByParty finds every purchase order for a party, items included,
// ordered by creation time. This is the ledger's order history fetch.
func (r *GormPurchaseOrderRepository) FindAllByParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("tenant_id = ? AND party_id = ?", tenantID, partyID).
		Order("created_at ASC, id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByPartyAndDateRange finds a party's orders whose order date falls in [from, to]
func (r *GormPurchaseOrderRepository) FindByPartyAndDateRange(ctx context.Context, tenantID, partyID uuid.UUID, from, to time.Time) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("tenant_id = ? AND party_id = ? AND order_date >= ? AND order_date <= ?", tenantID, partyID, from, to).
		Order("order_date ASC, created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds purchase orders by status for a tenant
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.Status, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).
			Preload("Items", itemOrder).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, o *order.PurchaseOrder) error {
	events := o.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Save the order without auto-saving associations
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}
		if err := r.reconcileItems(tx, o); err != nil {
			return err
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	o.ClearDomainEvents()
	return nil
}

// SaveWithLock saves with optimistic locking. The aggregate increments its
// version on every mutation, so the row must still hold the previous one.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, o *order.PurchaseOrder) error {
	events := o.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&order.PurchaseOrder{}).
			Where("id = ? AND tenant_id = ? AND version = ?", o.ID, o.TenantID, o.Version-1).
			Updates(map[string]interface{}{
				"order_date":    o.OrderDate,
				"subtotal":      o.Subtotal,
				"discount":      o.Discount,
				"final_amount":  o.FinalAmount,
				"status":        o.Status,
				"notes":         o.Notes,
				"received_at":   o.ReceivedAt,
				"cancelled_at":  o.CancelledAt,
				"cancel_reason": o.CancelReason,
				"version":       o.Version,
				"updated_at":    o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		if err := r.reconcileItems(tx, o); err != nil {
			return err
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	o.ClearDomainEvents()
	return nil
}

// reconcileItems deletes removed line items and saves the current ones.
// ReplaceItems rebuilds lines with fresh IDs, so removed lines are simply
// the ones whose IDs are no longer present.
func (r *GormPurchaseOrderRepository) reconcileItems(tx *gorm.DB, o *order.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
			Delete(&order.Item{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.Item{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteForTenant deletes a purchase order and its items for a tenant
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&order.PurchaseOrder{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("order_id = ?", id).Delete(&order.Item{}).Error
	})
}

// CountForTenant counts purchase orders for a tenant with optional filters
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByParty counts purchase orders for a party
func (r *GormPurchaseOrderRepository) CountByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.PurchaseOrder{}).
		Where("tenant_id = ? AND party_id = ?", tenantID, partyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountPendingByParty counts PENDING orders for a party
func (r *GormPurchaseOrderRepository) CountPendingByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.PurchaseOrder{}).
		Where("tenant_id = ? AND party_id = ? AND status = ?", tenantID, partyID, order.StatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByPONumber checks if a PO number exists for a tenant
func (r *GormPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.PurchaseOrder{}).
		Where("tenant_id = ? AND po_number = ?", tenantID, poNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GeneratePONumber generates a unique PO number for a tenant.
// Format: PO-YYYY-NNNNN (e.g., PO-2026-00001)
func (r *GormPurchaseOrderRepository) GeneratePONumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PO-%d-", year)

	// Get the highest PO number for this year
	var last order.PurchaseOrder
	err := r.db.WithContext(ctx).
		Model(&order.PurchaseOrder{}).
		Where("tenant_id = ? AND po_number LIKE ?", tenantID, prefix+"%").
		Order("po_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.PONumber != "" {
		parts := strings.Split(last.PONumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	poNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness; walk forward on collisions
	exists, err := r.ExistsByPONumber(ctx, tenantID, poNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			poNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByPONumber(ctx, tenantID, poNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				return poNumber, nil
			}
		}
		return "", shared.NewDomainError("NUMBER_EXHAUSTED", "Could not generate a unique PO number")
	}

	return poNumber, nil
}

// itemOrder keeps preloaded line items in their entry order
func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// applyFilter applies filter options to the query
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		query = query.Order(purchaseOrderSort.clause(filter.OrderBy, filter.OrderDir))
	} else {
		// Default ordering: newest orders first
		query = query.Order("order_date DESC, created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR party_name ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "party_id":
			query = query.Where("party_id = ?", value)
		case "date_from":
			query = query.Where("order_date >= ?", value)
		case "date_to":
			query = query.Where("order_date <= ?", value)
		}
	}

	return query
}

// Ensure GormPurchaseOrderRepository implements order.Repository
var _ order.Repository = (*GormPurchaseOrderRepository)(nil)
