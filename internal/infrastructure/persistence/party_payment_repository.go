package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// partyPaymentSort lists the payment columns exposed for sorting.
var partyPaymentSort = newSortSpec("payment_date",
	"payment_number", "party_id", "party_name", "type", "amount",
	"method", "reference_number", "status",
)

// GormPartyPaymentRepository implements payment.Repository using GORM
type GormPartyPaymentRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPartyPaymentRepository creates a new GormPartyPaymentRepository
func NewGormPartyPaymentRepository(db *gorm.DB) *GormPartyPaymentRepository {
	return &GormPartyPaymentRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPartyPaymentRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a payment by its ID
func (r *GormPartyPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PartyPayment, error) {
	var p payment.PartyPayment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPartyPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.PartyPayment, error) {
	var p payment.PartyPayment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByPaymentNumber finds a payment by payment number for a tenant
func (r *GormPartyPaymentRepository) FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*payment.PartyPayment, error) {
	var p payment.PartyPayment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_number = ?", tenantID, paymentNumber).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAllForTenant finds all payments for a tenant with filtering
func (r *GormPartyPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.PartyPayment, error) {
	var payments []payment.PartyPayment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.PartyPayment{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByParty finds payments for a party with filtering
func (r *GormPartyPaymentRepository) FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]payment.PartyPayment, error) {
	var payments []payment.PartyPayment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.PartyPayment{}).
			Where("tenant_id = ? AND party_id = ?", tenantID, partyID),
		filter,
	)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAllActiveByParty finds every RECORDED payment for a party, ordered by
// creation time. Voided records are excluded. This is the ledger's payment
// history fetch.
func (r *GormPartyPaymentRepository) FindAllActiveByParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]payment.PartyPayment, error) {
	var payments []payment.PartyPayment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND party_id = ? AND status = ?", tenantID, partyID, payment.StatusRecorded).
		Order("created_at ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByPartyAndDateRange finds a party's payments whose payment date falls in [from, to]
func (r *GormPartyPaymentRepository) FindByPartyAndDateRange(ctx context.Context, tenantID, partyID uuid.UUID, from, to time.Time) ([]payment.PartyPayment, error) {
	var payments []payment.PartyPayment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND party_id = ? AND payment_date >= ? AND payment_date <= ?", tenantID, partyID, from, to).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByType finds payments of a given type for a tenant
func (r *GormPartyPaymentRepository) FindByType(ctx context.Context, tenantID uuid.UUID, paymentType payment.Type, filter shared.Filter) ([]payment.PartyPayment, error) {
	var payments []payment.PartyPayment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.PartyPayment{}).
			Where("tenant_id = ? AND type = ?", tenantID, paymentType),
		filter,
	)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPartyPaymentRepository) Save(ctx context.Context, p *payment.PartyPayment) error {
	events := p.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
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
	p.ClearDomainEvents()
	return nil
}

// SaveWithLock saves with optimistic locking. The aggregate increments its
// version on every mutation, so the row must still hold the previous one.
func (r *GormPartyPaymentRepository) SaveWithLock(ctx context.Context, p *payment.PartyPayment) error {
	events := p.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&payment.PartyPayment{}).
			Where("id = ? AND tenant_id = ? AND version = ?", p.ID, p.TenantID, p.Version-1).
			Updates(map[string]interface{}{
				"type":             p.Type,
				"amount":           p.Amount,
				"payment_date":     p.PaymentDate,
				"method":           p.Method,
				"reference_number": p.ReferenceNumber,
				"notes":            p.Notes,
				"status":           p.Status,
				"voided_at":        p.VoidedAt,
				"void_reason":      p.VoidReason,
				"version":          p.Version,
				"updated_at":       p.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The payment has been modified by another user")
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
	p.ClearDomainEvents()
	return nil
}

// DeleteForTenant deletes a payment for a tenant
func (r *GormPartyPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&payment.PartyPayment{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts payments for a tenant with optional filters
func (r *GormPartyPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&payment.PartyPayment{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByParty counts payments for a party
func (r *GormPartyPaymentRepository) CountByParty(ctx context.Context, tenantID, partyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.PartyPayment{}).
		Where("tenant_id = ? AND party_id = ?", tenantID, partyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByPaymentNumber checks if a payment number exists for a tenant
func (r *GormPartyPaymentRepository) ExistsByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.PartyPayment{}).
		Where("tenant_id = ? AND payment_number = ?", tenantID, paymentNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GeneratePaymentNumber generates a unique payment number for a tenant.
// Format: PAY-YYYY-NNNNN (e.g., PAY-2026-00001)
func (r *GormPartyPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PAY-%d-", year)

	// Get the highest payment number for this year
	var last payment.PartyPayment
	err := r.db.WithContext(ctx).
		Model(&payment.PartyPayment{}).
		Where("tenant_id = ? AND payment_number LIKE ?", tenantID, prefix+"%").
		Order("payment_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.PaymentNumber != "" {
		parts := strings.Split(last.PaymentNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	paymentNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness; walk forward on collisions
	exists, err := r.ExistsByPaymentNumber(ctx, tenantID, paymentNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			paymentNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByPaymentNumber(ctx, tenantID, paymentNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				return paymentNumber, nil
			}
		}
		return "", shared.NewDomainError("NUMBER_EXHAUSTED", "Could not generate a unique payment number")
	}

	return paymentNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormPartyPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		query = query.Order(partyPaymentSort.clause(filter.OrderBy, filter.OrderDir))
	} else {
		// Default ordering: newest payments first
		query = query.Order("payment_date DESC, created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPartyPaymentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR party_name ILIKE ? OR reference_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "method":
			query = query.Where("method = ?", value)
		case "party_id":
			query = query.Where("party_id = ?", value)
		case "date_from":
			query = query.Where("payment_date >= ?", value)
		case "date_to":
			query = query.Where("payment_date <= ?", value)
		}
	}

	return query
}

// Ensure GormPartyPaymentRepository implements payment.Repository
var _ payment.Repository = (*GormPartyPaymentRepository)(nil)
