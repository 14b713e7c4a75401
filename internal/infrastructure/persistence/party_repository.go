package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// partySort lists the vendor columns exposed for sorting.
var partySort = newSortSpec("name",
	"code", "contact_name", "phone", "city", "state", "gstin",
	"credit_days", "opening_balance", "sort_order", "status",
)

// GormPartyRepository implements party.Repository using GORM
type GormPartyRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPartyRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a party by its ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	var p party.Party
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForTenant finds a party by ID within a tenant
func (r *GormPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Party, error) {
	var p party.Party
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

// FindByCode finds a party by its code within a tenant
func (r *GormPartyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*party.Party, error) {
	var p party.Party
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAllForTenant finds all parties for a tenant
func (r *GormPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]party.Party, error) {
	var parties []party.Party
	query := r.applyFilter(r.db.WithContext(ctx).Model(&party.Party{}).Where("tenant_id = ?", tenantID), filter)

	if err := query.Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// FindByStatus finds parties by status for a tenant
func (r *GormPartyRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status party.PartyStatus, filter shared.Filter) ([]party.Party, error) {
	var parties []party.Party
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&party.Party{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// Save creates or updates a party
func (r *GormPartyRepository) Save(ctx context.Context, p *party.Party) error {
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

// DeleteForTenant deletes a party within a tenant
func (r *GormPartyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&party.Party{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts parties for a tenant
func (r *GormPartyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&party.Party{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a party with the given code exists in the tenant
func (r *GormPartyRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&party.Party{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormPartyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		query = query.Order(partySort.clause(filter.OrderBy, filter.OrderDir))
	} else {
		// Default ordering
		query = query.Order("sort_order ASC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPartyRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR phone ILIKE ? OR contact_name ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "city":
			query = query.Where("city = ?", value)
		case "state":
			query = query.Where("state = ?", value)
		case "has_gstin":
			if value == true {
				query = query.Where("gstin <> ''")
			} else {
				query = query.Where("gstin = ''")
			}
		}
	}

	return query
}

// Ensure GormPartyRepository implements party.Repository
var _ party.Repository = (*GormPartyRepository)(nil)
