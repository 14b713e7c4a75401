package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// printTemplateSort lists the template columns exposed for sorting.
var printTemplateSort = newSortSpec("name",
	"document_type", "paper_size", "status", "is_default",
)

// GormPrintTemplateRepository implements printing.PrintTemplateRepository using GORM
type GormPrintTemplateRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPrintTemplateRepository creates a new GormPrintTemplateRepository
func NewGormPrintTemplateRepository(db *gorm.DB) *GormPrintTemplateRepository {
	return &GormPrintTemplateRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPrintTemplateRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByIDForTenant finds a template by ID within a tenant
func (r *GormPrintTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*printing.PrintTemplate, error) {
	var template printing.PrintTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindAllForTenant finds all templates for a tenant with filtering
func (r *GormPrintTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]printing.PrintTemplate, error) {
	var templates []printing.PrintTemplate
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&printing.PrintTemplate{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// FindDefault finds the default template for a document type. Returns nil
// without error when no default is set; the caller falls back to a builtin.
func (r *GormPrintTemplateRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, docType printing.DocType) (*printing.PrintTemplate, error) {
	var template printing.PrintTemplate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND is_default = ? AND status = ?",
			tenantID, docType, true, printing.TemplateStatusActive).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// FindActiveByDocType finds all active templates for a document type
func (r *GormPrintTemplateRepository) FindActiveByDocType(ctx context.Context, tenantID uuid.UUID, docType printing.DocType) ([]printing.PrintTemplate, error) {
	var templates []printing.PrintTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND status = ?", tenantID, docType, printing.TemplateStatusActive).
		Order("is_default DESC, name ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// ExistsByDocTypeAndName checks whether a template with the given doc type
// and name exists, optionally excluding one template ID (for renames)
func (r *GormPrintTemplateRepository) ExistsByDocTypeAndName(ctx context.Context, tenantID uuid.UUID, docType printing.DocType, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&printing.PrintTemplate{}).
		Where("tenant_id = ? AND document_type = ? AND name = ?", tenantID, docType, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ClearDefaultForDocType clears the default flag on every template of a
// document type. Called in the same request before a new default is set.
func (r *GormPrintTemplateRepository) ClearDefaultForDocType(ctx context.Context, tenantID uuid.UUID, docType printing.DocType) error {
	return r.db.WithContext(ctx).
		Model(&printing.PrintTemplate{}).
		Where("tenant_id = ? AND document_type = ? AND is_default = ?", tenantID, docType, true).
		Update("is_default", false).Error
}

// Save creates or updates a template
func (r *GormPrintTemplateRepository) Save(ctx context.Context, template *printing.PrintTemplate) error {
	events := template.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(template).Error; err != nil {
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
	template.ClearDomainEvents()
	return nil
}

// DeleteForTenant deletes a template within a tenant
func (r *GormPrintTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&printing.PrintTemplate{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts templates for a tenant with optional filters
func (r *GormPrintTemplateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&printing.PrintTemplate{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPrintTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		query = query.Order(printTemplateSort.clause(filter.OrderBy, filter.OrderDir))
	} else {
		query = query.Order("document_type ASC, is_default DESC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPrintTemplateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "document_type":
			query = query.Where("document_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "is_default":
			query = query.Where("is_default = ?", value)
		case "paper_size":
			query = query.Where("paper_size = ?", value)
		}
	}

	return query
}

// Ensure GormPrintTemplateRepository implements printing.PrintTemplateRepository
var _ printing.PrintTemplateRepository = (*GormPrintTemplateRepository)(nil)
