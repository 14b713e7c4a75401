package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// printJobSort lists the job columns exposed for sorting.
var printJobSort = newSortSpec("created_at",
	"document_type", "document_number", "status", "size_bytes", "page_count",
)

// GormPrintJobRepository implements printing.PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPrintJobRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByIDForTenant finds a job by ID within a tenant
func (r *GormPrintJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*printing.PrintJob, error) {
	var job printing.PrintJob
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindAllForTenant finds all jobs for a tenant with filtering
func (r *GormPrintJobRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]printing.PrintJob, error) {
	var jobs []printing.PrintJob
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&printing.PrintJob{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindByDocument finds the print history of a specific document, newest first
func (r *GormPrintJobRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, docType printing.DocType, documentID uuid.UUID) ([]printing.PrintJob, error) {
	var jobs []printing.PrintJob
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND document_id = ?", tenantID, docType, documentID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Save creates or updates a job
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	events := job.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(job).Error; err != nil {
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
	job.ClearDomainEvents()
	return nil
}

// CountForTenant counts jobs for a tenant with optional filters
func (r *GormPrintJobRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&printing.PrintJob{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOlderThan deletes jobs created before the cutoff, across all tenants.
// The retention sweep removes the stored PDFs before calling this.
func (r *GormPrintJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&printing.PrintJob{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyFilter applies filter options to the query
func (r *GormPrintJobRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		query = query.Order(printJobSort.clause(filter.OrderBy, filter.OrderDir))
	} else {
		// Default ordering: newest jobs first
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPrintJobRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search (searches document number)
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("document_number ILIKE ?", searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "document_type":
			query = query.Where("document_type = ?", value)
		case "document_id":
			query = query.Where("document_id = ?", value)
		case "requested_by":
			query = query.Where("requested_by = ?", value)
		case "date_from":
			query = query.Where("created_at >= ?", value)
		case "date_to":
			query = query.Where("created_at <= ?", value)
		}
	}

	return query
}

// Ensure GormPrintJobRepository implements printing.PrintJobRepository
var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
