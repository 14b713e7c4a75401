package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/catalog"
	"github.com/govindji/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductImageRepository implements catalog.ProductImageRepository using GORM
type GormProductImageRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormProductImageRepository creates a new GormProductImageRepository
func NewGormProductImageRepository(db *gorm.DB) *GormProductImageRepository {
	return &GormProductImageRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormProductImageRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an image by its ID
func (r *GormProductImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductImage, error) {
	var img catalog.ProductImage
	if err := r.db.WithContext(ctx).First(&img, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// FindByIDForTenant finds an image by ID within a tenant
func (r *GormProductImageRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ProductImage, error) {
	var img catalog.ProductImage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// FindByProduct finds all non-deleted images for a product. The main image
// sorts first, then gallery shots by their sort order.
func (r *GormProductImageRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductImage, error) {
	var images []catalog.ProductImage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND status <> ?", tenantID, productID, catalog.ImageStatusDeleted).
		Order("CASE WHEN kind = 'main' THEN 0 ELSE 1 END, sort_order ASC, created_at ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// FindMainImage finds the active main image for a product
func (r *GormProductImageRepository) FindMainImage(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.ProductImage, error) {
	var img catalog.ProductImage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND kind = ? AND status = ?",
			tenantID, productID, catalog.ImageKindMain, catalog.ImageStatusActive).
		First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// FindPendingOlderThan finds pending uploads created before the cutoff,
// across all tenants. The cleanup job reclaims these abandoned slots.
func (r *GormProductImageRepository) FindPendingOlderThan(ctx context.Context, cutoffSeconds int, limit int) ([]catalog.ProductImage, error) {
	var images []catalog.ProductImage
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < NOW() - INTERVAL '1 second' * ?", catalog.ImageStatusPending, cutoffSeconds).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Save creates or updates an image
func (r *GormProductImageRepository) Save(ctx context.Context, img *catalog.ProductImage) error {
	events := img.GetDomainEvents()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(img).Error; err != nil {
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
	img.ClearDomainEvents()
	return nil
}

// SaveBatch saves several images in one transaction. Promoting a main image
// demotes the previous one; both rows must commit together.
func (r *GormProductImageRepository) SaveBatch(ctx context.Context, imgs []*catalog.ProductImage) error {
	if len(imgs) == 0 {
		return nil
	}

	var events []shared.DomainEvent
	for _, img := range imgs {
		events = append(events, img.GetDomainEvents()...)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, img := range imgs {
			if err := tx.Save(img).Error; err != nil {
				return err
			}
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
	for _, img := range imgs {
		img.ClearDomainEvents()
	}
	return nil
}

// DeleteForTenant hard deletes an image row for a tenant
func (r *GormProductImageRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductImage{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByProduct counts non-deleted images for a product
func (r *GormProductImageRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.ProductImage{}).
		Where("tenant_id = ? AND product_id = ? AND status <> ?", tenantID, productID, catalog.ImageStatusDeleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductImageRepository implements catalog.ProductImageRepository
var _ catalog.ProductImageRepository = (*GormProductImageRepository)(nil)
