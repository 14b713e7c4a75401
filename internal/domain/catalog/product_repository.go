package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU within a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)

	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindActive finds all active products for a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindByStatus finds products by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ProductStatus, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// DeleteForTenant deletes a product for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts products for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsBySKU checks if a SKU exists for a tenant
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
}

// ProductImageRepository defines the interface for product image persistence
type ProductImageRepository interface {
	// FindByID finds an image by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductImage, error)

	// FindByIDForTenant finds an image by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProductImage, error)

	// FindByProduct finds all non-deleted images for a product, ordered by
	// kind (main first) then sort order
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductImage, error)

	// FindMainImage finds the active main image for a product
	FindMainImage(ctx context.Context, tenantID, productID uuid.UUID) (*ProductImage, error)

	// FindPendingOlderThan finds pending uploads created before the cutoff.
	// The janitor reclaims these abandoned slots.
	FindPendingOlderThan(ctx context.Context, cutoffSeconds int, limit int) ([]ProductImage, error)

	// Save creates or updates an image
	Save(ctx context.Context, img *ProductImage) error

	// SaveBatch saves several images in one transaction. Promoting a main
	// image demotes the previous one; the two writes go together.
	SaveBatch(ctx context.Context, imgs []*ProductImage) error

	// DeleteForTenant hard deletes an image row for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountByProduct counts non-deleted images for a product
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
}
