package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/govindji/backoffice/internal/domain/catalog"
)

// ==================== Product DTOs ====================

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU           string           `json:"sku" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Unit          string           `json:"unit" binding:"required,max=20"`
	Description   string           `json:"description" binding:"max=2000"`
	Category      string           `json:"category" binding:"max=100"`
	Grade         string           `json:"grade" binding:"max=50"`
	Origin        string           `json:"origin" binding:"max=100"`
	HSNCode       string           `json:"hsn_code" binding:"omitempty,numeric,min=4,max=8"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	SortOrder     *int             `json:"sort_order"`
	CreatedBy     *uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	Grade         *string          `json:"grade" binding:"omitempty,max=50"`
	Origin        *string          `json:"origin" binding:"omitempty,max=100"`
	HSNCode       *string          `json:"hsn_code" binding:"omitempty,numeric,min=4,max=8"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	SortOrder     *int             `json:"sort_order"`
}

// UpdateProductSKURequest represents a request to change a product's SKU
type UpdateProductSKURequest struct {
	SKU string `json:"sku" binding:"required,min=1,max=50"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive discontinued"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Grade         string          `json:"grade,omitempty"`
	Origin        string          `json:"origin,omitempty"`
	HSNCode       string          `json:"hsn_code,omitempty"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Status        string          `json:"status"`
	SortOrder     int             `json:"sort_order"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ProductListResponse represents a product in list responses
type ProductListResponse struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Grade        string          `json:"grade,omitempty"`
	Unit         string          `json:"unit"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ==================== Product Image DTOs ====================

// InitiateImageUploadRequest represents a request for a presigned upload slot
type InitiateImageUploadRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	Kind        string    `json:"kind" binding:"omitempty,oneof=main gallery"`
	FileName    string    `json:"file_name" binding:"required,max=255"`
	FileSize    int64     `json:"file_size" binding:"required,min=1"`
	ContentType string    `json:"content_type" binding:"required"`

	UploadedBy *uuid.UUID `json:"-"` // Set from JWT context, not from request body
}

// InitiateImageUploadResponse carries the presigned PUT URL for the client
type InitiateImageUploadResponse struct {
	ImageID   uuid.UUID `json:"image_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageDownloadURLResponse carries a presigned GET URL for the client
type ImageDownloadURLResponse struct {
	ImageID   uuid.UUID `json:"image_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProductImageResponse represents a product image in API responses
type ProductImageResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	ContentType  string    `json:"content_type"`
	URL          string    `json:"url,omitempty"`           // presigned, set for active images
	ThumbnailURL string    `json:"thumbnail_url,omitempty"` // presigned, set when a thumbnail exists
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// ==================== Converters ====================

// ToProductResponse converts a domain product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Grade:         p.Grade,
		Origin:        p.Origin,
		HSNCode:       p.HSNCode,
		Unit:          p.Unit,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		Status:        string(p.Status),
		SortOrder:     p.SortOrder,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.GetVersion(),
	}
}

// ToProductListResponse converts a domain product to ProductListResponse
func ToProductListResponse(p *catalog.Product) ProductListResponse {
	return ProductListResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Category:     p.Category,
		Grade:        p.Grade,
		Unit:         p.Unit,
		SellingPrice: p.SellingPrice,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}

// ToProductListResponses converts a slice of domain products to list responses
func ToProductListResponses(products []catalog.Product) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i := range products {
		responses[i] = ToProductListResponse(&products[i])
	}
	return responses
}

// ToProductImageResponse converts a domain image to ProductImageResponse.
// Presigned URLs are attached by the service, not here.
func ToProductImageResponse(img *catalog.ProductImage) ProductImageResponse {
	return ProductImageResponse{
		ID:          img.ID,
		ProductID:   img.ProductID,
		Kind:        string(img.Kind),
		Status:      string(img.Status),
		FileName:    img.FileName,
		FileSize:    img.FileSize,
		ContentType: img.ContentType,
		SortOrder:   img.SortOrder,
		CreatedAt:   img.CreatedAt,
	}
}

// ToProductImageResponses converts a slice of domain images to responses
func ToProductImageResponses(imgs []catalog.ProductImage) []ProductImageResponse {
	responses := make([]ProductImageResponse, len(imgs))
	for i := range imgs {
		responses[i] = ToProductImageResponse(&imgs[i])
	}
	return responses
}
