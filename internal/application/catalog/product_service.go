package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/govindji/backoffice/internal/domain/catalog"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
)

// ProductService handles product catalog business operations
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	// Check SKU uniqueness
	exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
	}

	p, err := catalog.NewProduct(tenantID, req.SKU, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}

	// Set descriptive fields
	if req.Description != "" || req.Grade != "" || req.Origin != "" {
		if err := p.Update(req.Name, req.Description, req.Grade, req.Origin); err != nil {
			return nil, err
		}
	}

	// Set category
	if req.Category != "" {
		if err := p.SetCategory(req.Category); err != nil {
			return nil, err
		}
	}

	// Set HSN code
	if req.HSNCode != "" {
		if err := p.SetHSNCode(req.HSNCode); err != nil {
			return nil, err
		}
	}

	// Set prices if provided
	if req.PurchasePrice != nil || req.SellingPrice != nil {
		purchase := p.GetPurchasePriceMoney()
		selling := p.GetSellingPriceMoney()
		if req.PurchasePrice != nil {
			purchase = valueobject.NewMoneyINR(*req.PurchasePrice)
		}
		if req.SellingPrice != nil {
			selling = valueobject.NewMoneyINR(*req.SellingPrice)
		}
		if err := p.SetPrices(purchase, selling); err != nil {
			return nil, err
		}
	}

	// Set sort order
	if req.SortOrder != nil {
		p.SetSortOrder(*req.SortOrder)
	}

	// Set created_by if provided (from JWT context via handler)
	if req.CreatedBy != nil {
		p.SetCreatedBy(*req.CreatedBy)
	}

	// Save product
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(p)
	return &response, nil
}

// GetBySKU retrieves a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductResponse, error) {
	p, err := s.productRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(p)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductListResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sort_order"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	// Add specific filters
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	// Get products
	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	// Get total count
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductListResponses(products), total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	// Update descriptive fields if any provided
	if req.Name != nil || req.Description != nil || req.Grade != nil || req.Origin != nil {
		name := p.Name
		description := p.Description
		grade := p.Grade
		origin := p.Origin

		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.Grade != nil {
			grade = *req.Grade
		}
		if req.Origin != nil {
			origin = *req.Origin
		}

		if err := p.Update(name, description, grade, origin); err != nil {
			return nil, err
		}
	}

	// Update category
	if req.Category != nil {
		if err := p.SetCategory(*req.Category); err != nil {
			return nil, err
		}
	}

	// Update HSN code
	if req.HSNCode != nil {
		if err := p.SetHSNCode(*req.HSNCode); err != nil {
			return nil, err
		}
	}

	// Update prices if either provided
	if req.PurchasePrice != nil || req.SellingPrice != nil {
		purchase := p.GetPurchasePriceMoney()
		selling := p.GetSellingPriceMoney()
		if req.PurchasePrice != nil {
			purchase = valueobject.NewMoneyINR(*req.PurchasePrice)
		}
		if req.SellingPrice != nil {
			selling = valueobject.NewMoneyINR(*req.SellingPrice)
		}
		if err := p.SetPrices(purchase, selling); err != nil {
			return nil, err
		}
	}

	// Update sort order
	if req.SortOrder != nil {
		p.SetSortOrder(*req.SortOrder)
	}

	// Save product
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	return &response, nil
}

// UpdateSKU changes a product's SKU. Existing order lines keep the SKU
// they were written with.
func (s *ProductService) UpdateSKU(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductSKURequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	// Skip the duplicate check when the SKU is unchanged
	if p.SKU != req.SKU {
		exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, req.SKU)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
		}
	}

	if err := p.UpdateSKU(req.SKU); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	return &response, nil
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, tenantID, productID, (*catalog.Product).Activate)
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, tenantID, productID, (*catalog.Product).Deactivate)
}

// Discontinue discontinues a product permanently
func (s *ProductService) Discontinue(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, tenantID, productID, (*catalog.Product).Discontinue)
}

func (s *ProductService) changeStatus(ctx context.Context, tenantID, productID uuid.UUID, transition func(*catalog.Product) error) (*ProductResponse, error) {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := transition(p); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToProductResponse(p)
	return &response, nil
}

// Delete deletes a product. Only inactive or discontinued products can be
// deleted; order lines are unaffected since they denormalize the name and SKU.
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}

	if p.IsActive() {
		return shared.NewDomainError("CANNOT_DELETE", "Deactivate or discontinue the product before deleting it")
	}

	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}

// CountByStatus returns product counts by status for a tenant
func (s *ProductService) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	counts := make(map[string]int64)
	var total int64

	for _, status := range []catalog.ProductStatus{
		catalog.ProductStatusActive,
		catalog.ProductStatusInactive,
		catalog.ProductStatusDiscontinued,
	} {
		filter := shared.Filter{
			Filters: map[string]any{"status": string(status)},
		}
		count, err := s.productRepo.CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		counts[string(status)] = count
		total += count
	}

	counts["total"] = total
	return counts, nil
}
