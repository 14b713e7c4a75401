// Package catalog contains the product aggregate and its image assets.
// Products are the dry-fruit SKUs that purchase order lines are written
// against; lines denormalize the name so the catalog can change freely.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a dry-fruit SKU in the catalog
type Product struct {
	shared.TenantAggregateRoot
	SKU           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Category      string          `gorm:"type:varchar(100);index"` // e.g. "Nuts", "Dried Fruits", "Seeds"
	Grade         string          `gorm:"type:varchar(50)"`        // e.g. "Premium", "Grade A"
	Origin        string          `gorm:"type:varchar(100)"`       // e.g. "Kashmir", "Afghanistan"
	HSNCode       string          `gorm:"type:varchar(10)"`        // GST classification code
	Unit          string          `gorm:"type:varchar(20);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	SortOrder     int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, sku, name, unit string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(sku),
		Name:                name,
		Unit:                unit,
		PurchasePrice:       decimal.Zero,
		SellingPrice:        decimal.Zero,
		Status:              ProductStatusActive,
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))

	return p, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, grade, origin string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.Grade = grade
	p.Origin = origin
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// UpdateSKU updates the product's SKU.
// Existing order lines keep the old SKU they were written with.
func (p *Product) UpdateSKU(sku string) error {
	if err := validateSKU(sku); err != nil {
		return err
	}

	p.SKU = strings.ToUpper(sku)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetCategory sets the product's category label
func (p *Product) SetCategory(category string) error {
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	p.Category = category
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetHSNCode sets the GST classification code
func (p *Product) SetHSNCode(code string) error {
	if code != "" && (len(code) < 4 || len(code) > 8) {
		return shared.NewDomainError("INVALID_HSN_CODE", "HSN code must be 4 to 8 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_HSN_CODE", "HSN code must contain only digits")
		}
	}

	p.HSNCode = code
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPrices sets both purchase and selling prices
func (p *Product) SetPrices(purchasePrice, sellingPrice valueobject.Money) error {
	if purchasePrice.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price cannot be negative")
	}
	if sellingPrice.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	oldPurchasePrice := p.PurchasePrice
	oldSellingPrice := p.SellingPrice

	p.PurchasePrice = purchasePrice.Amount().Round(2)
	p.SellingPrice = sellingPrice.Amount().Round(2)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPurchasePrice, oldSellingPrice))

	return nil
}

// SetSortOrder sets the display order of the product
func (p *Product) SetSortOrder(order int) {
	p.SortOrder = order
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("CANNOT_ACTIVATE", "Cannot activate a discontinued product")
	}

	oldStatus := p.Status
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusActive))

	return nil
}

// Deactivate deactivates the product
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("CANNOT_DEACTIVATE", "Cannot deactivate a discontinued product")
	}

	oldStatus := p.Status
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusInactive))

	return nil
}

// Discontinue marks the product as discontinued.
// A discontinued product cannot be reactivated.
func (p *Product) Discontinue() error {
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("ALREADY_DISCONTINUED", "Product is already discontinued")
	}

	oldStatus := p.Status
	p.Status = ProductStatusDiscontinued
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusDiscontinued))

	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsDiscontinued returns true if the product is discontinued
func (p *Product) IsDiscontinued() bool {
	return p.Status == ProductStatusDiscontinued
}

// GetPurchasePriceMoney returns purchase price as Money
func (p *Product) GetPurchasePriceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.PurchasePrice)
}

// GetSellingPriceMoney returns selling price as Money
func (p *Product) GetSellingPriceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.SellingPrice)
}

// validateSKU validates the product SKU
func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// validateUnit validates the unit
func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}
