package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates product with valid inputs", func(t *testing.T) {
		p, err := NewProduct(tenantID, "ALM-KAS-500", "Kashmiri Almonds 500g", "kg")
		require.NoError(t, err)
		require.NotNil(t, p)

		assert.Equal(t, tenantID, p.TenantID)
		assert.Equal(t, "ALM-KAS-500", p.SKU)
		assert.Equal(t, "Kashmiri Almonds 500g", p.Name)
		assert.Equal(t, "kg", p.Unit)
		assert.True(t, p.PurchasePrice.IsZero())
		assert.True(t, p.SellingPrice.IsZero())
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, 1, p.GetVersion())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("converts SKU to uppercase", func(t *testing.T) {
		p, err := NewProduct(tenantID, "alm-kas-500", "Almonds", "kg")
		require.NoError(t, err)
		assert.Equal(t, "ALM-KAS-500", p.SKU)
	})

	t.Run("rejects empty SKU", func(t *testing.T) {
		_, err := NewProduct(tenantID, "", "Almonds", "kg")
		assert.Error(t, err)
	})

	t.Run("rejects SKU with spaces", func(t *testing.T) {
		_, err := NewProduct(tenantID, "ALM KAS", "Almonds", "kg")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct(tenantID, "ALM-1", "", "kg")
		assert.Error(t, err)
	})

	t.Run("rejects empty unit", func(t *testing.T) {
		_, err := NewProduct(tenantID, "ALM-1", "Almonds", "")
		assert.Error(t, err)
	})
}

func TestProductUpdate(t *testing.T) {
	p := createTestProduct(t)

	require.NoError(t, p.Update("Mamra Almonds", "Premium mamra badam", "Premium", "Iran"))

	assert.Equal(t, "Mamra Almonds", p.Name)
	assert.Equal(t, "Premium", p.Grade)
	assert.Equal(t, "Iran", p.Origin)

	assert.Error(t, p.Update("", "", "", ""))
}

func TestProductSetHSNCode(t *testing.T) {
	p := createTestProduct(t)

	t.Run("accepts valid HSN code", func(t *testing.T) {
		require.NoError(t, p.SetHSNCode("08021100"))
		assert.Equal(t, "08021100", p.HSNCode)
	})

	t.Run("rejects too short code", func(t *testing.T) {
		assert.Error(t, p.SetHSNCode("08"))
	})

	t.Run("rejects non-numeric code", func(t *testing.T) {
		assert.Error(t, p.SetHSNCode("0802AB"))
	})

	t.Run("empty clears the field", func(t *testing.T) {
		require.NoError(t, p.SetHSNCode(""))
		assert.Empty(t, p.HSNCode)
	})
}

func TestProductSetPrices(t *testing.T) {
	p := createTestProduct(t)

	t.Run("sets both prices", func(t *testing.T) {
		p.ClearDomainEvents()

		require.NoError(t, p.SetPrices(
			valueobject.NewMoneyINRFromFloat(850),
			valueobject.NewMoneyINRFromFloat(1100),
		))

		assert.Equal(t, "850.00", p.PurchasePrice.StringFixed(2))
		assert.Equal(t, "1100.00", p.SellingPrice.StringFixed(2))

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductPriceChanged, events[0].EventType())
	})

	t.Run("rejects negative purchase price", func(t *testing.T) {
		err := p.SetPrices(valueobject.NewMoneyINRFromFloat(-1), valueobject.NewMoneyINRFromFloat(100))
		assert.Error(t, err)
	})
}

func TestProductStatusLifecycle(t *testing.T) {
	t.Run("deactivate then reactivate", func(t *testing.T) {
		p := createTestProduct(t)

		require.NoError(t, p.Deactivate())
		assert.Equal(t, ProductStatusInactive, p.Status)

		require.NoError(t, p.Activate())
		assert.True(t, p.IsActive())
	})

	t.Run("activating an active product fails", func(t *testing.T) {
		p := createTestProduct(t)
		assert.Error(t, p.Activate())
	})

	t.Run("discontinued is terminal", func(t *testing.T) {
		p := createTestProduct(t)

		require.NoError(t, p.Discontinue())
		assert.True(t, p.IsDiscontinued())

		assert.Error(t, p.Activate())
		assert.Error(t, p.Deactivate())
		assert.Error(t, p.Discontinue())
	})
}

func createTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct(uuid.New(), "ALM-KAS-500", "Kashmiri Almonds", "kg")
	require.NoError(t, err)
	return p
}
