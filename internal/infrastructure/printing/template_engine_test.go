package printing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	domain "github.com/govindji/backoffice/internal/domain/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"groups digits in the lakh crore pattern", decimal.NewFromFloat(1234567.8), "12,34,567.80"},
		{"one lakh", decimal.NewFromInt(100000), "1,00,000.00"},
		{"below one thousand has no grouping", decimal.NewFromFloat(999.99), "999.99"},
		{"zero", decimal.Zero, "0.00"},
		{"negative", decimal.NewFromInt(-500), "-500.00"},
		{"rounds to two places", decimal.NewFromFloat(10.555), "10.56"},
		{"accepts plain integers", 2500, "2,500.00"},
		{"accepts numeric strings", "78900.5", "78,900.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAmount(tt.value))
		})
	}
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹12,34,567.80", formatINR(decimal.NewFromFloat(1234567.8)))
	assert.Equal(t, "₹0.00", formatINR(decimal.Zero))
}

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"zero", decimal.Zero, "Zero Rupees Only"},
		{"single rupee", decimal.NewFromInt(1), "One Rupee Only"},
		{"single paisa", decimal.NewFromFloat(0.01), "One Paisa Only"},
		{"tens", decimal.NewFromInt(45), "Forty Five Rupees Only"},
		{"hundreds", decimal.NewFromInt(818), "Eight Hundred Eighteen Rupees Only"},
		{
			"rupees and paise",
			decimal.NewFromFloat(1234.56),
			"One Thousand Two Hundred Thirty Four Rupees and Fifty Six Paise Only",
		},
		{"exact lakh", decimal.NewFromInt(100000), "One Lakh Rupees Only"},
		{"exact crore", decimal.NewFromInt(10000000), "One Crore Rupees Only"},
		{
			"full indian scale",
			decimal.NewFromFloat(12345678.90),
			"One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees and Ninety Paise Only",
		},
		{"negative", decimal.NewFromInt(-5), "Minus Five Rupees Only"},
		{"rounds stray precision", decimal.NewFromFloat(123.456), "One Hundred Twenty Three Rupees and Forty Six Paise Only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, amountInWords(tt.value))
		})
	}
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "2.5", formatQty(decimal.NewFromFloat(2.500)))
	assert.Equal(t, "10", formatQty(decimal.NewFromInt(10)))
	assert.Equal(t, "0.125", formatQty(decimal.NewFromFloat(0.125)))
	assert.Equal(t, "0", formatQty(decimal.Zero))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "15%", formatPercent(decimal.NewFromFloat(0.15), 0))
	assert.Equal(t, "8.25%", formatPercent(decimal.NewFromFloat(0.0825), 2))
}

func TestDateFormatting(t *testing.T) {
	when := time.Date(2026, 8, 25, 17, 41, 0, 0, time.UTC)

	assert.Equal(t, "25 Aug 2026", formatDate(when))
	assert.Equal(t, "25 Aug 2026 05:41 PM", formatDateTime(when))
	assert.Equal(t, "05:41 PM", formatTime(when))

	assert.Equal(t, "", formatDate(time.Time{}))
	assert.Equal(t, "", formatDate((*time.Time)(nil)))
	assert.Equal(t, "25 Aug 2026", formatDate(&when))
	assert.Equal(t, "25 Aug 2026", formatDate("2026-08-25T17:41:00Z"))
	assert.Equal(t, "", formatDate("not a date"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very l...", truncate("a very long item name", 11))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestDefaultFunc(t *testing.T) {
	assert.Equal(t, "fallback", defaultFunc("fallback", nil))
	assert.Equal(t, "fallback", defaultFunc("fallback", ""))
	assert.Equal(t, "fallback", defaultFunc("fallback", "   "))
	assert.Equal(t, "value", defaultFunc("fallback", "value"))
	assert.Equal(t, 0, defaultFunc("fallback", 0))
}

func TestShortUUID(t *testing.T) {
	id := uuid.MustParse("0b54a9c2-9e1f-4a7d-b1c3-5d6e7f8a9b0c")
	assert.Equal(t, "0b54a9c2", shortUUID(id))
	assert.Equal(t, "0b54a9c2", shortUUID(&id))
	assert.Equal(t, "abc", shortUUID("abc"))
	assert.Equal(t, "", shortUUID((*uuid.UUID)(nil)))
	assert.Equal(t, "", shortUUID(42))
}

func TestToDecimal(t *testing.T) {
	assert.True(t, toDecimal(int64(7)).Equal(decimal.NewFromInt(7)))
	assert.True(t, toDecimal(2.5).Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, toDecimal("19.99").Equal(decimal.NewFromFloat(19.99)))
	assert.True(t, toDecimal("garbage").IsZero())
	assert.True(t, toDecimal(nil).IsZero())
	assert.True(t, toDecimal((*decimal.Decimal)(nil)).IsZero())
}

func newTestTemplate(t *testing.T, content string) *domain.PrintTemplate {
	t.Helper()
	template, err := domain.NewPrintTemplate(uuid.New(), domain.DocTypeStatement, "Test Template", content, domain.PaperSizeA4)
	require.NoError(t, err)
	return template
}

func TestTemplateEngineRender(t *testing.T) {
	ctx := context.Background()
	engine := NewTemplateEngine()

	t.Run("renders with the formatting helpers", func(t *testing.T) {
		template := newTestTemplate(t, `<p>Total: {{formatINR .Total}} ({{amountInWords .Total}})</p>`)

		result, err := engine.Render(ctx, &RenderTemplateRequest{
			Template: template,
			Data:     map[string]interface{}{"Total": decimal.NewFromInt(125000)},
		})

		require.NoError(t, err)
		assert.Contains(t, result.HTML, "₹1,25,000.00")
		assert.Contains(t, result.HTML, "One Lakh Twenty Five Thousand Rupees Only")
	})

	t.Run("escapes data by default", func(t *testing.T) {
		template := newTestTemplate(t, `<p>{{.Name}}</p>`)

		result, err := engine.Render(ctx, &RenderTemplateRequest{
			Template: template,
			Data:     map[string]interface{}{"Name": "<script>alert(1)</script>"},
		})

		require.NoError(t, err)
		assert.NotContains(t, result.HTML, "<script>")
	})

	t.Run("additional funcs override the defaults", func(t *testing.T) {
		template := newTestTemplate(t, `{{upper .Name}}`)

		result, err := engine.Render(ctx, &RenderTemplateRequest{
			Template: template,
			Data:     map[string]interface{}{"Name": "almonds"},
			AdditionalFuncs: map[string]interface{}{
				"upper": func(s string) string { return "[" + s + "]" },
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "[almonds]", result.HTML)
	})

	t.Run("reports parse failures as invalid HTML", func(t *testing.T) {
		template := newTestTemplate(t, `{{.Unclosed`)

		_, err := engine.Render(ctx, &RenderTemplateRequest{Template: template})

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})

	t.Run("reports execution failures as render failed", func(t *testing.T) {
		template := newTestTemplate(t, `{{.Missing.Field}}`)

		_, err := engine.Render(ctx, &RenderTemplateRequest{
			Template: template,
			Data:     struct{}{},
		})

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeRenderFailed, renderErr.Code)
	})

	t.Run("rejects nil and empty input", func(t *testing.T) {
		_, err := engine.Render(ctx, nil)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

		_, err = engine.Render(ctx, &RenderTemplateRequest{Template: nil})
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})
}

func TestTemplateEngineRenderString(t *testing.T) {
	ctx := context.Background()
	engine := NewTemplateEngine()

	html, err := engine.RenderString(ctx, "inline", `Qty: {{formatQty .Qty}}`, map[string]interface{}{
		"Qty": decimal.NewFromFloat(2.500),
	})

	require.NoError(t, err)
	assert.Equal(t, "Qty: 2.5", html)

	_, err = engine.RenderString(ctx, "empty", "", nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestGetFuncMapReturnsCopy(t *testing.T) {
	engine := NewTemplateEngine()

	funcs := engine.GetFuncMap()
	delete(funcs, "formatINR")

	// The engine's own map must be untouched.
	_, err := engine.RenderString(context.Background(), "check", `{{formatINR 10}}`, nil)
	assert.NoError(t, err)
}
