package printing

import (
	"context"
	"html/template"
	"maps"
	"strings"
	"time"

	"bytes"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// indianEnglish drives number formatting: the en-IN locale groups
// digits in the lakh/crore pattern (12,34,567.89).
var indianEnglish = message.NewPrinter(language.MustParse("en-IN"))

// TemplateEngine renders HTML print templates against document data.
// It wraps Go's html/template with formatting helpers for Indian
// business documents.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// NewTemplateEngine creates a new template engine with the default helpers
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatINR":     formatINR,
		"formatAmount":  formatAmount,
		"amountInWords": amountInWords,

		// Date formatting
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"formatTime":     formatTime,

		// Number formatting
		"formatDecimal": formatDecimal,
		"formatQty":     formatQty,
		"formatPercent": formatPercent,

		// Arithmetic on decimals
		"add": addFunc,
		"sub": subFunc,
		"mul": mulFunc,

		// String utilities
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    titleCase,
		"trim":     strings.TrimSpace,

		// Conditional
		"default": defaultFunc,

		// Safe HTML
		"safeHTML": safeHTML,
		"safeCSS":  safeCSS,

		// Misc
		"shortUUID": shortUUID,
		"now":       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RenderTemplateRequest represents a request to render a template
type RenderTemplateRequest struct {
	// Template is the print template to render
	Template *printing.PrintTemplate
	// Data is the document data to bind to the template
	Data interface{}
	// AdditionalFuncs are extra template functions (optional)
	AdditionalFuncs template.FuncMap
}

// RenderTemplateResult contains the rendered HTML output
type RenderTemplateResult struct {
	// HTML is the rendered HTML content
	HTML string
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// Render renders a print template with the provided data
func (e *TemplateEngine) Render(ctx context.Context, req *RenderTemplateRequest) (*RenderTemplateResult, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if req.Template == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template is nil", nil)
	}
	if req.Template.Content == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	startTime := time.Now()

	funcMap := make(template.FuncMap)
	maps.Copy(funcMap, e.funcMap)
	if req.AdditionalFuncs != nil {
		maps.Copy(funcMap, req.AdditionalFuncs)
	}

	tmpl, err := template.New(req.Template.ID.String()).Funcs(funcMap).Parse(req.Template.Content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req.Data); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return &RenderTemplateResult{
		HTML:           buf.String(),
		RenderDuration: time.Since(startTime),
	}, nil
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// =============================================================================
// Template Functions - Money Formatting
// =============================================================================

// formatINR formats a decimal value as rupees with the currency sign.
// Example: 1234567.8 -> "₹12,34,567.80"
func formatINR(v interface{}) string {
	return "₹" + formatAmount(v)
}

// formatAmount formats a decimal value with en-IN digit grouping, no sign.
// Example: 1234567.8 -> "12,34,567.80"
func formatAmount(v interface{}) string {
	d := toDecimal(v).Round(2)
	f, _ := d.Float64()
	return indianEnglish.Sprint(number.Decimal(f, number.Scale(2)))
}

// amountInWords spells an amount the way it is written on a cheque.
// Example: 1234.56 -> "One Thousand Two Hundred Thirty Four Rupees and
// Fifty Six Paise Only"
func amountInWords(v interface{}) string {
	d := toDecimal(v)
	if d.IsZero() {
		return "Zero Rupees Only"
	}

	prefix := ""
	if d.IsNegative() {
		prefix = "Minus "
		d = d.Abs()
	}

	totalPaise := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	rupees := totalPaise / 100
	paise := totalPaise % 100

	var b strings.Builder
	b.WriteString(prefix)

	if rupees > 0 {
		b.WriteString(integerInWords(rupees))
		if rupees == 1 {
			b.WriteString(" Rupee")
		} else {
			b.WriteString(" Rupees")
		}
	}
	if paise > 0 {
		if rupees > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(integerInWords(paise))
		if paise == 1 {
			b.WriteString(" Paisa")
		} else {
			b.WriteString(" Paise")
		}
	}
	b.WriteString(" Only")

	return b.String()
}

var onesWords = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// integerInWords converts a non-negative integer to words using the
// Indian numbering system (crore, lakh, thousand, hundred).
func integerInWords(n int64) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string

	crore := n / 10000000
	n %= 10000000
	lakh := n / 100000
	n %= 100000
	thousand := n / 1000
	n %= 1000
	hundred := n / 100
	n %= 100

	if crore > 0 {
		parts = append(parts, integerInWords(crore)+" Crore")
	}
	if lakh > 0 {
		parts = append(parts, twoDigitWords(lakh)+" Lakh")
	}
	if thousand > 0 {
		parts = append(parts, twoDigitWords(thousand)+" Thousand")
	}
	if hundred > 0 {
		parts = append(parts, onesWords[hundred]+" Hundred")
	}
	if n > 0 {
		parts = append(parts, twoDigitWords(n))
	}

	return strings.Join(parts, " ")
}

func twoDigitWords(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}

// =============================================================================
// Template Functions - Date Formatting
// =============================================================================

// formatDate formats a time value as a readable date.
// Example: "25 Aug 2026"
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// formatDateTime formats a time value as date and time.
// Example: "25 Aug 2026 05:41 PM"
func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 03:04 PM")
}

// formatTime formats a time value as time of day.
// Example: "05:41 PM"
func formatTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("03:04 PM")
}

// =============================================================================
// Template Functions - Number Formatting
// =============================================================================

// formatDecimal formats a decimal with the given precision
func formatDecimal(v interface{}, precision int) string {
	d := toDecimal(v)
	return d.StringFixed(int32(precision))
}

// formatQty formats a quantity, trimming insignificant trailing zeros.
// Example: 2.500 -> "2.5", 10.000 -> "10"
func formatQty(v interface{}) string {
	d := toDecimal(v)
	s := d.StringFixed(3)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// formatPercent formats a ratio as a percentage.
// Example: 0.15 -> "15%"
func formatPercent(v interface{}, precision int) string {
	d := toDecimal(v)
	percent := d.Mul(decimal.NewFromInt(100))
	return percent.StringFixed(int32(precision)) + "%"
}

// =============================================================================
// Template Functions - Arithmetic
// =============================================================================

func addFunc(a, b interface{}) decimal.Decimal {
	return toDecimal(a).Add(toDecimal(b))
}

func subFunc(a, b interface{}) decimal.Decimal {
	return toDecimal(a).Sub(toDecimal(b))
}

func mulFunc(a, b interface{}) decimal.Decimal {
	return toDecimal(a).Mul(toDecimal(b))
}

// =============================================================================
// Template Functions - Strings and Misc
// =============================================================================

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}

// truncate shortens a string to max runes, appending "..." when cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// defaultFunc returns fallback when the value is empty
func defaultFunc(fallback, value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
	}
	return value
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func safeCSS(s string) template.CSS {
	return template.CSS(s)
}

// shortUUID returns the first segment of a UUID, enough to eyeball
func shortUUID(v interface{}) string {
	switch id := v.(type) {
	case uuid.UUID:
		return id.String()[:8]
	case *uuid.UUID:
		if id == nil {
			return ""
		}
		return id.String()[:8]
	case string:
		if len(id) >= 8 {
			return id[:8]
		}
		return id
	}
	return ""
}

// =============================================================================
// Conversion helpers
// =============================================================================

func toDecimal(v interface{}) decimal.Decimal {
	switch d := v.(type) {
	case decimal.Decimal:
		return d
	case *decimal.Decimal:
		if d == nil {
			return decimal.Zero
		}
		return *d
	case int:
		return decimal.NewFromInt(int64(d))
	case int32:
		return decimal.NewFromInt(int64(d))
	case int64:
		return decimal.NewFromInt(d)
	case float32:
		return decimal.NewFromFloat32(d)
	case float64:
		return decimal.NewFromFloat(d)
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
