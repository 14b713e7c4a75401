package printing

import (
	"embed"
	"fmt"

	"github.com/govindji/backoffice/internal/domain/printing"
)

//go:embed templates/*.html
var templateFS embed.FS

// BuiltinTemplate describes one of the print templates shipped inside the
// binary. Tenants do not start with template rows; the first render for a
// document type seeds the builtin into the tenant's template table, after
// which the tenant can edit its copy freely.
type BuiltinTemplate struct {
	DocType     printing.DocType
	Name        string
	Description string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	Margins     printing.Margins
	FilePath    string // Path within embed.FS
}

// BuiltinTemplates returns the configuration for every shipped template,
// one per document type.
func BuiltinTemplates() []BuiltinTemplate {
	return []BuiltinTemplate{
		{
			DocType:     printing.DocTypeStatement,
			Name:        "Party Ledger Statement - A4",
			Description: "A4 ledger statement with the running balance, period totals and closing balance in words",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/statement_a4.html",
		},
		{
			DocType:     printing.DocTypePurchaseOrder,
			Name:        "Purchase Order - A4",
			Description: "A4 purchase order with line items, totals and signature blocks",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/purchase_order_a4.html",
		},
		{
			DocType:     printing.DocTypePaymentReceipt,
			Name:        "Payment Receipt - 80mm",
			Description: "80mm thermal voucher for payments and adjustments",
			PaperSize:   printing.PaperSizeReceipt80MM,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.ReceiptMargins(),
			FilePath:    "templates/payment_receipt_80mm.html",
		},
	}
}

// LoadBuiltinContent loads the HTML content for a builtin template
func LoadBuiltinContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

// BuiltinForDocType returns the shipped template for a document type, or
// nil when the type has none.
func BuiltinForDocType(docType printing.DocType) *BuiltinTemplate {
	for _, t := range BuiltinTemplates() {
		if t.DocType == docType {
			return &t
		}
	}
	return nil
}
