// Package printing renders business documents to PDF.
//
// The pipeline has three stages. A DataProvider (see the providers
// subpackage) loads the document's data from the domain repositories
// and shapes it into a DocumentData view model. The TemplateEngine
// executes the tenant's HTML template against that model using Go's
// html/template with Indian-locale formatting helpers. The PDFRenderer
// then prints the HTML through headless Chrome (chromedp), and the
// resulting bytes go to a PDFStorage for later download.
//
// Rendered amounts follow Indian conventions: the rupee sign, lakh and
// crore digit grouping via golang.org/x/text's en-IN locale, and an
// "amount in words" helper for voucher footers.
package printing
