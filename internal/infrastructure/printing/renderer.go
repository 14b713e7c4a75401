package printing

import (
	"context"
	"errors"
	"time"

	"github.com/govindji/backoffice/internal/domain/printing"
)

// PDFRenderer converts rendered document HTML into PDF bytes. The chromedp
// implementation is the only one in production; tests substitute mocks.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer.
	Close() error
}

// RenderRequest carries one statement, purchase order or receipt through the
// HTML-to-PDF conversion.
type RenderRequest struct {
	// HTML is the fully rendered document markup.
	HTML string
	// Title becomes the PDF document metadata title.
	Title string

	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	// Margins in millimeters.
	Margins printing.Margins

	// HeaderHTML and FooterHTML are optional Chrome header/footer template
	// markup, repeated on every page.
	HeaderHTML string
	FooterHTML string

	// Timeout overrides the renderer's default per-document timeout.
	Timeout time.Duration
}

// RenderResult is the outcome of one PDF conversion.
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// Error codes for rendering failures.
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// RenderError is a coded failure from template rendering, PDF conversion or
// PDF storage. The code survives into the domain error the service returns.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

// NewRenderError creates a new RenderError.
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// IsRenderTimeout reports whether err is a RenderError carrying the timeout
// code, so callers can decide between retrying and failing the job.
func IsRenderTimeout(err error) bool {
	var renderErr *RenderError
	return errors.As(err, &renderErr) && renderErr.Code == ErrCodeRenderTimeout
}
