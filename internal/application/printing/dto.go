package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/printing"
)

// =============================================================================
// Template DTOs
// =============================================================================

// CreateTemplateRequest represents a request to create a new print template
type CreateTemplateRequest struct {
	DocumentType string      `json:"document_type" binding:"required"`
	Name         string      `json:"name" binding:"required,min=1,max=100"`
	Description  string      `json:"description" binding:"max=500"`
	Content      string      `json:"content" binding:"required"`
	PaperSize    string      `json:"paper_size" binding:"required"`
	Orientation  string      `json:"orientation"`
	Margins      *MarginsDTO `json:"margins"`
}

// UpdateTemplateRequest represents a request to update a print template
type UpdateTemplateRequest struct {
	Name        *string     `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string     `json:"description" binding:"omitempty,max=500"`
	Content     *string     `json:"content"`
	PaperSize   *string     `json:"paper_size"`
	Orientation *string     `json:"orientation"`
	Margins     *MarginsDTO `json:"margins"`
}

// ListTemplatesRequest represents a request to list templates
type ListTemplatesRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	DocType  string `form:"doc_type"`
	Status   string `form:"status"`
}

// TemplateResponse represents a print template response
type TemplateResponse struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	DocumentType string     `json:"document_type"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Content      string     `json:"content,omitempty"` // Template HTML content
	PaperSize    string     `json:"paper_size"`
	Orientation  string     `json:"orientation"`
	Margins      MarginsDTO `json:"margins"`
	IsDefault    bool       `json:"is_default"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListTemplatesResponse represents a paginated list of templates
type ListTemplatesResponse struct {
	Items []TemplateResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

// MarginsDTO represents page margins in millimeters
type MarginsDTO struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// =============================================================================
// Preview and PDF Generation DTOs
// =============================================================================

// PreviewRequest represents a request to preview a document as HTML.
// Content overrides the stored template so unsaved edits can be previewed
// against real document data.
type PreviewRequest struct {
	DocumentType string     `json:"document_type" binding:"required"`
	DocumentID   uuid.UUID  `json:"document_id" binding:"required"`
	TemplateID   *uuid.UUID `json:"template_id"`
	Content      *string    `json:"content"`
	PeriodFrom   *time.Time `json:"period_from"`
	PeriodTo     *time.Time `json:"period_to"`
}

// PreviewResponse represents the preview result
type PreviewResponse struct {
	HTML        string     `json:"html"`
	TemplateID  string     `json:"template_id,omitempty"`
	PaperSize   string     `json:"paper_size"`
	Orientation string     `json:"orientation"`
	Margins     MarginsDTO `json:"margins"`
}

// GeneratePDFRequest represents a request to render a document to PDF.
// Document data is loaded server side from the document ID; the period
// window applies to statements only.
type GeneratePDFRequest struct {
	DocumentType string     `json:"document_type" binding:"required"`
	DocumentID   uuid.UUID  `json:"document_id" binding:"required"`
	TemplateID   *uuid.UUID `json:"template_id"`
	PeriodFrom   *time.Time `json:"period_from"`
	PeriodTo     *time.Time `json:"period_to"`
}

// GeneratePDFResult carries the rendered PDF along with its job record.
// The bytes go straight into the HTTP response; the stored copy stays
// downloadable through the job.
type GeneratePDFResult struct {
	Job      *PrintJobResponse
	PDFData  []byte
	FileName string
}

// JobDownload is either a presigned URL or the PDF bytes, depending on
// what the storage backend supports.
type JobDownload struct {
	URL       string
	ExpiresAt time.Time
	PDFData   []byte
	FileName  string
}

// =============================================================================
// Print Job DTOs
// =============================================================================

// ListJobsRequest represents a request to list print jobs
type ListJobsRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	DocType  string `form:"doc_type"`
	Status   string `form:"status"`
}

// PrintJobResponse represents a print job response
type PrintJobResponse struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	TemplateID     string     `json:"template_id"`
	DocumentType   string     `json:"document_type"`
	DocumentID     string     `json:"document_id"`
	DocumentNumber string     `json:"document_number"`
	Status         string     `json:"status"`
	PeriodFrom     *time.Time `json:"period_from,omitempty"`
	PeriodTo       *time.Time `json:"period_to,omitempty"`
	PDFAvailable   bool       `json:"pdf_available"`
	SizeBytes      int64      `json:"size_bytes,omitempty"`
	PageCount      int        `json:"page_count,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	RequestedBy    string     `json:"requested_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListJobsResponse represents a paginated list of print jobs
type ListJobsResponse struct {
	Items []PrintJobResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

// =============================================================================
// Reference Data DTOs
// =============================================================================

// DocumentTypeResponse represents a printable document type
type DocumentTypeResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// PaperSizeResponse represents a paper size
type PaperSizeResponse struct {
	Code   string `json:"code"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// =============================================================================
// Converters
// =============================================================================

func toMarginsDTO(m printing.Margins) MarginsDTO {
	return MarginsDTO{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}

func toTemplateResponse(t *printing.PrintTemplate) *TemplateResponse {
	return &TemplateResponse{
		ID:           t.ID.String(),
		TenantID:     t.TenantID.String(),
		DocumentType: string(t.DocumentType),
		Name:         t.Name,
		Description:  t.Description,
		Content:      t.Content,
		PaperSize:    string(t.PaperSize),
		Orientation:  string(t.Orientation),
		Margins:      toMarginsDTO(t.Margins),
		IsDefault:    t.IsDefault,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// toTemplateListItem omits the content blob from list responses
func toTemplateListItem(t *printing.PrintTemplate) TemplateResponse {
	resp := toTemplateResponse(t)
	resp.Content = ""
	return *resp
}

func toJobResponse(j *printing.PrintJob) *PrintJobResponse {
	resp := &PrintJobResponse{
		ID:             j.ID.String(),
		TenantID:       j.TenantID.String(),
		TemplateID:     j.TemplateID.String(),
		DocumentType:   string(j.DocumentType),
		DocumentID:     j.DocumentID.String(),
		DocumentNumber: j.DocumentNumber,
		Status:         string(j.Status),
		PeriodFrom:     j.PeriodFrom,
		PeriodTo:       j.PeriodTo,
		PDFAvailable:   j.HasPDF(),
		SizeBytes:      j.SizeBytes,
		PageCount:      j.PageCount,
		ErrorMessage:   j.ErrorMessage,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	if j.RequestedBy != nil {
		resp.RequestedBy = j.RequestedBy.String()
	}
	return resp
}
