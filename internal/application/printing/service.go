package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/govindji/backoffice/internal/domain/shared"
	infra "github.com/govindji/backoffice/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// PrintService renders business documents to PDF and manages the print
// templates and job history behind that. Document data is always loaded
// server side through the provider registry.
type PrintService struct {
	templateRepo   printing.PrintTemplateRepository
	jobRepo        printing.PrintJobRepository
	providers      *DataProviderRegistry
	templateEngine *infra.TemplateEngine
	pdfRenderer    infra.PDFRenderer
	pdfStorage     infra.PDFStorage
	business       BusinessInfo
	logger         *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(
	templateRepo printing.PrintTemplateRepository,
	jobRepo printing.PrintJobRepository,
	providers *DataProviderRegistry,
	templateEngine *infra.TemplateEngine,
	pdfRenderer infra.PDFRenderer,
	pdfStorage infra.PDFStorage,
	business BusinessInfo,
	logger *zap.Logger,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintService{
		templateRepo:   templateRepo,
		jobRepo:        jobRepo,
		providers:      providers,
		templateEngine: templateEngine,
		pdfRenderer:    pdfRenderer,
		pdfStorage:     pdfStorage,
		business:       business,
		logger:         logger,
	}
}

// =============================================================================
// Print Template Operations
// =============================================================================

// CreateTemplate creates a new print template
func (s *PrintService) CreateTemplate(ctx context.Context, tenantID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	docType := printing.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	exists, err := s.templateRepo.ExistsByDocTypeAndName(ctx, tenantID, docType, req.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check template existence: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Template with this name already exists for this document type")
	}

	paperSize := printing.PaperSize(req.PaperSize)
	if !paperSize.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid paper size")
	}

	template, err := printing.NewPrintTemplate(
		tenantID,
		docType,
		req.Name,
		req.Content,
		paperSize,
	)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := template.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}

	if req.Orientation != "" {
		if err := template.SetOrientation(printing.Orientation(req.Orientation)); err != nil {
			return nil, err
		}
	}

	if req.Margins != nil {
		margins := printing.Margins{
			Top:    req.Margins.Top,
			Right:  req.Margins.Right,
			Bottom: req.Margins.Bottom,
			Left:   req.Margins.Left,
		}
		if err := template.SetMargins(margins); err != nil {
			return nil, err
		}
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Info("print template created",
		zap.String("id", template.ID.String()),
		zap.String("name", template.Name),
		zap.String("docType", string(template.DocumentType)))

	return toTemplateResponse(template), nil
}

// GetTemplate retrieves a template by ID
func (s *PrintService) GetTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return toTemplateResponse(template), nil
}

// ListTemplates lists templates with pagination and filtering
func (s *PrintService) ListTemplates(ctx context.Context, tenantID uuid.UUID, req ListTemplatesRequest) (*ListTemplatesResponse, error) {
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
	if req.DocType != "" || req.Status != "" {
		filter.Filters = make(map[string]interface{})
		if req.DocType != "" {
			filter.Filters["document_type"] = req.DocType
		}
		if req.Status != "" {
			filter.Filters["status"] = req.Status
		}
	}

	templates, err := s.templateRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	total, err := s.templateRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	items := make([]TemplateResponse, len(templates))
	for i := range templates {
		items[i] = toTemplateListItem(&templates[i])
	}

	return &ListTemplatesResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}, nil
}

// UpdateTemplate updates an existing template
func (s *PrintService) UpdateTemplate(ctx context.Context, tenantID, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if req.Name != nil && *req.Name != template.Name {
		exists, err := s.templateRepo.ExistsByDocTypeAndName(ctx, tenantID, template.DocumentType, *req.Name, &templateID)
		if err != nil {
			return nil, fmt.Errorf("failed to check template existence: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Template with this name already exists for this document type")
		}
	}

	if req.Name != nil || req.Description != nil {
		name := template.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := template.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := template.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.Content != nil {
		if err := template.UpdateContent(*req.Content); err != nil {
			return nil, err
		}
	}

	if req.PaperSize != nil {
		if err := template.SetPaperSize(printing.PaperSize(*req.PaperSize)); err != nil {
			return nil, err
		}
	}

	if req.Orientation != nil {
		if err := template.SetOrientation(printing.Orientation(*req.Orientation)); err != nil {
			return nil, err
		}
	}

	if req.Margins != nil {
		margins := printing.Margins{
			Top:    req.Margins.Top,
			Right:  req.Margins.Right,
			Bottom: req.Margins.Bottom,
			Left:   req.Margins.Left,
		}
		if err := template.SetMargins(margins); err != nil {
			return nil, err
		}
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Info("print template updated",
		zap.String("id", template.ID.String()),
		zap.String("name", template.Name))

	return toTemplateResponse(template), nil
}

// DeleteTemplate deletes a template
func (s *PrintService) DeleteTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return fmt.Errorf("failed to get template: %w", err)
	}

	if template.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete the default template. Set another template as default first.")
	}

	if err := s.templateRepo.DeleteForTenant(ctx, tenantID, templateID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.logger.Info("print template deleted",
		zap.String("id", templateID.String()))

	return nil
}

// SetDefaultTemplate sets a template as the default for its document type
func (s *PrintService) SetDefaultTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if err := s.templateRepo.ClearDefaultForDocType(ctx, tenantID, template.DocumentType); err != nil {
		return nil, fmt.Errorf("failed to clear existing default: %w", err)
	}

	if err := template.SetAsDefault(); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Info("print template set as default",
		zap.String("id", template.ID.String()),
		zap.String("docType", string(template.DocumentType)))

	return toTemplateResponse(template), nil
}

// ActivateTemplate activates a template
func (s *PrintService) ActivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if err := template.Activate(); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return toTemplateResponse(template), nil
}

// DeactivateTemplate deactivates a template
func (s *PrintService) DeactivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if err := template.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return toTemplateResponse(template), nil
}

// GetTemplatesByDocType returns the active templates for a document type
func (s *PrintService) GetTemplatesByDocType(ctx context.Context, tenantID uuid.UUID, docType string) ([]TemplateResponse, error) {
	dt := printing.DocType(docType)
	if !dt.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	templates, err := s.templateRepo.FindActiveByDocType(ctx, tenantID, dt)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	items := make([]TemplateResponse, len(templates))
	for i := range templates {
		items[i] = toTemplateListItem(&templates[i])
	}
	return items, nil
}

// resolveTemplate returns the template to render with: the explicitly
// requested one, or the tenant's default. Tenants start without template
// rows, so a missing default is seeded from the builtin on first use.
func (s *PrintService) resolveTemplate(ctx context.Context, tenantID uuid.UUID, docType printing.DocType, templateID *uuid.UUID) (*printing.PrintTemplate, error) {
	if templateID != nil {
		template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, *templateID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
			}
			return nil, fmt.Errorf("failed to get template: %w", err)
		}
		if template.DocumentType != docType {
			return nil, shared.NewDomainError("INVALID_INPUT", "Template belongs to a different document type")
		}
		if !template.CanBeUsed() {
			return nil, shared.NewDomainError("INVALID_STATE", "Template is not available for use")
		}
		return template, nil
	}

	template, err := s.templateRepo.FindDefault(ctx, tenantID, docType)
	if err != nil {
		return nil, fmt.Errorf("failed to get default template: %w", err)
	}
	if template == nil {
		return s.seedBuiltinTemplate(ctx, tenantID, docType)
	}
	if !template.CanBeUsed() {
		return nil, shared.NewDomainError("INVALID_STATE", "Template is not available for use")
	}
	return template, nil
}

// seedBuiltinTemplate copies the shipped template into the tenant's table
// and marks it default. Two concurrent first prints can race on the unique
// name index; the loser re-reads the winner's row.
func (s *PrintService) seedBuiltinTemplate(ctx context.Context, tenantID uuid.UUID, docType printing.DocType) (*printing.PrintTemplate, error) {
	builtin := infra.BuiltinForDocType(docType)
	if builtin == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No default template found for this document type")
	}

	content, err := infra.LoadBuiltinContent(builtin.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin template: %w", err)
	}

	template, err := printing.NewPrintTemplate(tenantID, docType, builtin.Name, content, builtin.PaperSize)
	if err != nil {
		return nil, err
	}
	if err := template.Update(builtin.Name, builtin.Description); err != nil {
		return nil, err
	}
	if builtin.Orientation != template.Orientation {
		if err := template.SetOrientation(builtin.Orientation); err != nil {
			return nil, err
		}
	}
	if err := template.SetAsDefault(); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		if existing, findErr := s.templateRepo.FindDefault(ctx, tenantID, docType); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to seed builtin template: %w", err)
	}

	s.logger.Info("builtin template seeded",
		zap.String("tenantId", tenantID.String()),
		zap.String("docType", string(docType)),
		zap.String("templateId", template.ID.String()))

	return template, nil
}

// =============================================================================
// Preview and PDF Generation
// =============================================================================

// PreviewDocument renders a document to HTML without creating a job.
// The data is loaded server side; request content, when present, overrides
// the stored template so unsaved edits can be checked against real data.
func (s *PrintService) PreviewDocument(ctx context.Context, tenantID uuid.UUID, req PreviewRequest) (*PreviewResponse, error) {
	docType := printing.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	loaded, err := s.providers.Load(ctx, tenantID, docType, req.DocumentID, DataOptions{
		PeriodFrom: req.PeriodFrom,
		PeriodTo:   req.PeriodTo,
	})
	if err != nil {
		return nil, err
	}

	template, err := s.resolveTemplate(ctx, tenantID, docType, req.TemplateID)
	if err != nil {
		return nil, err
	}

	renderTemplate := template
	if req.Content != nil {
		override := *template
		override.Content = *req.Content
		renderTemplate = &override
	}

	result, err := s.templateEngine.Render(ctx, &infra.RenderTemplateRequest{
		Template: renderTemplate,
		Data:     s.documentData(docType, loaded),
	})
	if err != nil {
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) {
			return nil, shared.NewDomainError(renderErr.Code, renderErr.Message)
		}
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &PreviewResponse{
		HTML:        result.HTML,
		TemplateID:  template.ID.String(),
		PaperSize:   string(template.PaperSize),
		Orientation: string(template.Orientation),
		Margins:     toMarginsDTO(template.Margins),
	}, nil
}

// GeneratePDF loads the document, renders it through the tenant's template
// and stores the result. The job row records the outcome either way: a
// render or storage failure leaves a failed job behind for the history.
func (s *PrintService) GeneratePDF(ctx context.Context, tenantID, userID uuid.UUID, req GeneratePDFRequest) (*GeneratePDFResult, error) {
	docType := printing.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	// Load data first: a missing document means no job at all.
	loaded, err := s.providers.Load(ctx, tenantID, docType, req.DocumentID, DataOptions{
		PeriodFrom: req.PeriodFrom,
		PeriodTo:   req.PeriodTo,
	})
	if err != nil {
		return nil, err
	}

	template, err := s.resolveTemplate(ctx, tenantID, docType, req.TemplateID)
	if err != nil {
		return nil, err
	}

	job, err := printing.NewPrintJob(
		tenantID,
		template.ID,
		docType,
		req.DocumentID,
		loaded.Number,
		userID,
	)
	if err != nil {
		return nil, err
	}

	if req.PeriodFrom != nil || req.PeriodTo != nil {
		if err := job.SetPeriod(req.PeriodFrom, req.PeriodTo); err != nil {
			return nil, err
		}
	}

	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save print job: %w", err)
	}

	if err := job.StartRendering(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	renderResult, err := s.templateEngine.Render(ctx, &infra.RenderTemplateRequest{
		Template: template,
		Data:     s.documentData(docType, loaded),
	})
	if err != nil {
		s.logger.Error("template rendering failed", zap.Error(err), zap.String("jobId", job.ID.String()))
		_ = job.Fail("Template rendering failed. Please check template syntax.")
		_ = s.jobRepo.Save(ctx, job)
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	pdfResult, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:        renderResult.HTML,
		PaperSize:   template.PaperSize,
		Orientation: template.Orientation,
		Margins:     template.Margins,
		Title:       fmt.Sprintf("%s - %s", docType.DisplayName(), loaded.Number),
	})
	if err != nil {
		s.logger.Error("PDF rendering failed", zap.Error(err), zap.String("jobId", job.ID.String()))
		reason := "PDF generation failed. Please try again later."
		if infra.IsRenderTimeout(err) {
			reason = "PDF generation timed out. Try a shorter date range."
		}
		_ = job.Fail(reason)
		_ = s.jobRepo.Save(ctx, job)
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	storeResult, err := s.pdfStorage.Store(ctx, &infra.StoreRequest{
		TenantID: tenantID,
		JobID:    job.ID,
		DocType:  docType,
		PDFData:  pdfResult.PDFData,
	})
	if err != nil {
		s.logger.Error("PDF storage failed", zap.Error(err), zap.String("jobId", job.ID.String()))
		_ = job.Fail("Failed to save PDF file. Please try again later.")
		_ = s.jobRepo.Save(ctx, job)
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	if err := job.Complete(storeResult.Key, storeResult.Size, pdfResult.PageCount); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	s.logger.Info("PDF generated",
		zap.String("jobId", job.ID.String()),
		zap.String("docType", string(docType)),
		zap.String("docNo", loaded.Number),
		zap.Int64("size", storeResult.Size),
		zap.Int("pages", pdfResult.PageCount))

	return &GeneratePDFResult{
		Job:      toJobResponse(job),
		PDFData:  pdfResult.PDFData,
		FileName: buildFileName(docType, loaded.Number),
	}, nil
}

// documentData wraps the loaded document with the letterhead and metadata
// every template binds to.
func (s *PrintService) documentData(docType printing.DocType, loaded *LoadedDocument) *DocumentData {
	return &DocumentData{
		Meta: DocumentMeta{
			DocType:     docType,
			DocTypeName: docType.DisplayName(),
			DocNo:       loaded.Number,
		},
		Business:  s.business,
		Document:  loaded.Data,
		PrintedAt: time.Now(),
	}
}

// buildFileName derives a download filename like "statement-GJDF-0042.pdf"
func buildFileName(docType printing.DocType, docNumber string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, docNumber)
	return fmt.Sprintf("%s-%s.pdf", strings.ToLower(string(docType)), sanitized)
}

// =============================================================================
// Print Job Operations
// =============================================================================

// GetJob retrieves a print job by ID
func (s *PrintService) GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*PrintJobResponse, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}

	return toJobResponse(job), nil
}

// ListJobs lists print jobs with pagination and filtering
func (s *PrintService) ListJobs(ctx context.Context, tenantID uuid.UUID, req ListJobsRequest) (*ListJobsResponse, error) {
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if req.DocType != "" || req.Status != "" {
		filter.Filters = make(map[string]interface{})
		if req.DocType != "" {
			filter.Filters["document_type"] = req.DocType
		}
		if req.Status != "" {
			filter.Filters["status"] = req.Status
		}
	}

	jobs, err := s.jobRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}

	total, err := s.jobRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count print jobs: %w", err)
	}

	items := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		items[i] = *toJobResponse(&jobs[i])
	}

	return &ListJobsResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	}, nil
}

// GetJobsByDocument returns the print history of one document, newest first
func (s *PrintService) GetJobsByDocument(ctx context.Context, tenantID uuid.UUID, docType string, documentID uuid.UUID) ([]PrintJobResponse, error) {
	dt := printing.DocType(docType)
	if !dt.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	jobs, err := s.jobRepo.FindByDocument(ctx, tenantID, dt, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get print jobs: %w", err)
	}

	items := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		items[i] = *toJobResponse(&jobs[i])
	}
	return items, nil
}

// DownloadJob returns the stored PDF of a completed job: a presigned URL
// when the storage backend supports it, the raw bytes otherwise.
func (s *PrintService) DownloadJob(ctx context.Context, tenantID, jobID uuid.UUID) (*JobDownload, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}

	if !job.HasPDF() {
		return nil, shared.NewDomainError("NOT_FOUND", "No PDF is available for this print job")
	}

	fileName := buildFileName(job.DocumentType, job.DocumentNumber)

	url, expiresAt, err := s.pdfStorage.PresignDownload(ctx, job.PdfKey, fileName, 15*time.Minute)
	if err == nil {
		return &JobDownload{URL: url, ExpiresAt: expiresAt, FileName: fileName}, nil
	}
	if !errors.Is(err, infra.ErrPresignUnsupported) {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	data, err := s.pdfStorage.Get(ctx, job.PdfKey)
	if err != nil {
		if errors.Is(err, infra.ErrPDFNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "The stored PDF has been removed")
		}
		return nil, fmt.Errorf("failed to fetch PDF: %w", err)
	}

	return &JobDownload{PDFData: data, FileName: fileName}, nil
}

// SweepExpiredJobs removes print jobs older than the retention window,
// across all tenants. Stored PDFs go first so a failure there leaves the
// job rows pointing at files that still exist; the next sweep retries both.
func (s *PrintService) SweepExpiredJobs(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)

	filesRemoved, err := s.pdfStorage.CleanupOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up stored PDFs: %w", err)
	}

	deleted, err := s.jobRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired print jobs: %w", err)
	}

	if deleted > 0 || filesRemoved > 0 {
		s.logger.Info("Swept expired print jobs",
			zap.Time("cutoff", cutoff),
			zap.Int64("jobs_deleted", deleted),
			zap.Int("files_removed", filesRemoved))
	}
	return deleted, nil
}

// =============================================================================
// Reference Data
// =============================================================================

// GetDocumentTypes returns the document types that can be printed
func (s *PrintService) GetDocumentTypes() []DocumentTypeResponse {
	types := s.providers.RegisteredTypes()
	items := make([]DocumentTypeResponse, len(types))
	for i, dt := range types {
		items[i] = DocumentTypeResponse{
			Code:        string(dt),
			DisplayName: dt.DisplayName(),
		}
	}
	return items
}

// GetPaperSizes returns the supported paper sizes
func (s *PrintService) GetPaperSizes() []PaperSizeResponse {
	sizes := printing.AllPaperSizes()
	items := make([]PaperSizeResponse, len(sizes))
	for i, size := range sizes {
		width, height := size.Dimensions()
		items[i] = PaperSizeResponse{
			Code:   string(size),
			Width:  width,
			Height: height,
		}
	}
	return items
}
