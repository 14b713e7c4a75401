package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	printingapp "github.com/govindji/backoffice/internal/application/printing"
	"github.com/govindji/backoffice/internal/interfaces/http/dto"
)

// PrintHandler handles print-related API endpoints
type PrintHandler struct {
	BaseHandler
	printService *printingapp.PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService *printingapp.PrintService) *PrintHandler {
	return &PrintHandler{
		printService: printService,
	}
}

// =============================================================================
// Template Endpoints
// =============================================================================

// CreateTemplate godoc
//
//	@ID				createPrintTemplate
//	@Summary		Create a print template
//	@Description	Create a new HTML print template for a document type
//	@Tags			print-templates
//	@Accept			json
//	@Produce		json
//	@Param			request	body		printingapp.CreateTemplateRequest	true	"Template creation request"
//	@Success		201		{object}	APIResponse[printingapp.TemplateResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates [post]
func (h *PrintHandler) CreateTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req printingapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.printService.CreateTemplate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetTemplate godoc
//
//	@ID				getPrintTemplate
//	@Summary		Get a print template
//	@Description	Retrieve a print template by its ID, including content
//	@Tags			print-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printingapp.TemplateResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/{id} [get]
func (h *PrintHandler) GetTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	result, err := h.printService.GetTemplate(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListTemplates godoc
//
//	@ID				listPrintTemplates
//	@Summary		List print templates
//	@Description	Get a paginated list of print templates with optional filters
//	@Tags			print-templates
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Items per page"	default(20)	maximum(100)
//	@Param			doc_type	query		string	false	"Filter by document type"
//	@Param			status		query		string	false	"Filter by status"
//	@Param			search		query		string	false	"Search in name"
//	@Success		200			{object}	APIResponse[printingapp.ListTemplatesResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates [get]
func (h *PrintHandler) ListTemplates(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := printingapp.ListTemplatesRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.printService.ListTemplates(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateTemplate godoc
//
//	@ID				updatePrintTemplate
//	@Summary		Update a print template
//	@Description	Update a print template's name, content, or layout settings
//	@Tags			print-templates
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Template ID"	format(uuid)
//	@Param			request	body		printingapp.UpdateTemplateRequest	true	"Template update request"
//	@Success		200		{object}	APIResponse[printingapp.TemplateResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/{id} [put]
func (h *PrintHandler) UpdateTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req printingapp.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.printService.UpdateTemplate(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteTemplate godoc
//
//	@ID				deletePrintTemplate
//	@Summary		Delete a print template
//	@Description	Delete a print template (default templates cannot be deleted)
//	@Tags			print-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	SuccessResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/{id} [delete]
func (h *PrintHandler) DeleteTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.printService.DeleteTemplate(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Template deleted successfully"})
}

// SetDefaultTemplate godoc
//
//	@ID				setDefaultPrintTemplate
//	@Summary		Set a template as default
//	@Description	Make a template the default for its document type
//	@Tags			print-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printingapp.TemplateResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/{id}/default [post]
func (h *PrintHandler) SetDefaultTemplate(c *gin.Context) {
	h.templateAction(c, h.printService.SetDefaultTemplate)
}

// ActivateTemplate godoc
//
//	@ID				activatePrintTemplate
//	@Summary		Activate a template
//	@Tags			print-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printingapp.TemplateResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/{id}/activate [post]
func (h *PrintHandler) ActivateTemplate(c *gin.Context) {
	h.templateAction(c, h.printService.ActivateTemplate)
}

// DeactivateTemplate godoc
//
//	@ID				deactivatePrintTemplate
//	@Summary		Deactivate a template
//	@Tags			print-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printingapp.TemplateResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/{id}/deactivate [post]
func (h *PrintHandler) DeactivateTemplate(c *gin.Context) {
	h.templateAction(c, h.printService.DeactivateTemplate)
}

func (h *PrintHandler) templateAction(c *gin.Context, op func(ctx context.Context, tenantID, templateID uuid.UUID) (*printingapp.TemplateResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	result, err := op(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetTemplatesByDocType godoc
//
//	@ID				getPrintTemplatesByDocType
//	@Summary		Get templates for a document type
//	@Description	Retrieve all active templates for a document type
//	@Tags			print-templates
//	@Produce		json
//	@Param			doc_type	path		string	true	"Document type"	Enums(STATEMENT, PURCHASE_ORDER, PAYMENT_RECEIPT)
//	@Success		200			{object}	APIResponse[[]printingapp.TemplateResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/templates/by-doc-type/{doc_type} [get]
func (h *PrintHandler) GetTemplatesByDocType(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	docType := c.Param("doc_type")
	if docType == "" {
		h.BadRequest(c, "Document type is required")
		return
	}

	templates, err := h.printService.GetTemplatesByDocType(c.Request.Context(), tenantID, docType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, templates)
}

// =============================================================================
// Preview and PDF Generation
// =============================================================================

// PreviewDocument godoc
//
//	@ID				previewPrintDocument
//	@Summary		Preview a document as HTML
//	@Description	Render a document against a template and return the HTML
//	@Tags			print
//	@Accept			json
//	@Produce		json
//	@Param			request	body		printingapp.PreviewRequest	true	"Preview request"
//	@Success		200		{object}	APIResponse[printingapp.PreviewResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/preview [post]
func (h *PrintHandler) PreviewDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req printingapp.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.printService.PreviewDocument(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GeneratePDF godoc
//
//	@ID				generatePrintPdf
//	@Summary		Generate a PDF
//	@Description	Render a document to PDF and stream it back; a print job records the result
//	@Tags			print
//	@Accept			json
//	@Produce		application/pdf
//	@Param			request	body	printingapp.GeneratePDFRequest	true	"PDF generation request"
//	@Success		200		{file}	binary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/generate [post]
func (h *PrintHandler) GeneratePDF(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User ID not found")
		return
	}

	var req printingapp.GeneratePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.printService.GeneratePDF(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Header("X-Print-Job-ID", result.Job.ID)
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}

// =============================================================================
// Print Job Endpoints
// =============================================================================

// GetJob godoc
//
//	@ID				getPrintJob
//	@Summary		Get print job by ID
//	@Description	Retrieve a print job by its ID
//	@Tags			print-jobs
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printingapp.PrintJobResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/jobs/{id} [get]
func (h *PrintHandler) GetJob(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.printService.GetJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, job)
}

// ListJobs godoc
//
//	@ID				listPrintJobs
//	@Summary		List print jobs
//	@Description	Get a paginated list of print jobs with optional filters
//	@Tags			print-jobs
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Items per page"	default(20)	maximum(100)
//	@Param			doc_type	query		string	false	"Filter by document type"
//	@Param			status		query		string	false	"Filter by status"
//	@Success		200			{object}	APIResponse[printingapp.ListJobsResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/jobs [get]
func (h *PrintHandler) ListJobs(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := printingapp.ListJobsRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.printService.ListJobs(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetJobsByDocument godoc
//
//	@ID				getPrintJobsByDocument
//	@Summary		Get print jobs for a document
//	@Description	Retrieve all print jobs generated for a specific document
//	@Tags			print-jobs
//	@Produce		json
//	@Param			doc_type	path		string	true	"Document type"
//	@Param			document_id	path		string	true	"Document ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]printingapp.PrintJobResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/jobs/by-document/{doc_type}/{document_id} [get]
func (h *PrintHandler) GetJobsByDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	docType := c.Param("doc_type")
	documentID, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	jobs, err := h.printService.GetJobsByDocument(c.Request.Context(), tenantID, docType, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, jobs)
}

// DownloadPDF godoc
//
//	@ID				downloadPrintJobPdf
//	@Summary		Download a generated PDF
//	@Description	Download the PDF for a completed print job, either via presigned URL redirect or direct stream
//	@Tags			print-jobs
//	@Produce		application/pdf
//	@Param			id	path	string	true	"Job ID"	format(uuid)
//	@Success		200	{file}	binary
//	@Success		307	{string}	string	"Redirect to presigned URL"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/print/jobs/{id}/download [get]
func (h *PrintHandler) DownloadPDF(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	download, err := h.printService.DownloadJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if download.URL != "" {
		c.Redirect(http.StatusTemporaryRedirect, download.URL)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+download.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", download.PDFData)
}

// =============================================================================
// Reference Data Endpoints
// =============================================================================

// GetDocumentTypes godoc
//
//	@ID				getPrintDocumentTypes
//	@Summary		Get available document types
//	@Description	Retrieve all document types that can be printed
//	@Tags			print-reference
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]printingapp.DocumentTypeResponse]
//	@Security		BearerAuth
//	@Router			/print/document-types [get]
func (h *PrintHandler) GetDocumentTypes(c *gin.Context) {
	h.Success(c, h.printService.GetDocumentTypes())
}

// GetPaperSizes godoc
//
//	@ID				getPrintPaperSizes
//	@Summary		Get supported paper sizes
//	@Description	Retrieve all supported paper sizes in millimeters
//	@Tags			print-reference
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]printingapp.PaperSizeResponse]
//	@Security		BearerAuth
//	@Router			/print/paper-sizes [get]
func (h *PrintHandler) GetPaperSizes(c *gin.Context) {
	h.Success(c, h.printService.GetPaperSizes())
}
