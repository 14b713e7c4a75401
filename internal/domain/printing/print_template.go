package printing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

const (
	maxTemplateNameLen     = 100
	maxTemplateContentSize = 1 << 20 // 1MB
)

// PrintTemplate is an HTML template for one document type. It is the
// aggregate root for template-related operations.
//
// Content is a Go html/template body; the data it is executed against
// depends on the document type. At most one template per document type
// carries the default flag within a tenant; the repository enforces
// that when a new default is set.
type PrintTemplate struct {
	shared.TenantAggregateRoot
	DocumentType DocType        `gorm:"type:varchar(30);not null;uniqueIndex:idx_print_template_tenant_type_name,priority:2;index"`
	Name         string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_print_template_tenant_type_name,priority:3"`
	Description  string         `gorm:"type:varchar(500)"`
	Content      string         `gorm:"type:text;not null"`
	PaperSize    PaperSize      `gorm:"type:varchar(20);not null"`
	Orientation  Orientation    `gorm:"type:varchar(20);not null;default:'PORTRAIT'"`
	Margins      Margins        `gorm:"embedded;embeddedPrefix:margin_"`
	IsDefault    bool           `gorm:"not null;default:false;index"`
	Status       TemplateStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (PrintTemplate) TableName() string {
	return "print_templates"
}

// NewPrintTemplate creates a new active print template
func NewPrintTemplate(
	tenantID uuid.UUID,
	docType DocType,
	name string,
	content string,
	paperSize PaperSize,
) (*PrintTemplate, error) {
	if err := validateDocType(docType); err != nil {
		return nil, err
	}
	trimmedName, err := normalizeTemplateName(name)
	if err != nil {
		return nil, err
	}
	if err := validateTemplateContent(content); err != nil {
		return nil, err
	}
	if !paperSize.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAPER_SIZE", "Invalid paper size")
	}

	template := &PrintTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DocumentType:        docType,
		Name:                trimmedName,
		Content:             content,
		PaperSize:           paperSize,
		Orientation:         OrientationPortrait,
		Margins:             marginsFor(paperSize),
		Status:              TemplateStatusActive,
	}
	template.AddDomainEvent(NewPrintTemplateCreatedEvent(template))

	return template, nil
}

// marginsFor picks the starting margins for a paper size. Thermal
// receipt paper gets the narrow set.
func marginsFor(paperSize PaperSize) Margins {
	if paperSize.IsReceipt() {
		return ReceiptMargins()
	}
	return DefaultMargins()
}

// touch records a mutation for optimistic locking.
func (t *PrintTemplate) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Update updates the template's name and description
func (t *PrintTemplate) Update(name, description string) error {
	trimmedName, err := normalizeTemplateName(name)
	if err != nil {
		return err
	}

	t.Name = trimmedName
	t.Description = strings.TrimSpace(description)
	t.touch()
	t.AddDomainEvent(NewPrintTemplateUpdatedEvent(t))

	return nil
}

// UpdateContent replaces the HTML template body
func (t *PrintTemplate) UpdateContent(content string) error {
	if err := validateTemplateContent(content); err != nil {
		return err
	}

	t.Content = content
	t.touch()
	t.AddDomainEvent(NewPrintTemplateUpdatedEvent(t))

	return nil
}

// SetPaperSize sets the paper size
func (t *PrintTemplate) SetPaperSize(paperSize PaperSize) error {
	if !paperSize.IsValid() {
		return shared.NewDomainError("INVALID_PAPER_SIZE", "Invalid paper size")
	}

	t.PaperSize = paperSize
	// Moving to thermal paper forces the narrow margins
	if paperSize.IsReceipt() && !t.Margins.Equals(ReceiptMargins()) {
		t.Margins = ReceiptMargins()
	}
	t.touch()

	return nil
}

// SetOrientation sets the page orientation
func (t *PrintTemplate) SetOrientation(orientation Orientation) error {
	if !orientation.IsValid() {
		return shared.NewDomainError("INVALID_ORIENTATION", "Invalid orientation value")
	}

	t.Orientation = orientation
	t.touch()

	return nil
}

// SetMargins sets the page margins
func (t *PrintTemplate) SetMargins(margins Margins) error {
	t.Margins = margins
	t.touch()
	t.AddDomainEvent(NewPrintTemplateUpdatedEvent(t))

	return nil
}

// SetAsDefault marks this template as the default for its document type.
// The caller must clear the flag from the previous default first.
func (t *PrintTemplate) SetAsDefault() error {
	if t.Status != TemplateStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Cannot set inactive template as default")
	}
	if t.IsDefault {
		return nil
	}

	t.IsDefault = true
	t.touch()
	t.AddDomainEvent(NewPrintTemplateSetAsDefaultEvent(t))

	return nil
}

// UnsetDefault removes the default flag from this template
func (t *PrintTemplate) UnsetDefault() {
	if !t.IsDefault {
		return
	}

	t.IsDefault = false
	t.touch()
}

// Activate activates the template
func (t *PrintTemplate) Activate() error {
	if t.Status == TemplateStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Template is already active")
	}

	oldStatus := t.Status
	t.Status = TemplateStatusActive
	t.touch()
	t.AddDomainEvent(NewPrintTemplateStatusChangedEvent(t, oldStatus, TemplateStatusActive))

	return nil
}

// Deactivate deactivates the template
func (t *PrintTemplate) Deactivate() error {
	if t.Status == TemplateStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Template is already inactive")
	}

	// Deactivating the default would leave the document type without a
	// template to fall back on
	if t.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate a default template. Set another template as default first.")
	}

	oldStatus := t.Status
	t.Status = TemplateStatusInactive
	t.touch()
	t.AddDomainEvent(NewPrintTemplateStatusChangedEvent(t, oldStatus, TemplateStatusInactive))

	return nil
}

// IsActive returns true if the template is active
func (t *PrintTemplate) IsActive() bool {
	return t.Status == TemplateStatusActive
}

// CanBeUsed returns true if the template can be used for rendering
func (t *PrintTemplate) CanBeUsed() bool {
	return t.Status == TemplateStatusActive && t.Content != ""
}

func validateDocType(docType DocType) error {
	if !docType.IsValid() {
		return shared.NewDomainError("INVALID_DOC_TYPE", "Invalid document type")
	}
	return nil
}

// normalizeTemplateName trims the name and validates its length.
func normalizeTemplateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(trimmed) > maxTemplateNameLen {
		return "", shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 100 characters")
	}
	return trimmed, nil
}

func validateTemplateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Template content cannot be empty")
	}
	if len(content) > maxTemplateContentSize {
		return shared.NewDomainError("INVALID_CONTENT", "Template content cannot exceed 1MB")
	}
	return nil
}
