package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// PrintJob is the audit record of one PDF rendering run. Rendering is
// synchronous, so a job normally goes pending -> rendering -> completed
// within a single request; failed jobs keep the error message so the
// history shows why a document never came out.
type PrintJob struct {
	shared.TenantAggregateRoot
	TemplateID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentType   DocType   `gorm:"type:varchar(30);not null;index"`
	DocumentID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentNumber string    `gorm:"type:varchar(100);not null"` // party code, PO number or payment number
	Status         JobStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	// PeriodFrom/PeriodTo bound the statement window; nil on both sides
	// means the full history. Unused for other document types.
	PeriodFrom   *time.Time `gorm:"type:date"`
	PeriodTo     *time.Time `gorm:"type:date"`
	PdfKey       string     `gorm:"type:varchar(500)"` // object-storage key of the generated PDF
	SizeBytes    int64      `gorm:"not null;default:0"`
	PageCount    int        `gorm:"not null;default:0"`
	ErrorMessage string     `gorm:"type:varchar(500)"`
	CompletedAt  *time.Time
	RequestedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PrintJob) TableName() string {
	return "print_jobs"
}

// NewPrintJob creates a new pending print job
func NewPrintJob(
	tenantID uuid.UUID,
	templateID uuid.UUID,
	docType DocType,
	documentID uuid.UUID,
	documentNumber string,
	requestedBy uuid.UUID,
) (*PrintJob, error) {
	if templateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template ID cannot be empty")
	}
	if err := validateDocType(docType); err != nil {
		return nil, err
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}

	job := &PrintJob{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TemplateID:          templateID,
		DocumentType:        docType,
		DocumentID:          documentID,
		DocumentNumber:      documentNumber,
		Status:              JobStatusPending,
	}
	if requestedBy != uuid.Nil {
		job.RequestedBy = &requestedBy
	}

	job.AddDomainEvent(NewPrintJobCreatedEvent(job))

	return job, nil
}

// SetPeriod records the statement date window the job was rendered for.
// Either bound may be nil to leave that side open.
func (j *PrintJob) SetPeriod(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return shared.NewDomainError("INVALID_PERIOD", "Period end cannot be before period start")
	}

	j.PeriodFrom = from
	j.PeriodTo = to
	j.UpdatedAt = time.Now()

	return nil
}

// StartRendering marks the job as rendering
func (j *PrintJob) StartRendering() error {
	if !j.Status.CanTransitionTo(JobStatusRendering) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot start rendering from status: "+j.Status.String())
	}

	j.Status = JobStatusRendering
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobStatusChangedEvent(j, JobStatusPending, JobStatusRendering))

	return nil
}

// Complete marks the job as completed with the stored PDF's object key
func (j *PrintJob) Complete(pdfKey string, sizeBytes int64, pageCount int) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete from status: "+j.Status.String())
	}
	if pdfKey == "" {
		return shared.NewDomainError("INVALID_PDF_KEY", "PDF object key cannot be empty")
	}

	oldStatus := j.Status
	j.Status = JobStatusCompleted
	j.PdfKey = pdfKey
	j.SizeBytes = sizeBytes
	j.PageCount = pageCount
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobStatusChangedEvent(j, oldStatus, JobStatusCompleted))
	j.AddDomainEvent(NewPrintJobCompletedEvent(j))

	return nil
}

// Fail marks the job as failed with an error message
func (j *PrintJob) Fail(errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}

	oldStatus := j.Status
	j.Status = JobStatusFailed
	j.ErrorMessage = errorMessage
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobStatusChangedEvent(j, oldStatus, JobStatusFailed))
	j.AddDomainEvent(NewPrintJobFailedEvent(j))

	return nil
}

// IsPending returns true if the job is pending
func (j *PrintJob) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsRendering returns true if the job is rendering
func (j *PrintJob) IsRendering() bool {
	return j.Status == JobStatusRendering
}

// IsCompleted returns true if the job is completed
func (j *PrintJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsFailed returns true if the job failed
func (j *PrintJob) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// IsTerminal returns true if the job is in a terminal state
func (j *PrintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// HasPDF returns true if a PDF has been generated and stored
func (j *PrintJob) HasPDF() bool {
	return j.PdfKey != ""
}
