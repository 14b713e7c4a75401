package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// PrintTemplateRepository defines the interface for print template persistence
type PrintTemplateRepository interface {
	// FindByIDForTenant finds a template by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PrintTemplate, error)

	// FindAllForTenant finds all templates for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PrintTemplate, error)

	// FindDefault finds the default template for a document type.
	// Returns nil without error when no default is set.
	FindDefault(ctx context.Context, tenantID uuid.UUID, docType DocType) (*PrintTemplate, error)

	// FindActiveByDocType finds all active templates for a document type
	FindActiveByDocType(ctx context.Context, tenantID uuid.UUID, docType DocType) ([]PrintTemplate, error)

	// ExistsByDocTypeAndName checks whether a template with the given doc
	// type and name exists, optionally excluding one template ID
	ExistsByDocTypeAndName(ctx context.Context, tenantID uuid.UUID, docType DocType, name string, excludeID *uuid.UUID) (bool, error)

	// ClearDefaultForDocType clears the default flag on every template of
	// a document type. Called before a new default is set.
	ClearDefaultForDocType(ctx context.Context, tenantID uuid.UUID, docType DocType) error

	// Save saves a template (insert or update)
	Save(ctx context.Context, template *PrintTemplate) error

	// DeleteForTenant deletes a template within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant returns the total count of templates for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// PrintJobRepository defines the interface for print job persistence
type PrintJobRepository interface {
	// FindByIDForTenant finds a job by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PrintJob, error)

	// FindAllForTenant finds all jobs for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PrintJob, error)

	// FindByDocument finds the print history of a specific document,
	// newest first
	FindByDocument(ctx context.Context, tenantID uuid.UUID, docType DocType, documentID uuid.UUID) ([]PrintJob, error)

	// Save saves a job (insert or update)
	Save(ctx context.Context, job *PrintJob) error

	// CountForTenant returns the total count of jobs for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// DeleteOlderThan deletes jobs created before the cutoff and returns
	// how many went. The stored PDFs are removed separately by the
	// cleanup sweep before the rows go.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
