package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDForTenant finds a user by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username within a tenant
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*User, error)

	// FindAllForTenant finds all users for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]User, error)

	// FindByRole finds users with a given role for a tenant
	FindByRole(ctx context.Context, tenantID uuid.UUID, role Role, filter shared.Filter) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// DeleteForTenant deletes a user for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts users for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByUsername checks if a username exists for a tenant
	ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error)
}
