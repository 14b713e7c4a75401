package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/domain/identity"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	TenantID    uuid.UUID
	Username    string
	Password    string
	Email       string
	Phone       string
	DisplayName string
	Role        string // admin, manager or clerk; empty defaults to clerk
	Notes       string
}

// UpdateUserInput contains input for updating a user
type UpdateUserInput struct {
	TenantID    uuid.UUID
	ID          uuid.UUID
	Email       *string
	Phone       *string
	DisplayName *string
	Notes       *string
}

// UserListFilter contains filtering options for user listing
type UserListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Role     string
	Status   string
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenant_id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	DisplayName        string     `json:"display_name"`
	Role               string     `json:"role"`
	Status             string     `json:"status"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UserListResult represents paginated user list result
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating new user",
		zap.String("username", input.Username),
		zap.String("tenant_id", input.TenantID.String()))

	// Check if username already exists within the tenant
	exists, err := s.userRepo.ExistsByUsername(ctx, input.TenantID, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	role := identity.RoleClerk
	if input.Role != "" {
		role = identity.Role(input.Role)
	}

	// Create user - immediately active
	user, err := identity.NewActiveUser(input.TenantID, input.Username, input.Password, role)
	if err != nil {
		return nil, err
	}

	// Set optional fields
	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		user.SetNotes(input.Notes)
	}

	// Save user
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return toUserDTO(user), nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	return toUserDTO(user), nil
}

// List retrieves a paginated list of users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter UserListFilter) (*UserListResult, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	// Add specific filters
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	users, err := s.userRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	total, err := s.userRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	// Calculate total pages
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	userDTOs := make([]UserDTO, len(users))
	for i := range users {
		userDTOs[i] = *toUserDTO(&users[i])
	}

	return &UserListResult{
		Users:      userDTOs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates a user's information
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, input.TenantID, input.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	// Update fields
	if input.Email != nil {
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}

	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if input.Notes != nil {
		user.SetNotes(*input.Notes)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated", zap.String("user_id", input.ID.String()))

	return toUserDTO(user), nil
}

// SetRole changes a user's role
func (s *UserService) SetRole(ctx context.Context, tenantID, id uuid.UUID, role string) (*UserDTO, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	// Demoting the last admin would leave the tenant unmanageable
	if user.IsAdmin() && identity.Role(role) != identity.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	if err := user.SetRole(identity.Role(role)); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to change user role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to change user role")
	}

	s.logger.Info("User role changed",
		zap.String("user_id", id.String()),
		zap.String("role", role))

	return toUserDTO(user), nil
}

// Delete deletes a user
func (s *UserService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	// Deleting the last admin would leave the tenant unmanageable
	if user.IsAdmin() {
		if err := s.ensureNotLastAdmin(ctx, tenantID); err != nil {
			return err
		}
	}

	if err := s.userRepo.DeleteForTenant(ctx, tenantID, user.ID); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete user")
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))

	return nil
}

// Activate activates a user
func (s *UserService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, "activate", (*identity.User).Activate)
}

// Deactivate deactivates a user
func (s *UserService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, "deactivate", (*identity.User).Deactivate)
}

// Unlock clears a lock before its expiry
func (s *UserService) Unlock(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, "unlock", (*identity.User).Unlock)
}

// Lock locks a user account for the given duration
func (s *UserService) Lock(ctx context.Context, tenantID, id uuid.UUID, duration time.Duration) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, "lock", func(u *identity.User) error {
		return u.Lock(duration)
	})
}

// transition applies a status change and persists it
func (s *UserService) transition(ctx context.Context, tenantID, id uuid.UUID, action string, apply func(*identity.User) error) (*UserDTO, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := apply(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user status",
			zap.String("action", action),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user status")
	}

	s.logger.Info("User status changed",
		zap.String("user_id", id.String()),
		zap.String("action", action))

	return toUserDTO(user), nil
}

// ResetPassword resets a user's password (admin action)
func (s *UserService) ResetPassword(ctx context.Context, tenantID, id uuid.UUID, newPassword string) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	// Force password change on next login
	user.ForcePasswordChange()

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.logger.Info("User password reset", zap.String("user_id", id.String()))

	return nil
}

// Count returns the total number of users for a tenant
func (s *UserService) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.userRepo.CountForTenant(ctx, tenantID, shared.Filter{Filters: make(map[string]any)})
}

// ensureNotLastAdmin fails when the tenant has a single admin left
func (s *UserService) ensureNotLastAdmin(ctx context.Context, tenantID uuid.UUID) error {
	admins, err := s.userRepo.CountForTenant(ctx, tenantID, shared.Filter{
		Filters: map[string]any{"role": string(identity.RoleAdmin)},
	})
	if err != nil {
		s.logger.Error("Failed to count admins", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to verify admin count")
	}
	if admins <= 1 {
		return shared.NewDomainError("LAST_ADMIN", "Cannot remove the only admin of the tenant")
	}
	return nil
}

// toUserDTO converts domain User to UserDTO
func toUserDTO(user *identity.User) *UserDTO {
	return &UserDTO{
		ID:                 user.ID,
		TenantID:           user.TenantID,
		Username:           user.Username,
		Email:              user.Email,
		Phone:              user.Phone,
		DisplayName:        user.GetDisplayNameOrUsername(),
		Role:               user.Role.String(),
		Status:             string(user.Status),
		MustChangePassword: user.MustChangePassword,
		LastLoginAt:        user.LastLoginAt,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}
