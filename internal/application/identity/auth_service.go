package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/domain/identity"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/auth"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	// Find user by username within the tenant
	user, err := s.userRepo.FindByUsername(ctx, input.TenantID, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	// Check if user can login
	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
		}
		if user.IsDeactivated() {
			s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
		}
		if user.Status == identity.UserStatusPending {
			s.logger.Warn("Login attempt for pending account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_PENDING", "Account is pending activation")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	// Verify password
	if !user.VerifyPassword(input.Password) {
		// Record failed attempt
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", input.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("username", input.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	// Generate token pair
	tokenInput := auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(tokenInput)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// Record successful login
	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
		// Don't fail the login - just log the error
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", input.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  toUserInfo(user),
	}, nil
}

// RefreshToken refreshes the access token using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	s.logger.Info("Token refresh attempt")

	// First, validate the refresh token to extract user info
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))

		switch err {
		case auth.ErrExpiredToken:
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		case auth.ErrInvalidToken:
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		case auth.ErrMaxRefreshExceeded:
			return nil, shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
		default:
			return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
		}
	}

	// Reject refresh tokens revoked by logout or force logout
	if revoked, err := s.blacklist.IsRevoked(ctx, refreshClaims.ID); err != nil {
		s.logger.Error("Failed to check token revocation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to verify token status")
	} else if revoked {
		s.logger.Warn("Refresh attempt with revoked token", zap.String("user_id", refreshClaims.UserID))
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked. Please log in again")
	}

	if revoked, err := s.blacklist.IsUserRevoked(ctx, refreshClaims.UserID, refreshClaims.GetIssuedAtTime()); err != nil {
		s.logger.Error("Failed to check user revocation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to verify token status")
	} else if revoked {
		s.logger.Warn("Refresh attempt after user-wide revocation", zap.String("user_id", refreshClaims.UserID))
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Session has been terminated. Please log in again")
	}

	// Parse user ID from refresh token claims
	userID, err := uuid.Parse(refreshClaims.UserID)
	if err != nil {
		s.logger.Error("Invalid user ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	s.logger.Info("Token refresh for user", zap.String("user_id", userID.String()))

	// Find user to verify they still exist and are active
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	// Check if user can still access the system
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	// Refresh the token pair. Username and role are re-read from the user
	// record so a role change takes effect here rather than at next login.
	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, user.Username, user.Role.String())
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))

		// Map JWT errors to domain errors
		switch err {
		case auth.ErrExpiredToken:
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		case auth.ErrInvalidToken:
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		case auth.ErrMaxRefreshExceeded:
			return nil, shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
		default:
			return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to refresh token")
		}
	}

	// The old refresh token is single-use: revoke it for its remaining
	// lifetime so a stolen copy cannot mint further pairs.
	if ttl := refreshClaims.GetRemainingTTL(); ttl > 0 {
		if err := s.blacklist.RevokeToken(ctx, refreshClaims.ID, ttl); err != nil {
			s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the session's tokens for the remainder of their lifetimes.
// Logout is idempotent: tokens that are already expired or malformed need
// no revocation entry, so they are logged and skipped rather than failed.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))

	s.revokeIfValid(ctx, input.AccessToken, s.jwtService.ValidateAccessToken)
	s.revokeIfValid(ctx, input.RefreshToken, s.jwtService.ValidateRefreshToken)

	return nil
}

// revokeIfValid parses a token and blacklists its JTI for the remaining TTL
func (s *AuthService) revokeIfValid(ctx context.Context, token string, validate func(string) (*auth.Claims, error)) {
	if token == "" {
		return
	}

	claims, err := validate(token)
	if err != nil {
		s.logger.Debug("Skipping revocation of unusable token", zap.Error(err))
		return
	}

	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return
	}

	if err := s.blacklist.RevokeToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke token on logout",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
	}
}

// ForceLogout invalidates every outstanding token for the target user.
// Tokens issued before now fail the revocation check regardless of which
// device holds them.
func (s *AuthService) ForceLogout(ctx context.Context, input ForceLogoutInput) (*ForceLogoutResult, error) {
	// Verify the target user exists within the tenant
	user, err := s.userRepo.FindByIDForTenant(ctx, input.TenantID, input.TargetUserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	// Keep the revocation marker alive as long as the longest-lived token
	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.RevokeUserTokens(ctx, user.ID.String(), ttl); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to terminate user sessions")
	}

	s.logger.Info("User sessions terminated",
		zap.String("admin_user_id", input.AdminUserID.String()),
		zap.String("target_user_id", input.TargetUserID.String()),
		zap.String("reason", input.Reason))

	return &ForceLogoutResult{
		Message: "All sessions for user " + user.Username + " have been terminated",
	}, nil
}

// GetCurrentUser retrieves the current user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, input GetCurrentUserInput) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	return &CurrentUserResult{
		User: toUserInfo(user),
	}, nil
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))

	return nil
}

// toUserInfo maps a user aggregate to the response shape
func toUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:                 user.ID,
		TenantID:           user.TenantID,
		Username:           user.Username,
		DisplayName:        user.GetDisplayNameOrUsername(),
		Email:              user.Email,
		Phone:              user.Phone,
		Role:               user.Role.String(),
		MustChangePassword: user.MustChangePassword,
	}
}
