package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/infrastructure/auth"
	"github.com/govindji/backoffice/internal/infrastructure/logger"
)

// JWT context keys.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware.
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation.
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication.
	SkipPathPrefixes []string
	// OnError overrides the default 401 response.
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging.
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware with defaults.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware. On
// success the claims land in the gin context and the request context logger
// is tagged with the user and tenant.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	skip := skipPredicate(cfg.SkipPaths, cfg.SkipPathPrefixes)

	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, auth.ErrInvalidToken, err.reason)
			return
		}

		claims, validateErr := cfg.JWTService.ValidateAccessToken(tokenString)
		if validateErr != nil {
			handleAuthError(c, cfg, validateErr, "Token validation failed")
			return
		}

		if revokedErr := checkRevocation(c, cfg, claims); revokedErr != nil {
			handleAuthError(c, cfg, auth.ErrTokenBlacklisted, revokedErr.reason)
			return
		}

		setJWTContext(c, claims)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("tenant_id", claims.TenantID),
				zap.String("username", claims.Username),
			)
		}

		c.Next()
	}
}

// authFailure carries the user-facing reason for a rejected request.
type authFailure struct {
	reason string
}

func (e *authFailure) Error() string { return e.reason }

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, *authFailure) {
	authHeader := c.GetHeader(AuthHeaderKey)
	switch {
	case authHeader == "":
		return "", &authFailure{"Missing authorization header"}
	case !strings.HasPrefix(authHeader, BearerPrefix):
		return "", &authFailure{"Invalid authorization header format"}
	}

	tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
	if tokenString == "" {
		return "", &authFailure{"Missing token"}
	}
	return tokenString, nil
}

// checkRevocation consults the blacklist for the token's JTI and for a
// user-wide revocation (force logout, password change). Lookup errors fail
// open so an unavailable blacklist store cannot take down the API.
func checkRevocation(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) *authFailure {
	if cfg.TokenBlacklist == nil {
		return nil
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		case revoked:
			return &authFailure{"Token has been revoked"}
		}
	}

	if claims.UserID != "" {
		revoked, err := cfg.TokenBlacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check user token revocation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		case revoked:
			return &authFailure{"User session has been invalidated"}
		}
	}

	return nil
}

// setJWTContext plants the claims in the gin context and tags the request
// context logger with the user and tenant.
func setJWTContext(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTTenantIDKey, claims.TenantID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleKey, claims.Role)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
	ctx, _ = logger.WithTenantID(ctx, log, claims.TenantID)
	c.Request = c.Request.WithContext(ctx)
}

// handleAuthError responds 401 with a code matching the validation failure.
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode, errorMessage := authErrorCode(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

func authErrorCode(err error) (string, string) {
	switch err {
	case auth.ErrExpiredToken:
		return "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrInvalidToken:
		return "INVALID_TOKEN", "Invalid token"
	case auth.ErrInvalidTokenType:
		return "INVALID_TOKEN_TYPE", "Invalid token type"
	case auth.ErrTokenNotYetValid:
		return "TOKEN_NOT_VALID", "Token is not yet valid"
	case auth.ErrTokenBlacklisted:
		return "TOKEN_REVOKED", "Token has been revoked"
	default:
		return "UNAUTHORIZED", "Authentication required"
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context.
func GetJWTUserID(c *gin.Context) string {
	return contextString(c, JWTUserIDKey)
}

// GetJWTTenantID retrieves the tenant ID from JWT claims in context.
func GetJWTTenantID(c *gin.Context) string {
	return contextString(c, JWTTenantIDKey)
}

// GetJWTUsername retrieves the username from JWT claims in context.
func GetJWTUsername(c *gin.Context) string {
	return contextString(c, JWTUsernameKey)
}

// GetJWTRole retrieves the role from JWT claims in context.
func GetJWTRole(c *gin.Context) string {
	return contextString(c, JWTRoleKey)
}

func contextString(c *gin.Context, key string) string {
	if value, exists := c.Get(key); exists {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}
