package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/govindji/backoffice/internal/domain/identity"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, requiredRoles []identity.Role)
}

// roleRank orders roles by privilege. A higher-ranked role satisfies any
// requirement for a lower-ranked one.
var roleRank = map[identity.Role]int{
	identity.RoleClerk:   1,
	identity.RoleManager: 2,
	identity.RoleAdmin:   3,
}

// RequireRole creates middleware that requires at least the given role.
// An admin passes a manager check; a manager passes a clerk check.
func RequireRole(minimum identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(minimum, RoleConfig{})
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(minimum identity.Role, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, []identity.Role{minimum}, "No authentication claims found")
			return
		}

		userRole := identity.Role(claims.Role)
		if roleRank[userRole] < roleRank[minimum] {
			handleRoleDenied(c, cfg, []identity.Role{minimum}, "User role is insufficient")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Role check passed",
				zap.String("user_id", claims.UserID),
				zap.String("user_role", claims.Role),
				zap.String("required_role", minimum.String()),
			)
		}

		c.Next()
	}
}

// RequireAnyRole creates middleware that requires the user's role to be one
// of the listed roles exactly (no rank comparison).
func RequireAnyRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireAnyRoleWithConfig(RoleConfig{}, roles...)
}

// RequireAnyRoleWithConfig creates exact-match role middleware with custom config
func RequireAnyRoleWithConfig(cfg RoleConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, roles, "No authentication claims found")
			return
		}

		userRole := identity.Role(claims.Role)
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		handleRoleDenied(c, cfg, roles, "User role not in allowed set")
	}
}

// RequireAdmin is shorthand for RequireRole(identity.RoleAdmin)
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

// RequireManager is shorthand for RequireRole(identity.RoleManager)
func RequireManager() gin.HandlerFunc {
	return RequireRole(identity.RoleManager)
}

// handleRoleDenied handles role check failures
func handleRoleDenied(c *gin.Context, cfg RoleConfig, required []identity.Role, reason string) {
	if cfg.Logger != nil {
		names := make([]string, len(required))
		for i, r := range required {
			names[i] = r.String()
		}
		cfg.Logger.Warn("Role check failed",
			zap.String("reason", reason),
			zap.Strings("required_roles", names),
			zap.String("path", c.Request.URL.Path),
		)
	}

	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": "Insufficient privileges for this operation",
		},
	})
}
