package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/infrastructure/logger"
)

// Context keys and the request header used for tenant resolution.
const (
	TenantIDKey     = "tenant_id"
	TenantCodeKey   = "tenant_code"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantInfo is what a TenantValidator returns for a known tenant.
type TenantInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// TenantValidator checks that a tenant exists and is active. Resolution
// succeeds without one; it only adds an existence check and the tenant code.
type TenantValidator interface {
	ValidateTenant(tenantID string) (*TenantInfo, error)
}

// TenantConfig controls how the tenant middleware resolves the tenant.
type TenantConfig struct {
	// HeaderEnabled allows resolution from the X-Tenant-ID header.
	HeaderEnabled bool
	// JWTEnabled allows resolution from token claims. The JWT middleware
	// must run earlier in the chain for this to see anything.
	JWTEnabled bool
	// SubdomainEnabled allows resolution from the host subdomain, e.g.
	// shop-1.backoffice.example.com against BaseDomain backoffice.example.com.
	SubdomainEnabled bool
	BaseDomain       string
	// SkipPaths bypass tenant resolution entirely (health checks, metrics).
	SkipPaths []string
	// Required rejects requests that resolve no tenant with a 401.
	Required bool
	// Validator optionally confirms the tenant against stored data.
	Validator TenantValidator
	Logger    *zap.Logger
}

// DefaultTenantConfig resolves from JWT claims first, then the header,
// and treats a missing tenant as a client error.
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:      true,
	}
}

// Tenant resolves the tenant for each request and stores it in both the
// gin context and the request context, scoping the request logger to it.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// OptionalTenant resolves the tenant when present but lets requests
// without one through. Suitable ahead of routes with their own fallback.
func OptionalTenant() gin.HandlerFunc {
	cfg := DefaultTenantConfig()
	cfg.Required = false
	return TenantWithConfig(cfg)
}

// TenantWithConfig builds the tenant middleware from cfg.
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	// Skip paths also cover their subpaths, so /health skips /health/deep.
	prefixes := make([]string, 0, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		prefixes = append(prefixes, p+"/")
	}
	skip := skipPredicate(cfg.SkipPaths, prefixes)

	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		tenantID, source := resolveTenant(c, cfg)

		if tenantID != "" {
			if _, err := uuid.Parse(tenantID); err != nil {
				abortTenantUnauthorized(c, "Invalid tenant ID format")
				return
			}
		}

		if tenantID == "" {
			if cfg.Required {
				abortTenantUnauthorized(c, "Tenant identification required")
				return
			}
			c.Next()
			return
		}

		info, err := validateTenant(cfg.Validator, tenantID)
		if err != nil {
			tenantLogger(c, cfg).Warn("Tenant validation failed",
				zap.String("tenant_id", tenantID),
				zap.Error(err),
			)
			abortTenantUnauthorized(c, "Invalid or inactive tenant")
			return
		}

		c.Set(TenantIDKey, tenantID)
		if info != nil {
			c.Set(TenantCodeKey, info.Code)
		}

		// Propagate into the request context so repositories and the
		// request logger see the tenant without touching gin.
		ctx := c.Request.Context()
		ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Tenant identified",
				zap.String("tenant_id", tenantID),
				zap.String("source", source),
			)
		}

		c.Next()
	}
}

// resolveTenant tries each enabled source in priority order and reports
// which one produced the value. JWT claims always win over the header,
// and the header over the subdomain.
func resolveTenant(c *gin.Context, cfg TenantConfig) (tenantID, source string) {
	if cfg.JWTEnabled {
		if claim, ok := c.Get(JWTTenantIDKey); ok {
			if id, ok := claim.(string); ok && id != "" {
				return id, "jwt"
			}
		}
	}
	if cfg.HeaderEnabled {
		if id := c.GetHeader(TenantHeaderKey); id != "" {
			return id, "header"
		}
	}
	if cfg.SubdomainEnabled && cfg.BaseDomain != "" {
		if id := tenantFromSubdomain(c.Request.Host, cfg.BaseDomain); id != "" {
			return id, "subdomain"
		}
	}
	return "", ""
}

func validateTenant(v TenantValidator, tenantID string) (*TenantInfo, error) {
	if v == nil {
		return nil, nil
	}
	return v.ValidateTenant(tenantID)
}

// tenantFromSubdomain returns the leading label of the host when it sits
// under baseDomain, so "shop-1.backoffice.example.com" yields "shop-1".
// The bare domain and the www alias resolve to nothing.
func tenantFromSubdomain(host, baseDomain string) string {
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	sub := strings.TrimSuffix(host, "."+baseDomain)
	if sub == host || sub == "" || sub == "www" {
		return ""
	}
	return strings.Split(sub, ".")[0]
}

func tenantLogger(c *gin.Context, cfg TenantConfig) *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return logger.FromContext(c.Request.Context())
}

func abortTenantUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetTenantID returns the resolved tenant ID, or "" when none was set.
func GetTenantID(c *gin.Context) string {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetTenantUUID returns the resolved tenant ID parsed as a UUID.
// A missing tenant yields uuid.Nil with no error.
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	id := GetTenantID(c)
	if id == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(id)
}

// GetTenantCode returns the tenant code set by a validator, if any.
func GetTenantCode(c *gin.Context) string {
	if v, ok := c.Get(TenantCodeKey); ok {
		if code, ok := v.(string); ok {
			return code
		}
	}
	return ""
}
