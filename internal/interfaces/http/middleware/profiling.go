package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/govindji/backoffice/internal/infrastructure/telemetry"
)

// ProfilingConfig controls which requests get profiling labels attached.
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths are matched exactly against the request path.
	SkipPaths []string
	// SkipPathPrefixes are matched as prefixes of the request path.
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health and documentation endpoints which
// would otherwise dominate the profile stream with no-op samples.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics"},
		SkipPathPrefixes: []string{"/swagger", "/api-docs"},
	}
}

// Profiling returns the profiling label middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig tags each request's goroutines with Pyroscope labels
// (controller, route, method, tenant_id) so CPU and memory profiles can be
// sliced per endpoint and per tenant. Place it after the JWT and tenant
// middleware so the tenant label is populated.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skip := skipPredicate(cfg.SkipPaths, cfg.SkipPathPrefixes)

	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		scope := requestProfilingScope(c)
		scope.Run(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func skipPredicate(exactPaths, prefixes []string) func(string) bool {
	exact := make(map[string]struct{}, len(exactPaths))
	for _, p := range exactPaths {
		exact[p] = struct{}{}
	}
	return func(path string) bool {
		if _, ok := exact[path]; ok {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// requestProfilingScope assembles the per-request label set. Only the route
// pattern is used, never the raw path, to keep label cardinality bounded.
func requestProfilingScope(c *gin.Context) *telemetry.ProfilingScope {
	scope := telemetry.NewProfilingScope(nil)

	if method := c.Request.Method; method != "" {
		scope.WithMethod(method)
	}

	route := c.FullPath()
	if route != "" {
		scope.WithRoute(route)
	}
	if resource := routeResource(route); resource != "" {
		scope.WithController(resource)
	}

	if tenantID := profilingTenantID(c); tenantID != "" {
		scope.WithTenantID(tenantID)
	}

	return scope
}

// routeResource picks the resource segment out of a route pattern, so
// "/api/v1/parties/:id/statement" labels profiles as "parties".
func routeResource(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api":
		case isAPIVersion(part):
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
		default:
			return part
		}
	}
	return ""
}

func isAPIVersion(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// profilingTenantID prefers the JWT claim and falls back to the value the
// tenant middleware resolved from headers.
func profilingTenantID(c *gin.Context) string {
	for _, key := range []string{JWTTenantIDKey, TenantIDKey} {
		if v, exists := c.Get(key); exists {
			if id, ok := v.(string); ok && id != "" {
				return id
			}
		}
	}
	return ""
}
