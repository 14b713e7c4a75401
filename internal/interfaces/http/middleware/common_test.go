package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/statements", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func getWithOrigin(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/statements", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/statements", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("default empty whitelist sets no CORS headers", func(t *testing.T) {
		w := getWithOrigin(router, "GET", "http://elsewhere.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin requests pass through", func(t *testing.T) {
		w := getWithOrigin(router, "GET", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight still answers 204 without headers", func(t *testing.T) {
		w := getWithOrigin(router, "OPTIONS", "http://elsewhere.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("whitelisted origin gets headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		})

		w := getWithOrigin(router, "GET", "http://localhost:3000")

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("every whitelisted origin matches", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"http://localhost:3000", "https://backoffice.example.com"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
		})

		for _, origin := range []string{"http://localhost:3000", "https://backoffice.example.com"} {
			w := getWithOrigin(router, "GET", origin)
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("non-whitelisted origin gets no headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{AllowOrigins: []string{"http://allowed.example"}})

		w := getWithOrigin(router, "GET", "http://denied.example")

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist rejects every cross-origin request", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
		})

		w := getWithOrigin(router, "GET", "http://anywhere.example")

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard answers every origin", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Content-Type"},
		})

		w := getWithOrigin(router, "GET", "http://anywhere.example")

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials never accompany a wildcard origin", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		})

		w := getWithOrigin(router, "GET", "https://backoffice.example.com")

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("max age is rendered in seconds", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		})

		w := getWithOrigin(router, "GET", "http://localhost:3000")

		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("expose headers are joined", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins:  []string{"http://localhost:3000"},
			AllowMethods:  []string{"GET"},
			AllowHeaders:  []string{"Content-Type"},
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		})

		w := getWithOrigin(router, "GET", "http://localhost:3000")

		assert.Equal(t, "X-Request-ID, X-RateLimit-Remaining", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight from a whitelisted origin carries the full header set", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "PUT"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		})

		w := getWithOrigin(router, "OPTIONS", "http://localhost:3000")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight from a denied origin still answers 204", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"http://allowed.example"},
			AllowMethods: []string{"GET", "POST"},
		})

		w := getWithOrigin(router, "OPTIONS", "http://denied.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins, "origins must be configured explicitly")
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, "Content-Type")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.AllowHeaders, "X-Tenant-ID")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/statements", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("assigns an ID when the caller sends none", func(t *testing.T) {
		w := getWithOrigin(router, "GET", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("propagates a caller supplied ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/statements", nil)
		req.Header.Set("X-Request-ID", "txn-7f3a")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "txn-7f3a", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "txn-7f3a", w.Body.String())
	})

	t.Run("generated IDs are unique 128-bit hex", func(t *testing.T) {
		id1 := newRequestID()
		id2 := newRequestID()

		assert.Len(t, id1, 32)
		assert.NotEqual(t, id1, id2)
	})
}

func secureRouter(cfg SecurityConfig) *gin.Engine {
	router := gin.New()
	router.Use(SecureWithConfig(cfg))
	router.GET("/statements", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/statements", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := getWithOrigin(router, "GET", "")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	// HSTS stays off until the deployment terminates TLS
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	policy := w.Header().Get("Permissions-Policy")
	assert.Contains(t, policy, "camera=()")
	assert.Contains(t, policy, "microphone=()")
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("custom CSP directive", func(t *testing.T) {
		w := getWithOrigin(secureRouter(SecurityConfig{
			CSPEnabled:   true,
			CSPDirective: "default-src 'none'; script-src 'self'",
		}), "GET", "")

		assert.Equal(t, "default-src 'none'; script-src 'self'", w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS with subdomains and preload", func(t *testing.T) {
		w := getWithOrigin(secureRouter(SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            63072000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		}), "GET", "")

		assert.Equal(t, "max-age=63072000; includeSubDomains; preload", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS max-age only", func(t *testing.T) {
		w := getWithOrigin(secureRouter(SecurityConfig{
			HSTSEnabled: true,
			HSTSMaxAge:  31536000,
		}), "GET", "")

		assert.Equal(t, "max-age=31536000", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("custom permissions policy", func(t *testing.T) {
		w := getWithOrigin(secureRouter(SecurityConfig{
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "geolocation=(self), microphone=()",
		}), "GET", "")

		assert.Equal(t, "geolocation=(self), microphone=()", w.Header().Get("Permissions-Policy"))
	})

	t.Run("baseline headers survive everything disabled", func(t *testing.T) {
		w := getWithOrigin(secureRouter(SecurityConfig{}), "GET", "")

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
	})
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()

	assert.False(t, cfg.HSTSEnabled)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
	assert.True(t, cfg.HSTSIncludeSubdomains)
	assert.False(t, cfg.HSTSPreload)

	assert.True(t, cfg.CSPEnabled)
	assert.Contains(t, cfg.CSPDirective, "default-src 'self'")
	assert.Contains(t, cfg.CSPDirective, "frame-ancestors 'none'")

	assert.True(t, cfg.PermissionsPolicyEnabled)
	assert.Contains(t, cfg.PermissionsPolicyDirective, "camera=()")
}
