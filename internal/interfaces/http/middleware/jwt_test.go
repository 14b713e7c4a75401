package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govindji/backoffice/internal/infrastructure/auth"
	"github.com/govindji/backoffice/internal/infrastructure/config"
	"github.com/govindji/backoffice/internal/infrastructure/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "backoffice-test",
		MaxRefreshCount:        10,
	}
	return auth.NewJWTService(cfg)
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "clerk-1",
		Role:     "manager",
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

// jwtRouter mounts mw in front of a probe route that records whether it was
// reached and what the middleware planted in the context.
type jwtProbe struct {
	handled  bool
	claims   *auth.Claims
	userID   string
	tenantID string
	username string
	role     string
	ctxTID   string
}

func jwtRouter(t *testing.T, mw gin.HandlerFunc) (*gin.Engine, *jwtProbe) {
	t.Helper()
	probe := &jwtProbe{}
	router := gin.New()
	router.Use(mw)
	router.GET("/api/v1/parties", func(c *gin.Context) {
		probe.handled = true
		probe.claims = GetJWTClaims(c)
		probe.userID = GetJWTUserID(c)
		probe.tenantID = GetJWTTenantID(c)
		probe.username = GetJWTUsername(c)
		probe.role = GetJWTRole(c)
		probe.ctxTID = logger.GetTenantID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router, probe
}

func getWithAuth(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("valid token reaches the handler with claims", func(t *testing.T) {
		jwtService := newTestJWTService()
		pair, input := newTestTokenPair(t, jwtService)
		router, probe := jwtRouter(t, JWTAuthMiddleware(jwtService))

		rec := getWithAuth(router, "/api/v1/parties", "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, probe.handled)
		require.NotNil(t, probe.claims)
		assert.Equal(t, input.UserID.String(), probe.userID)
		assert.Equal(t, input.TenantID.String(), probe.tenantID)
		assert.Equal(t, "clerk-1", probe.username)
		assert.Equal(t, "manager", probe.role)
	})

	t.Run("tenant propagates into the request context", func(t *testing.T) {
		jwtService := newTestJWTService()
		pair, input := newTestTokenPair(t, jwtService)
		router, probe := jwtRouter(t, JWTAuthMiddleware(jwtService))

		getWithAuth(router, "/api/v1/parties", "Bearer "+pair.AccessToken)

		assert.Equal(t, input.TenantID.String(), probe.ctxTID)
	})

	t.Run("rejects malformed credentials", func(t *testing.T) {
		jwtService := newTestJWTService()

		tests := []struct {
			name          string
			authorization string
		}{
			{"missing header", ""},
			{"wrong scheme", "Basic dXNlcjpwYXNz"},
			{"empty bearer token", "Bearer "},
			{"garbage token", "Bearer not-a-jwt"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router, probe := jwtRouter(t, JWTAuthMiddleware(jwtService))

				rec := getWithAuth(router, "/api/v1/parties", tt.authorization)

				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.False(t, probe.handled)
			})
		}
	})

	t.Run("expired token is rejected with TOKEN_EXPIRED", func(t *testing.T) {
		cfg := config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  -1 * time.Hour,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "backoffice-test",
		}
		jwtService := auth.NewJWTService(cfg)
		pair, _ := newTestTokenPair(t, jwtService)
		router, _ := jwtRouter(t, JWTAuthMiddleware(jwtService))

		rec := getWithAuth(router, "/api/v1/parties", "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("refresh token cannot be used as access token", func(t *testing.T) {
		jwtService := newTestJWTService()
		pair, _ := newTestTokenPair(t, jwtService)
		router, _ := jwtRouter(t, JWTAuthMiddleware(jwtService))

		rec := getWithAuth(router, "/api/v1/parties", "Bearer "+pair.RefreshToken)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("custom OnError overrides the response", func(t *testing.T) {
		jwtService := newTestJWTService()
		cfg := DefaultJWTConfig(jwtService)
		called := false
		cfg.OnError = func(c *gin.Context, err error) {
			called = true
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"custom": "error"})
		}
		router, _ := jwtRouter(t, JWTAuthMiddlewareWithConfig(cfg))

		rec := getWithAuth(router, "/api/v1/parties", "")

		assert.True(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	jwtService := newTestJWTService()

	t.Run("default skip paths pass without a token", func(t *testing.T) {
		router := gin.New()
		router.Use(JWTAuthMiddleware(jwtService))

		paths := []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		}
		for _, path := range paths {
			router.GET(path, func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})
		}

		for _, path := range paths {
			assert.Equal(t, http.StatusOK, getWithAuth(router, path, "").Code, "path %s", path)
		}
	})

	t.Run("extra exact path", func(t *testing.T) {
		cfg := DefaultJWTConfig(jwtService)
		cfg.SkipPaths = append(cfg.SkipPaths, "/public")

		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(cfg))
		router.GET("/public", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		assert.Equal(t, http.StatusOK, getWithAuth(router, "/public", "").Code)
	})

	t.Run("extra prefix", func(t *testing.T) {
		cfg := DefaultJWTConfig(jwtService)
		cfg.SkipPathPrefixes = append(cfg.SkipPathPrefixes, "/static")

		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(cfg))
		router.GET("/static/assets/logo.png", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		assert.Equal(t, http.StatusOK, getWithAuth(router, "/static/assets/logo.png", "").Code)
	})
}

func TestJWTAuthMiddleware_Revocation(t *testing.T) {
	t.Run("revoked JTI is rejected", func(t *testing.T) {
		jwtService := newTestJWTService()
		pair, _ := newTestTokenPair(t, jwtService)

		blacklist := auth.NewInMemoryTokenBlacklist()
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.RevokeToken(context.Background(), claims.ID, time.Hour))

		cfg := DefaultJWTConfig(jwtService)
		cfg.TokenBlacklist = blacklist
		router, probe := jwtRouter(t, JWTAuthMiddlewareWithConfig(cfg))

		rec := getWithAuth(router, "/api/v1/parties", "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_REVOKED")
		assert.False(t, probe.handled)
	})

	t.Run("user-wide revocation invalidates earlier tokens", func(t *testing.T) {
		jwtService := newTestJWTService()
		pair, input := newTestTokenPair(t, jwtService)

		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.RevokeUserTokens(context.Background(), input.UserID.String(), time.Hour))

		cfg := DefaultJWTConfig(jwtService)
		cfg.TokenBlacklist = blacklist
		router, _ := jwtRouter(t, JWTAuthMiddlewareWithConfig(cfg))

		rec := getWithAuth(router, "/api/v1/parties", "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("untouched token passes with a blacklist configured", func(t *testing.T) {
		jwtService := newTestJWTService()
		pair, _ := newTestTokenPair(t, jwtService)

		cfg := DefaultJWTConfig(jwtService)
		cfg.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
		router, probe := jwtRouter(t, JWTAuthMiddlewareWithConfig(cfg))

		rec := getWithAuth(router, "/api/v1/parties", "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, probe.handled)
	})
}

func TestJWTContextAccessors(t *testing.T) {
	t.Run("empty context yields zero values", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.Nil(t, GetJWTClaims(c))
		assert.Empty(t, GetJWTUserID(c))
		assert.Empty(t, GetJWTTenantID(c))
		assert.Empty(t, GetJWTUsername(c))
		assert.Empty(t, GetJWTRole(c))
	})

	t.Run("non-string values are ignored", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(JWTUserIDKey, 42)
		c.Set(JWTClaimsKey, "not-claims")

		assert.Empty(t, GetJWTUserID(c))
		assert.Nil(t, GetJWTClaims(c))
	})
}
