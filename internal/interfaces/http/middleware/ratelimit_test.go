package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.GET("/parties", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func hit(router *gin.Engine, method, path string, set func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if set != nil {
		set(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows up to the limit", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("branch-a"), "request %d should pass", i+1)
		}
		assert.False(t, limiter.Allow("branch-a"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("branch-a"))
		assert.True(t, limiter.Allow("branch-a"))
		assert.False(t, limiter.Allow("branch-a"))

		assert.True(t, limiter.Allow("branch-b"))
		assert.True(t, limiter.Allow("branch-b"))
	})

	t.Run("budget refills after the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		assert.True(t, limiter.Allow("branch-c"))
		assert.True(t, limiter.Allow("branch-c"))
		assert.False(t, limiter.Allow("branch-c"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("branch-c"))
	})

	t.Run("remaining tracks consumption", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("fresh"))

		limiter.Allow("fresh")
		limiter.Allow("fresh")

		assert.Equal(t, 3, limiter.Remaining("fresh"))
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("passes requests within the limit", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(3, time.Minute)))

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, hit(router, "GET", "/parties", nil).Code)
		}
	})

	t.Run("returns 429 once the budget is spent", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(2, time.Minute)))

		hit(router, "GET", "/parties", nil)
		hit(router, "GET", "/parties", nil)
		w := hit(router, "GET", "/parties", nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(10, time.Minute)))

		w := hit(router, "GET", "/parties", nil)

		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("scopes the budget by tenant header", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(1, time.Minute)))

		asTenant := func(id string) func(*http.Request) {
			return func(req *http.Request) { req.Header.Set("X-Tenant-ID", id) }
		}

		assert.Equal(t, http.StatusOK, hit(router, "GET", "/parties", asTenant("shop-1")).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "GET", "/parties", asTenant("shop-1")).Code)

		// a second tenant from the same IP gets its own budget
		assert.Equal(t, http.StatusOK, hit(router, "GET", "/parties", asTenant("shop-2")).Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := limitedRouter(RateLimitByKey(NewRateLimiter(1, time.Minute), func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))

	asUser := func(id string) func(*http.Request) {
		return func(req *http.Request) { req.Header.Set("X-User-ID", id) }
	}

	assert.Equal(t, http.StatusOK, hit(router, "GET", "/parties", asUser("clerk-1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "GET", "/parties", asUser("clerk-1")).Code)
	assert.Equal(t, http.StatusOK, hit(router, "GET", "/parties", asUser("clerk-2")).Code)
}

func TestAuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fromIP := func(addr string) func(*http.Request) {
		return func(req *http.Request) { req.RemoteAddr = addr }
	}

	t.Run("allows attempts within the budget", func(t *testing.T) {
		router := limitedRouter(AuthRateLimit(NewRateLimiter(5, time.Minute)))

		for i := 0; i < 5; i++ {
			w := hit(router, "POST", "/login", fromIP("203.0.113.7:4431"))
			assert.Equal(t, http.StatusOK, w.Code, "attempt %d should pass", i+1)
		}
	})

	t.Run("blocks with an auth specific error code", func(t *testing.T) {
		router := limitedRouter(AuthRateLimit(NewRateLimiter(3, time.Minute)))

		for i := 0; i < 3; i++ {
			hit(router, "POST", "/login", fromIP("203.0.113.7:4431"))
		}
		w := hit(router, "POST", "/login", fromIP("203.0.113.7:4431"))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_RATE_LIMIT_EXCEEDED")
		assert.Contains(t, w.Body.String(), "Too many authentication attempts")
	})

	t.Run("sets rate limit headers on success", func(t *testing.T) {
		router := limitedRouter(AuthRateLimit(NewRateLimiter(5, time.Minute)))

		w := hit(router, "POST", "/login", fromIP("203.0.113.7:4431"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("sets Retry-After when blocked", func(t *testing.T) {
		router := limitedRouter(AuthRateLimit(NewRateLimiter(1, time.Minute)))

		hit(router, "POST", "/login", fromIP("203.0.113.7:4431"))
		w := hit(router, "POST", "/login", fromIP("203.0.113.7:4431"))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("budgets are per source IP", func(t *testing.T) {
		router := limitedRouter(AuthRateLimit(NewRateLimiter(2, time.Minute)))

		hit(router, "POST", "/login", fromIP("198.51.100.1:9000"))
		hit(router, "POST", "/login", fromIP("198.51.100.1:9000"))

		assert.Equal(t, http.StatusTooManyRequests, hit(router, "POST", "/login", fromIP("198.51.100.1:9000")).Code)
		assert.Equal(t, http.StatusOK, hit(router, "POST", "/login", fromIP("198.51.100.2:9000")).Code)
	})

	t.Run("auth prefix keeps a shared limiter from colliding with the global key", func(t *testing.T) {
		// Exhausting the auth budget must not consume the plain IP key.
		limiter := NewRateLimiter(1, time.Minute)

		router := gin.New()
		auth := router.Group("/auth")
		auth.Use(AuthRateLimit(limiter))
		auth.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		router.GET("/api/statements", RateLimit(limiter), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": "ok"})
		})

		hit(router, "POST", "/auth/login", fromIP("203.0.113.7:4431"))
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "POST", "/auth/login", fromIP("203.0.113.7:4431")).Code)

		assert.Equal(t, http.StatusOK, hit(router, "GET", "/api/statements", fromIP("203.0.113.7:4431")).Code)
	})
}
