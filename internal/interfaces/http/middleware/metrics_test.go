package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newHTTPMetricsRouter builds a router with the metrics middleware on a
// manual reader, plus a couple of representative routes.
func newHTTPMetricsRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(provider.Meter("http.server"), true))
	router.GET("/api/v1/parties/:id/statement", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"party": "Sharma Traders", "balance": "1250.00"})
	})
	router.POST("/api/v1/payments", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"payment_number": "PAY-001"})
	})
	router.GET("/api/v1/orders/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{})
	})
	return router, reader
}

func collectHTTPMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// httpMetricDataPoints returns the datapoints of an int64 sum metric.
func httpMetricDataPoints(t *testing.T, rm metricdata.ResourceMetrics, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s should be an int64 sum", name)
			return sum.DataPoints
		}
	}
	return nil
}

func httpHistogramExists(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func dataPointAttr(dp metricdata.DataPoint[int64], key attribute.Key) (attribute.Value, bool) {
	return dp.Attributes.Value(key)
}

func TestDefaultHTTPMetricsConfig(t *testing.T) {
	cfg := DefaultHTTPMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "backoffice", cfg.ServiceName)
	assert.Nil(t, cfg.MeterProvider)
}

func TestHTTPMetricsWithMeter(t *testing.T) {
	t.Run("counts requests with method, route and status", func(t *testing.T) {
		router, reader := newHTTPMetricsRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parties/42/statement", nil))
		require.Equal(t, http.StatusOK, w.Code)

		rm := collectHTTPMetrics(t, reader)
		dps := httpMetricDataPoints(t, rm, "http_server_request_total")
		require.Len(t, dps, 1)
		assert.Equal(t, int64(1), dps[0].Value)

		method, ok := dataPointAttr(dps[0], "http.method")
		require.True(t, ok)
		assert.Equal(t, "GET", method.AsString())

		route, ok := dataPointAttr(dps[0], "http.route")
		require.True(t, ok)
		assert.Equal(t, "/api/v1/parties/:id/statement", route.AsString())

		status, ok := dataPointAttr(dps[0], "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusOK), status.AsInt64())
	})

	t.Run("error responses keep their status label", func(t *testing.T) {
		router, reader := newHTTPMetricsRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/42", nil))
		require.Equal(t, http.StatusNotFound, w.Code)

		rm := collectHTTPMetrics(t, reader)
		dps := httpMetricDataPoints(t, rm, "http_server_request_total")
		require.Len(t, dps, 1)

		status, ok := dataPointAttr(dps[0], "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
	})

	t.Run("tenant label comes from the JWT claim", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(JWTTenantIDKey, "shop-1")
			c.Next()
		})
		router.Use(HTTPMetricsWithMeter(provider.Meter("http.server"), true))
		router.GET("/api/v1/payments", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

		rm := collectHTTPMetrics(t, reader)
		dps := httpMetricDataPoints(t, rm, "http_server_request_total")
		require.Len(t, dps, 1)

		tenant, ok := dataPointAttr(dps[0], "tenant_id")
		require.True(t, ok)
		assert.Equal(t, "shop-1", tenant.AsString())
	})

	t.Run("records latency and response size histograms", func(t *testing.T) {
		router, reader := newHTTPMetricsRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parties/42/statement", nil))

		rm := collectHTTPMetrics(t, reader)
		assert.True(t, httpHistogramExists(rm, "http_server_request_duration_seconds"))
		assert.True(t, httpHistogramExists(rm, "http_server_response_size_bytes"))
	})

	t.Run("records request size when the body has a length", func(t *testing.T) {
		router, reader := newHTTPMetricsRouter(t)

		body := strings.NewReader(`{"party_id":"42","amount":"500.00","method":"UPI"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		rm := collectHTTPMetrics(t, reader)
		assert.True(t, httpHistogramExists(rm, "http_server_request_size_bytes"))
	})

	t.Run("tracks in-flight requests", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		var inFlight metricdata.ResourceMetrics
		router := gin.New()
		router.Use(HTTPMetricsWithMeter(provider.Meter("http.server"), true))
		router.GET("/api/v1/payments", func(c *gin.Context) {
			require.NoError(t, reader.Collect(context.Background(), &inFlight))
			c.JSON(http.StatusOK, gin.H{})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

		dps := httpMetricDataPoints(t, inFlight, "http_server_active_requests")
		require.Len(t, dps, 1)
		assert.Equal(t, int64(1), dps[0].Value, "active count observed inside the handler")

		rm := collectHTTPMetrics(t, reader)
		dps = httpMetricDataPoints(t, rm, "http_server_active_requests")
		require.Len(t, dps, 1)
		assert.Equal(t, int64(0), dps[0].Value, "active count returns to zero afterwards")
	})

	t.Run("unmatched routes are grouped under unknown", func(t *testing.T) {
		router, reader := newHTTPMetricsRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
		require.Equal(t, http.StatusNotFound, w.Code)

		rm := collectHTTPMetrics(t, reader)
		dps := httpMetricDataPoints(t, rm, "http_server_request_total")
		require.Len(t, dps, 1)

		route, ok := dataPointAttr(dps[0], "http.route")
		require.True(t, ok)
		assert.Equal(t, "unknown", route.AsString())
	})

	t.Run("repeated requests accumulate on one series", func(t *testing.T) {
		router, reader := newHTTPMetricsRouter(t)

		for range 5 {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parties/42/statement", nil))
		}

		rm := collectHTTPMetrics(t, reader)
		dps := httpMetricDataPoints(t, rm, "http_server_request_total")
		require.Len(t, dps, 1)
		assert.Equal(t, int64(5), dps[0].Value)
	})

	t.Run("disabled is a pass-through", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		router := gin.New()
		router.Use(HTTPMetricsWithMeter(provider.Meter("http.server"), false))
		router.GET("/api/v1/payments", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))
		require.Equal(t, http.StatusOK, w.Code)

		rm := collectHTTPMetrics(t, reader)
		assert.Empty(t, httpMetricDataPoints(t, rm, "http_server_request_total"))
	})
}

func TestHTTPMetrics(t *testing.T) {
	serve := func(t *testing.T, cfg HTTPMetricsConfig) *httptest.ResponseRecorder {
		t.Helper()
		router := gin.New()
		router.Use(HTTPMetrics(cfg))
		router.GET("/api/v1/payments", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))
		return w
	}

	t.Run("nil meter provider is a pass-through", func(t *testing.T) {
		w := serve(t, HTTPMetricsConfig{Enabled: true})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled config is a pass-through", func(t *testing.T) {
		w := serve(t, HTTPMetricsConfig{Enabled: false})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMetricsTenantID(t *testing.T) {
	newContext := func() *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
		return c
	}

	t.Run("reads the JWT claim", func(t *testing.T) {
		c := newContext()
		c.Set(JWTTenantIDKey, "shop-1")

		assert.Equal(t, "shop-1", metricsTenantID(c))
	})

	t.Run("empty without a claim", func(t *testing.T) {
		assert.Empty(t, metricsTenantID(newContext()))
	})

	t.Run("non-string claim is ignored", func(t *testing.T) {
		c := newContext()
		c.Set(JWTTenantIDKey, 42)

		assert.Empty(t, metricsTenantID(c))
	})
}
