// Package middleware provides HTTP middleware for the back office API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs copied from headers into span
// attributes. Anything longer is truncated.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns the tracing configuration used in production.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{ServiceName: "backoffice", Enabled: true}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin so every request gets a server span named
// "METHOD route_pattern", then annotates it with request_id, tenant_id and
// user_id once those are known.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otel := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otel(c)

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			annotateSpan(c, span)
		}
	}
}

func annotateSpan(c *gin.Context, span trace.Span) {
	if requestID := spanRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID := spanTenantID(c); tenantID != "" {
		span.SetAttributes(attribute.String("tenant_id", tenantID))
	}
	if userID := spanUserID(c); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
}

// spanRequestID prefers the ID assigned by the RequestID middleware and
// falls back to the caller-supplied header, truncated to a sane length.
func spanRequestID(c *gin.Context) string {
	if v, exists := c.Get("request_id"); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}

	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		headerID = headerID[:MaxRequestIDLength]
	}
	return headerID
}

// spanTenantID trusts the JWT claim. A header value is only accepted when it
// parses as a UUID, which keeps arbitrary caller input out of the trace.
func spanTenantID(c *gin.Context) string {
	if v, exists := c.Get(JWTTenantIDKey); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}

	headerTenantID := c.GetHeader("X-Tenant-ID")
	if headerTenantID == "" {
		return ""
	}
	if _, err := uuid.Parse(headerTenantID); err != nil {
		return ""
	}
	return headerTenantID
}

func spanUserID(c *gin.Context) string {
	if v, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// SpanErrorMarker marks the request span as failed for 4xx and 5xx
// responses. Place it after the Tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		message := http.StatusText(statusCode)
		if message == "" {
			message = "Request Failed"
		}
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}
