package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type tracingContextKey string

// queryStartTimeKey carries the query start time from the before-callback to
// the after-callback so slow queries can be flagged on the active span.
const queryStartTimeKey tracingContextKey = "otel_query_start_time"

// WithQueryStartTime stamps the context with the current time as the query
// start.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// DBTracingConfig controls span generation for database queries.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL includes complete SQL statements in spans. Leave off in
	// production, statements can contain customer data.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
	// WithoutVariables strips bind parameters from recorded statements.
	WithoutVariables bool
}

// DefaultDBTracingConfig returns the tracing defaults: disabled, no SQL
// text, 200ms slow query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin wires otelgorm into a GORM connection and layers slow
// query detection on top of the spans it produces.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs the otelgorm plugin plus the timing callbacks.
// A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// registerTimingCallbacks stamps the start time before each operation and
// inspects the statement after it, once otelgorm has opened its span.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	type hook struct {
		beforeAt, afterAt callbackRegistrar
		name              string
	}
	hooks := []hook{
		{db.Callback().Create().Before("gorm:create"), db.Callback().Create().After("gorm:create"), "create"},
		{db.Callback().Query().Before("gorm:query"), db.Callback().Query().After("gorm:query"), "query"},
		{db.Callback().Update().Before("gorm:update"), db.Callback().Update().After("gorm:update"), "update"},
		{db.Callback().Delete().Before("gorm:delete"), db.Callback().Delete().After("gorm:delete"), "delete"},
		{db.Callback().Row().Before("gorm:row"), db.Callback().Row().After("gorm:row"), "row"},
		{db.Callback().Raw().Before("gorm:raw"), db.Callback().Raw().After("gorm:raw"), "raw"},
	}

	for _, h := range hooks {
		if err := h.beforeAt.Register("otel_timing:before_"+h.name, before); err != nil {
			return err
		}
		if err := h.afterAt.Register("otel_slow_query:"+h.name, p.slowQueryCallback); err != nil {
			return err
		}
	}

	return nil
}

// slowQueryCallback annotates the active span with row counts, table name,
// errors and slow query markers.
func (p *DBTracingPlugin) slowQueryCallback(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Not-found is an expected outcome, never an error on the span.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
