package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGormLogger(level zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func TestNewGormLogger(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)
		assert.Equal(t, gormlogger.Info, gl.logLevel)
		assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
		assert.True(t, gl.ignoreRecordNotFoundError)
	})

	t.Run("options override defaults", func(t *testing.T) {
		gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info,
			WithSlowThreshold(500*time.Millisecond),
			WithIgnoreRecordNotFoundError(false),
		)
		assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
		assert.False(t, gl.ignoreRecordNotFoundError)
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)

	copied := gl.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gl.logLevel, "original keeps its level")
	copiedGl, ok := copied.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, copiedGl.logLevel)
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info passes through", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)
		gl.Info(context.Background(), "migrating %s", "party_payments")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrating party_payments")
	})

	t.Run("silent suppresses info", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Silent)
		gl.Info(context.Background(), "migrating")
		assert.Empty(t, recorded.All())
	})

	t.Run("warn logs at warn level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn)
		gl.Warn(context.Background(), "retrying %d", 2)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Contains(t, logs[0].Message, "retrying 2")
	})

	t.Run("error logs at error level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)
		gl.Error(context.Background(), "connection lost")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	statement := func() (string, int64) {
		return "SELECT * FROM party_payments WHERE tenant_id = ?", 5
	}

	t.Run("failed statement logs SQL Error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), statement, errors.New("deadlock detected"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SQL Error")
	})

	t.Run("record not found is swallowed by default", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), statement, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow statement logs SLOW SQL at warn", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn,
			WithSlowThreshold(time.Nanosecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), statement, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("fast statement logs SQL Query at debug", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)

		gl.Trace(context.Background(), time.Now(), statement, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SQL Query")
	})

	t.Run("silent level traces nothing", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), statement, nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("request id from context lands in fields", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")

		gl.Trace(ctx, time.Now(), statement, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		var got string
		for _, field := range logs[0].Context {
			if field.Key == "request_id" {
				got = field.String
			}
		}
		assert.Equal(t, "req-42", got)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
