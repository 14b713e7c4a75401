package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfigs(t *testing.T) {
	t.Run("default is console on stdout", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})

	t.Run("production is json on stdout", func(t *testing.T) {
		cfg := ProductionConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})
}

func TestNew(t *testing.T) {
	configs := map[string]*Config{
		"default":    DefaultConfig(),
		"production": ProductionConfig(),
		"debug console": {
			Level:      "debug",
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02T15:04:05Z07:00",
		},
		"json to stderr": {
			Level:      "info",
			Format:     "json",
			Output:     "stderr",
			TimeFormat: "2006-01-02T15:04:05Z07:00",
		},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			log, err := New(cfg)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestBuildWriter(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", "STDOUT"} {
		t.Run(output, func(t *testing.T) {
			assert.NotNil(t, buildWriter(output))
		})
	}

	t.Run("file path", func(t *testing.T) {
		tmpFile, err := os.CreateTemp("", "backoffice-log-*.log")
		require.NoError(t, err)
		defer os.Remove(tmpFile.Name())
		tmpFile.Close()

		assert.NotNil(t, buildWriter(tmpFile.Name()))
	})
}

func TestBuildEncoder(t *testing.T) {
	console := buildEncoder(&Config{Format: "console", TimeFormat: "2006-01-02T15:04:05Z07:00"})
	assert.NotNil(t, console)

	jsonEnc := buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"})
	assert.NotNil(t, jsonEnc)
}

func TestSync(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)

	// Sync on stdout may return EINVAL depending on the platform; the point
	// is that it does not panic.
	_ = Sync(log)
}

func TestJSONOutputShape(t *testing.T) {
	var buf bytes.Buffer

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	log := zap.New(core)

	log.Info("statement built", zap.String("party", "Sharma Traders"))

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "statement built", output["msg"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, "Sharma Traders", output["party"])
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer

	encoderConfig := zapcore.EncoderConfig{
		LevelKey:    "level",
		MessageKey:  "msg",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	log := zap.New(core)

	log.Debug("debug message")
	assert.False(t, strings.Contains(buf.String(), "debug message"))

	log.Info("info message")
	assert.True(t, strings.Contains(buf.String(), "info message"))
}
