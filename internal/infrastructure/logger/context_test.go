package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithContextRoundTrip(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)

	ctx := WithContext(context.Background(), log)

	assert.NotNil(t, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())

	// A missing logger yields a usable no-op, never nil.
	require.NotNil(t, log)
	assert.NotPanics(t, func() {
		log.Info("statement built")
		log.With(zap.String("party_id", "p-1")).Warn("payment source degraded")
	})
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")

	log := FromContext(ctx)

	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("test") })
}

func TestEnrichment(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)

	t.Run("request id", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), log, "req-123")
		assert.NotNil(t, enriched)
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("tenant id", func(t *testing.T) {
		ctx, enriched := WithTenantID(context.Background(), log, "tenant-456")
		assert.NotNil(t, enriched)
		assert.Equal(t, "tenant-456", GetTenantID(ctx))
	})

	t.Run("user id", func(t *testing.T) {
		ctx, enriched := WithUserID(context.Background(), log, "user-789")
		assert.NotNil(t, enriched)
		assert.Equal(t, "user-789", GetUserID(ctx))
	})

	t.Run("chained enrichment keeps all ids", func(t *testing.T) {
		ctx := context.Background()
		enriched := log
		ctx, enriched = WithRequestID(ctx, enriched, "req-1")
		ctx, enriched = WithTenantID(ctx, enriched, "tenant-1")
		ctx, enriched = WithUserID(ctx, enriched, "user-1")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "tenant-1", GetTenantID(ctx))
		assert.Equal(t, "user-1", GetUserID(ctx))
		assert.NotNil(t, enriched)
	})

	t.Run("later request id overrides earlier", func(t *testing.T) {
		ctx, _ := WithRequestID(context.Background(), log, "first-id")
		ctx, _ = WithRequestID(ctx, log, "second-id")
		assert.Equal(t, "second-id", GetRequestID(ctx))
	})

	t.Run("enriched logger replaces the one in context", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), log, "req-test")
		assert.NotEqual(t, log, enriched)
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestGetters_Missing(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestContextKeysAreDistinct(t *testing.T) {
	keys := []contextKey{LoggerKey, RequestIDKey, TenantIDKey, UserIDKey}
	seen := map[contextKey]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate context key %q", k)
		seen[k] = true
	}
}
