package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubKey = "tenants/shop-1/items/turmeric-1kg/images/front.webp"

func TestStubObjectStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the example base URL", func(t *testing.T) {
		s := NewStubObjectStorage()
		require.NotNil(t, s)
		assert.Equal(t, "https://storage.example.com", s.BaseURL)
	})

	t.Run("upload URL embeds the key and expiry", func(t *testing.T) {
		s := NewStubObjectStorage()
		url, expiresAt, err := s.GenerateUploadURL(ctx, stubKey, "image/webp", 15*time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "https://storage.example.com/upload/"+stubKey)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("download URL embeds the key and expiry", func(t *testing.T) {
		s := NewStubObjectStorage()
		url, expiresAt, err := s.GenerateDownloadURL(ctx, stubKey, time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "https://storage.example.com/download/"+stubKey)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("custom base URL is honored", func(t *testing.T) {
		s := &StubObjectStorage{BaseURL: "https://cdn.sharma-traders.test"}
		url, _, err := s.GenerateDownloadURL(ctx, stubKey, time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "https://cdn.sharma-traders.test/download/"+stubKey)
	})

	t.Run("delete is a no-op", func(t *testing.T) {
		s := NewStubObjectStorage()
		require.NoError(t, s.DeleteObject(ctx, stubKey))
	})

	t.Run("objects always exist", func(t *testing.T) {
		s := NewStubObjectStorage()
		exists, err := s.ObjectExists(ctx, stubKey)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("empty key is rejected everywhere", func(t *testing.T) {
		s := NewStubObjectStorage()

		_, _, err := s.GenerateUploadURL(ctx, "", "image/webp", 15*time.Minute)
		assert.ErrorContains(t, err, "storage key is required")

		_, _, err = s.GenerateDownloadURL(ctx, "", time.Hour)
		assert.ErrorContains(t, err, "storage key is required")

		err = s.DeleteObject(ctx, "")
		assert.ErrorContains(t, err, "storage key is required")

		exists, err := s.ObjectExists(ctx, "")
		assert.ErrorContains(t, err, "storage key is required")
		assert.False(t, exists)
	})
}
