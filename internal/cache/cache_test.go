package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	list := NewMemoryRevocationList()
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(ctx, "tok-1", now.Add(time.Hour)))
	require.NoError(t, list.Revoke(ctx, "tok-expired", now.Add(-time.Minute)))

	revoked, err := list.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "tok-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = list.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry outlives its token")
}

func TestMemoryRateLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		ok, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "hit %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")

	now = now.Add(time.Minute)
	ok, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "window resets")
}

func TestMemoryRateLimiter_DropsExpiredWindows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter(5, time.Minute)
	limiter.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := limiter.Allow(ctx, ip)
		require.NoError(t, err)
	}
	assert.Len(t, limiter.windows, 3)

	now = now.Add(2 * time.Minute)
	_, err := limiter.Allow(ctx, "10.0.0.4")
	require.NoError(t, err)
	assert.Len(t, limiter.windows, 1)
	assert.Contains(t, limiter.windows, "10.0.0.4")
}
