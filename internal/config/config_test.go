package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.AuthRateLimit)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.AuthRateLimit)
}

func TestLoadConfigRejects(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("STORE", "firestore")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("production without secret", func(t *testing.T) {
		t.Setenv("STORE", "memory")
		t.Setenv("ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
