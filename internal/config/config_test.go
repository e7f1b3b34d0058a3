package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8480", cfg.Port)
	assert.Equal(t, "stackit", cfg.DBName)
	assert.NotEmpty(t, cfg.RedisURL)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:       "8480",
		JWTSecret:  "a-jwt-secret-that-is-definitely-32-chars",
		DBPassword: "strong-enough-password",
		Env:        "production",
	}

	t.Run("valid production config", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := base
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("default secret rejected in production", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("short secret rejected in production", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("weak db password rejected in production", func(t *testing.T) {
		cfg := base
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())
	})

	t.Run("development tolerates weak settings", func(t *testing.T) {
		cfg := Config{Port: "8480", JWTSecret: "dev", Env: "development"}
		assert.NoError(t, cfg.Validate())
	})
}
