package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("RequiresPostgresPassword", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "")
		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.Error(t, err)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Repositories.Postgres.Host)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "session_token", cfg.Session.CookieName)
		assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
		assert.False(t, cfg.Session.CookieSecure)
	})

	t.Run("SessionTTLFromEnv", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("SESSION_TTL", "30m")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	})

	t.Run("InvalidTTLFallsBack", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("SESSION_TTL", "soon")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	})

	t.Run("SecureCookieFromEnv", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("SESSION_COOKIE_SECURE", "true")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Session.CookieSecure)
	})
}
