package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("LockTTL converts seconds to duration", func(t *testing.T) {
		cfg := &Config{LockTTLSeconds: 90}
		assert.Equal(t, 90*time.Second, cfg.LockTTL())
	})

	t.Run("LogRetention converts days to duration", func(t *testing.T) {
		cfg := &Config{LogRetentionDays: 7}
		assert.Equal(t, 7*24*time.Hour, cfg.LogRetention())
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EncryptionKey:     "0123456789abcdef0123456789abcdef",
			BlueskyServiceURL: "https://bsky.social",
			RedisURL:          "rediss://localhost:6379",
		}
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate(false))
		assert.NoError(t, valid().Validate(true))
	})

	t.Run("rejects a wrong-length encryption key", func(t *testing.T) {
		cfg := valid()
		cfg.EncryptionKey = "too-short"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("allows empty encryption key outside production", func(t *testing.T) {
		cfg := valid()
		cfg.EncryptionKey = ""
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("requires encryption key in production", func(t *testing.T) {
		cfg := valid()
		cfg.EncryptionKey = ""
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects a non-http service URL", func(t *testing.T) {
		cfg := valid()
		cfg.BlueskyServiceURL = "bsky.social"
		assert.Error(t, cfg.Validate(false))
	})
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/outreach")
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "https://bsky.social", cfg.BlueskyServiceURL)
		assert.Equal(t, 60*time.Second, cfg.LockTTL())
		assert.Equal(t, 30*24*time.Hour, cfg.LogRetention())
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("fails without required variables", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("REDIS_URL", "")
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("REDIS_URL")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/outreach")
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("PORT", "9090")
		t.Setenv("ACCOUNT_LOCK_TTL_SECONDS", "120")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 120*time.Second, cfg.LockTTL())
	})
}
