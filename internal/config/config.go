package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	EncryptionKey      string `env:"ENCRYPTION_KEY"`
	BlueskyServiceURL  string `env:"BLUESKY_SERVICE_URL" envDefault:"https://bsky.social"`
	BlueskyIdentifier  string `env:"BLUESKY_IDENTIFIER"`
	BlueskyAppPassword string `env:"BLUESKY_APP_PASSWORD"`
	LockTTLSeconds     int    `env:"ACCOUNT_LOCK_TTL_SECONDS" envDefault:"60"`
	LogRetentionDays   int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

func (c *Config) LogRetention() time.Duration {
	return time.Duration(c.LogRetentionDays) * 24 * time.Hour
}

func (c *Config) Validate(isProduction bool) error {
	if c.EncryptionKey != "" && len(c.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(c.EncryptionKey))
	}

	if !strings.HasPrefix(c.BlueskyServiceURL, "http://") && !strings.HasPrefix(c.BlueskyServiceURL, "https://") {
		return fmt.Errorf("BLUESKY_SERVICE_URL must be an http(s) URL")
	}

	if isProduction {
		if c.EncryptionKey == "" {
			return fmt.Errorf("ENCRYPTION_KEY is required in production: account app passwords are stored encrypted")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.BlueskyIdentifier == "" || c.BlueskyAppPassword == "" {
			log.Warn().Msg("shared Bluesky credentials are not configured: account-based logins only")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
