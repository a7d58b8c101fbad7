package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Account lock: one authenticated Bluesky session per account at a time.
// The TTL bounds how long a crashed holder can block others.
const (
	AccountLockTTL          = 60 * time.Second
	AccountLockPollInterval = 250 * time.Millisecond
)

// Default safety limits, overridable per account or via settings.
const (
	DefaultMaxActionsPerHour    = 20
	DefaultMaxActionsPerDay     = 200
	DefaultCooldownMinutes      = 60
	DefaultDelayBetweenActions  = 5 * time.Second
	RateLimitWarnUtilization    = 0.8
)
