package cache

import (
	"time"

	"paimon-cli/internal/config"
)

// Config holds all configuration for the cache package.
type Config struct {
	// Database settings
	CachePath string
	DBTimeout time.Duration

	// MaxAge expires entries older than this, even when the snapshot matches.
	// Zero keeps entries until the table changes.
	MaxAge time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	timeouts := config.DefaultTimeouts()

	return &Config{
		CachePath: config.CacheFileName,
		DBTimeout: timeouts.DB,
	}
}

// WithCachePath sets the cache database path.
func (c *Config) WithCachePath(path string) *Config {
	c.CachePath = path
	return c
}

// WithDBTimeout sets the database timeout.
func (c *Config) WithDBTimeout(timeout time.Duration) *Config {
	c.DBTimeout = timeout
	return c
}

// WithMaxAge sets how long an entry stays valid.
func (c *Config) WithMaxAge(age time.Duration) *Config {
	c.MaxAge = age
	return c
}
