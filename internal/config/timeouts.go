// Package config provides configuration structures and defaults for the application.
package config

import "time"

// Timeouts defines standard timeout values used throughout the application.
type Timeouts struct {
	// Connect bounds warehouse connection setup, including credential resolution
	Connect time.Duration

	// Storage is the timeout for a single object storage request
	Storage time.Duration

	// DB is the timeout for opening the row count cache database
	DB time.Duration

	// Query bounds a non-interactive select or count
	Query time.Duration
}

// DefaultTimeouts returns the default timeout configuration.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Connect: 30 * time.Second,
		Storage: 60 * time.Second,
		DB:      5 * time.Second,
		Query:   30 * time.Minute,
	}
}
