package landlordauth

import (
	"errors"
	"time"

	"github.com/roomrental/landlordauth/client"
	"github.com/roomrental/landlordauth/storage"
)

// Config configures a Manager. Instances are ingested by value at Build
// time and treated as immutable afterwards.
type Config struct {
	API     APIConfig
	Retry   RetryConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the landlord backend.
type APIConfig struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds each individual request attempt; backoff waits
	// between retries come on top of it.
	Timeout time.Duration
}

/*
====================================
RETRY CONFIG
====================================
*/

// RetryConfig shapes the backoff applied to every network call.
//
// MaxRetries counts retries after the first attempt; 0 selects the default
// (3), -1 disables retries entirely. MaxJitter is the cap on the random
// slack added to each delay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig shapes the persistence layer.
type StorageConfig struct {
	Prefix string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the counter metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used by New before any
// builder overrides.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "https://roomrental.store/api/v1",
			UserAgent: "landlordauth-go",
			Timeout:   client.DefaultTimeout,
		},
		Retry: RetryConfig{
			MaxRetries: client.DefaultMaxRetries,
			BaseDelay:  client.DefaultRetryBaseDelay,
			MaxJitter:  client.DefaultRetryMaxJitter,
		},
		Storage: StorageConfig{
			Prefix: storage.DefaultPrefix,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate rejects configurations Build must not accept.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API.BaseURL required")
	}
	if c.API.Timeout < 0 {
		return errors.New("API.Timeout must be >= 0")
	}
	if c.Retry.MaxRetries < -1 {
		return errors.New("Retry.MaxRetries must be >= -1")
	}
	if c.Retry.BaseDelay < 0 {
		return errors.New("Retry.BaseDelay must be >= 0")
	}
	if c.Retry.MaxJitter < 0 {
		return errors.New("Retry.MaxJitter must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}
	return nil
}
