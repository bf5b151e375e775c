package agent

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultAPIURL is the production playit API endpoint.
const DefaultAPIURL = "https://api.playit.gg"

// Default intervals and timeouts.
const (
	// DefaultPollInterval is the delay between health checks while connected
	// and between reconnection attempts after a failure.
	DefaultPollInterval = 3 * time.Second

	// DefaultHTTPTimeout bounds individual relay API calls.
	DefaultHTTPTimeout = 30 * time.Second
)

// Config holds the configuration for one agent run.
// It is immutable once the agent is created; a later run with different
// settings requires a new agent.
type Config struct {
	// SecretKey authenticates the agent against the relay API. Required.
	SecretKey string

	// APIURL is the relay API endpoint. Defaults to DefaultAPIURL.
	APIURL string

	// PollInterval is the health-check and reconnect cadence.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// HTTPTimeout bounds individual relay API calls.
	// Defaults to DefaultHTTPTimeout.
	HTTPTimeout time.Duration
}

// SetDefaults fills in zero-valued optional fields.
func (c *Config) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

// Validate checks the configuration for errors.
// Call SetDefaults first; Validate does not coerce missing values.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is required", ErrInvalidConfig)
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: api url %q is not an absolute URL", ErrInvalidConfig, c.APIURL)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive", ErrInvalidConfig)
	}

	return nil
}
