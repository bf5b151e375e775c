// Package cliconfig layers CLI agent configuration from defaults, a TOML
// config file, environment variables, and flags, in that precedence order.
package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rooootdev/playit-ios/pkg/agent"
)

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the package logger used by the CLI.
func Logger() zerolog.Logger {
	return logger
}

// Config is the CLI-facing agent configuration before validation.
type Config struct {
	SecretKey    string
	APIURL       string
	PollInterval time.Duration
	HTTPTimeout  time.Duration

	// WatchConfig restarts the agent when the config file changes.
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		APIURL:       agent.DefaultAPIURL,
		PollInterval: agent.DefaultPollInterval,
		HTTPTimeout:  agent.DefaultHTTPTimeout,
		SecretKey:    os.Getenv("PLAYIT_SECRET_KEY"),
	}
}

// AgentConfig converts to the library configuration.
func (c Config) AgentConfig() agent.Config {
	return agent.Config{
		SecretKey:    c.SecretKey,
		APIURL:       c.APIURL,
		PollInterval: c.PollInterval,
		HTTPTimeout:  c.HTTPTimeout,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	cfg := c.AgentConfig()
	cfg.SetDefaults()
	return cfg.Validate()
}

// configSetter helps apply configuration values while respecting flag
// precedence. A value is only applied if the corresponding flag has not been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
