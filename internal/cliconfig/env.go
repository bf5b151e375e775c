package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (PLAYIT_*).
// Env values override file config but are overridden by explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("secret-key", os.Getenv("PLAYIT_SECRET_KEY"), &cfg.SecretKey)
	s.setString("api-url", os.Getenv("PLAYIT_API_URL"), &cfg.APIURL)

	if err := s.setDuration("poll", os.Getenv("PLAYIT_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("PLAYIT_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	return nil
}
