package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeBackend(); err != nil {
		return err
	}
	c.normalizeCache()
	if err := c.normalizePrefs(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeBackend() error {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendBaseURL
	}
	c.Backend.APIToken = strings.TrimSpace(c.Backend.APIToken)
	if c.Backend.APIToken == "" {
		if value, ok := os.LookupEnv("SLIDESPEAKER_API_TOKEN"); ok {
			c.Backend.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeCache() {
	if c.Cache.StaleSeconds <= 0 {
		c.Cache.StaleSeconds = defaultStaleSeconds
	}
	if c.Cache.PollSeconds <= 0 {
		c.Cache.PollSeconds = defaultPollSeconds
	}
	if c.Cache.DetailTTLMinutes <= 0 {
		c.Cache.DetailTTLMinutes = defaultDetailTTLMinutes
	}
	if c.Cache.ListTTLMinutes <= 0 {
		c.Cache.ListTTLMinutes = defaultListTTLMinutes
	}
	if c.Cache.SweepMinutes <= 0 {
		c.Cache.SweepMinutes = defaultSweepMinutes
	}
}

func (c *Config) normalizePrefs() error {
	if strings.TrimSpace(c.Prefs.DBPath) == "" {
		c.Prefs.DBPath = defaultPrefsDBPath
	}
	var err error
	if c.Prefs.DBPath, err = expandPath(c.Prefs.DBPath); err != nil {
		return fmt.Errorf("prefs.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
