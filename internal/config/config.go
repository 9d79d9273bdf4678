// Package config provides configuration for the prefill engine's driver
// surfaces. The engine itself is a pure computation; configuration only
// covers logging and the reference date used for deterministic age
// derivation under test.
package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config carries the engine's runtime settings.
type Config struct {
	LogLevel  string `mapstructure:"PREFILL_LOG_LEVEL"`
	LogFormat string `mapstructure:"PREFILL_LOG_FORMAT"`
	// ReferenceDate (YYYY-MM-DD) pins the clock used when deriving age from
	// date of birth. Empty means wall-clock time.
	ReferenceDate string `mapstructure:"PREFILL_REFERENCE_DATE"`
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PREFILL_LOG_LEVEL", "info")
	v.SetDefault("PREFILL_LOG_FORMAT", "text")

	v.BindEnv("PREFILL_LOG_LEVEL")
	v.BindEnv("PREFILL_LOG_FORMAT")
	v.BindEnv("PREFILL_REFERENCE_DATE")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("PREFILL_LOG_LEVEL %q is not a valid level: %w", c.LogLevel, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("PREFILL_LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.ReferenceDate != "" {
		if _, err := time.Parse("2006-01-02", c.ReferenceDate); err != nil {
			return fmt.Errorf("PREFILL_REFERENCE_DATE %q is not a valid date: %w", c.ReferenceDate, err)
		}
	}
	return nil
}

// NewLogger builds a logger configured per the loaded settings.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// Clock returns the time source for the builder: the pinned reference date
// when configured, wall-clock time otherwise.
func (c *Config) Clock() func() time.Time {
	if c.ReferenceDate == "" {
		return time.Now
	}
	fixed, err := time.Parse("2006-01-02", c.ReferenceDate)
	if err != nil {
		return time.Now
	}
	return func() time.Time { return fixed }
}
