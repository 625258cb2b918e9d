// Package config provides Viper-based configuration management for jifmactl
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete jifmactl configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Display DisplayConfig `mapstructure:"display"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`

	// File is the config file that was read, empty when running on defaults
	File string `mapstructure:"-"`
}

// APIConfig contains the REST API connection settings
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum number of requests per second; 0 disables pacing
	RateLimit float64 `mapstructure:"rate_limit"`
}

// SessionConfig selects where the login session is kept
type SessionConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	RedisURL    string `mapstructure:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// DisplayConfig contains presentation settings
type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// AdminConfig contains admin console settings
type AdminConfig struct {
	MessageTTL time.Duration `mapstructure:"message_ttl"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Session backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Load reads configuration from file and environment variables. A non-empty apiURL
// overrides api.base_url.
func Load(cfgFile, apiURL string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".jifmactl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/jifmactl")
	}

	// JIFMACTL_API_BASE_URL maps to api.base_url
	v.SetEnvPrefix("JIFMACTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if apiURL != "" {
		v.Set("api.base_url", apiURL)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.timeout", 0)
	v.SetDefault("api.rate_limit", 0)

	v.SetDefault("session.backend", BackendFile)
	v.SetDefault("session.path", "")
	v.SetDefault("session.redis_url", "redis://localhost:6379/0")
	v.SetDefault("session.redis_prefix", "jifmactl:")

	v.SetDefault("display.timezone", "America/Fortaleza")

	v.SetDefault("admin.message_ttl", 3*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api base url: %q (must be an http or https URL)", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("invalid api timeout: %s (must not be negative)", cfg.API.Timeout)
	}
	if cfg.API.RateLimit < 0 {
		return fmt.Errorf("invalid api rate limit: %v (must not be negative)", cfg.API.RateLimit)
	}

	switch cfg.Session.Backend {
	case BackendFile:
	case BackendRedis:
		if cfg.Session.RedisURL == "" {
			return fmt.Errorf("session backend redis requires session.redis_url")
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be file or redis)", cfg.Session.Backend)
	}

	if _, err := time.LoadLocation(cfg.Display.Timezone); err != nil {
		return fmt.Errorf("invalid display timezone: %s: %w", cfg.Display.Timezone, err)
	}

	if cfg.Admin.MessageTTL < 0 {
		return fmt.Errorf("invalid admin message ttl: %s (must not be negative)", cfg.Admin.MessageTTL)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	return nil
}

// Location returns the display timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
