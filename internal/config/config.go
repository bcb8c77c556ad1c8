// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by MergeWithDefaults and Default.
const (
	DefaultBackendURL     = "http://localhost:8000"
	DefaultPort           = 8080
	DefaultBackendTimeout = 5 * time.Minute
	DefaultMaxUploadBytes = 10 << 20
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
)

// Duration is a time.Duration that reads from JSON as either a Go duration
// string ("90s") or a number of seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Config is the runtime configuration. All fields are optional in a config
// file; missing values come from the environment or defaults.
type Config struct {
	// Backend
	BackendURL     string   `json:"backend_url,omitempty"`     // Base URL of the analysis backend
	BackendTimeout Duration `json:"backend_timeout,omitempty"` // Upper bound on a single analysis

	// HTTP server
	Port           int   `json:"port,omitempty"`
	MaxUploadBytes int64 `json:"max_upload_bytes,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL; history is disabled when empty

	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // json or console
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		BackendURL:     DefaultBackendURL,
		BackendTimeout: Duration(DefaultBackendTimeout),
		Port:           DefaultPort,
		MaxUploadBytes: DefaultMaxUploadBytes,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// Timeout returns the backend timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.BackendTimeout)
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset or unparsable
// variables leave the field zero so that later merges can fill it.
//
// BACKEND_URL takes precedence over the legacy FASTAPI_BACKEND_URL.
func FromEnv() Config {
	var cfg Config

	cfg.BackendURL = os.Getenv("BACKEND_URL")
	if cfg.BackendURL == "" {
		cfg.BackendURL = os.Getenv("FASTAPI_BACKEND_URL")
	}

	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.BackendTimeout = Duration(d)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.LogFormat = os.Getenv("LOG_FORMAT")

	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'backend_url' must be an absolute URL, got %q", c.BackendURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config error: 'backend_url' scheme must be http or https")
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.BackendTimeout < 0 {
		return fmt.Errorf("config error: 'backend_timeout' must be non-negative")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console")
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// Layering is done by chaining: flags.MergeWithDefaults(env.MergeWithDefaults(file...)).
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BackendURL == "" {
		result.BackendURL = defaults.BackendURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	if result.BackendTimeout == 0 {
		result.BackendTimeout = defaults.BackendTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}

	result.BackendURL = strings.TrimRight(result.BackendURL, "/")

	return result
}

// Resolve layers the environment over an optional config file over defaults,
// and validates the result.
func Resolve(path string) (*Config, error) {
	var fileCfg Config
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		fileCfg = *loaded
	}

	env := FromEnv()
	merged := env.MergeWithDefaults(fileCfg.MergeWithDefaults(Default()))
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
