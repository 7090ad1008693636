// Package config provides configuration loading and validation for the screener.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/schemas"
)

// Duration is a time.Duration that reads from JSON as a Go duration string ("2h", "90s").
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// Config holds the screener configuration.
// Values come from defaults, then an optional JSON file, then environment variables.
type Config struct {
	// Server
	Port           int   `json:"port,omitempty"`
	MaxUploadBytes int64 `json:"max_upload_bytes,omitempty"`

	// Storage; an empty DatabaseURL keeps the collection in memory
	DatabaseURL string `json:"database_url,omitempty"`

	// Model
	Model           string   `json:"model,omitempty"`
	AnalysisTimeout Duration `json:"analysis_timeout,omitempty"` // zero means no timeout

	// Sessions
	SessionSecret string   `json:"session_secret,omitempty"` // HMAC key for session cookies; random when empty
	SessionTTL    Duration `json:"session_ttl,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           8080,
		MaxUploadBytes: 10 << 20,
		Model:          llm.DefaultModel,
		SessionTTL:     Duration(2 * time.Hour),
	}
}

// Load builds the effective configuration.
// path may be empty, in which case only defaults and environment are used.
func Load(path string) (*Config, error) {
	base := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		base = fileCfg.MergeWithDefaults(base)
	}

	if err := base.applyEnv(); err != nil {
		return nil, err
	}

	if base.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		base.SessionSecret = secret
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &base, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

	if err := schemas.ValidateConfig(data); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be positive")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("config error: 'model' is required")
	}
	if c.AnalysisTimeout < 0 {
		return fmt.Errorf("config error: 'analysis_timeout' must be non-negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config error: 'session_ttl' must be positive")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.AnalysisTimeout == 0 {
		result.AnalysisTimeout = defaults.AnalysisTimeout
	}
	if result.SessionSecret == "" {
		result.SessionSecret = defaults.SessionSecret
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}

	return result
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// applyEnv overlays environment variables that are set.
func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES: %v", err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ANALYSIS_TIMEOUT: %v", err)
		}
		c.AnalysisTimeout = Duration(d)
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL: %v", err)
		}
		c.SessionTTL = Duration(d)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
