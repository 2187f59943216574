package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultPort         = "3001"
	DefaultBaseURL      = "https://api.anthropic.com"
	DefaultAPIVersion   = "2023-06-01"
	DefaultMaxBodyBytes = 50 << 20 // 50 MB, enough for base64 image payloads
	DefaultLogLevel     = "info"

	// ExpectedKeyPrefix is what a well-formed upstream API key starts with.
	ExpectedKeyPrefix = "sk-ant-api"
)

// Config holds the process-wide relay settings read once at startup
type Config struct {
	Port                    string
	APIKey                  string
	BaseURL                 string
	APIVersion              string
	MaxBodyBytes            int64
	PropagateUpstreamStatus bool
	Environment             string
	LogLevel                string
}

// Load reads the relay configuration from environment variables.
// The API key is not validated here; a missing key only surfaces as an
// upstream authentication failure at request time.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", DefaultPort),
		APIKey:      getEnvOrDefault("VITE_CLAUDE_API_KEY", os.Getenv("ANTHROPIC_API_KEY")),
		BaseURL:     strings.TrimRight(getEnvOrDefault("ANTHROPIC_BASE_URL", DefaultBaseURL), "/"),
		APIVersion:  getEnvOrDefault("ANTHROPIC_VERSION", DefaultAPIVersion),
		Environment: strings.ToLower(getEnvOrDefault("APP_ENV", "development")),
		LogLevel:    strings.ToLower(getEnvOrDefault("LOG_LEVEL", DefaultLogLevel)),
	}

	maxBodyStr := getEnvOrDefault("RELAY_MAX_BODY_BYTES", strconv.Itoa(DefaultMaxBodyBytes))
	maxBody, err := strconv.ParseInt(maxBodyStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_MAX_BODY_BYTES value: %w", err)
	}
	if maxBody <= 0 {
		return nil, fmt.Errorf("invalid RELAY_MAX_BODY_BYTES value: must be positive, got %d", maxBody)
	}
	cfg.MaxBodyBytes = maxBody

	propagateStr := getEnvOrDefault("RELAY_PROPAGATE_UPSTREAM_STATUS", "false")
	propagate, err := strconv.ParseBool(propagateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_PROPAGATE_UPSTREAM_STATUS value: %w", err)
	}
	cfg.PropagateUpstreamStatus = propagate

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsProduction reports whether the relay runs with production logging and gin release mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
