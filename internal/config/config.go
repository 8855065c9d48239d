// Package config loads bootstrap configuration for the GRIP demo server and
// CLI from environment variables and an optional YAML endpoints file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jamesprial/go-grip/internal/auth"
	"github.com/jamesprial/go-grip/internal/publisher"
)

// Config holds the complete configuration in a flat structure.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP server (e.g., ":8080").
	Addr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Stream holds are kept open by the proxy, not by this server.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// LogLevel is one of debug, info, warn or error.
	LogLevel string

	// GRIP settings
	// Endpoints are the proxies items are published to.
	Endpoints []Endpoint

	// VerifyKey validates Grip-Sig on inbound requests. Empty disables the check
	// unless VerifyJWKSURL is set.
	VerifyKey string

	// VerifyIss is the required iss claim of Grip-Sig tokens.
	VerifyIss string

	// VerifyJWKSURL resolves Grip-Sig keys from a remote key set.
	VerifyJWKSURL string

	// JWKSCacheTTL is how long keys from VerifyJWKSURL are cached.
	JWKSCacheTTL time.Duration

	// ClockSkew is the allowed clock skew for Grip-Sig expiry checks.
	ClockSkew time.Duration

	// PublishConcurrency caps concurrent endpoint publishes; 0 means unlimited.
	PublishConcurrency int

	// PublishTimeout bounds each publish request.
	PublishTimeout time.Duration

	// PublishToken guards the demo POST /publish/{channel} route with
	// "Authorization: Bearer <token>". Empty leaves the route open.
	PublishToken string
}

// Endpoint is one proxy entry, given either as a GRIP URI or as explicit
// fields. Keys accept the "base64:" prefix.
type Endpoint struct {
	GripURI    string `yaml:"grip_uri"`
	ControlURI string `yaml:"control_uri"`
	ControlIss string `yaml:"control_iss"`
	Key        string `yaml:"key"`
	User       string `yaml:"user"`
	Pass       string `yaml:"pass"`
	Token      string `yaml:"token"`
	VerifyIss  string `yaml:"verify_iss"`
	VerifyKey  string `yaml:"verify_key"`
}

type fileConfig struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// Load reads configuration from environment variables and returns a Config.
// It sets default values for optional fields and validates the configuration.
func Load() (*Config, error) {
	readTimeout, err := parseDurationWithDefault("SERVER_READ_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := parseDurationWithDefault("SERVER_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := parseDurationWithDefault("SERVER_IDLE_TIMEOUT", "120s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_IDLE_TIMEOUT: %w", err)
	}

	jwksCacheTTL, err := parseDurationWithDefault("GRIP_JWKS_CACHE_TTL", "10m")
	if err != nil {
		return nil, fmt.Errorf("invalid GRIP_JWKS_CACHE_TTL: %w", err)
	}

	clockSkew, err := parseDurationWithDefault("GRIP_CLOCK_SKEW", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid GRIP_CLOCK_SKEW: %w", err)
	}

	publishTimeout, err := parseDurationWithDefault("GRIP_PUBLISH_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid GRIP_PUBLISH_TIMEOUT: %w", err)
	}

	concurrency, err := parseIntWithDefault("GRIP_PUBLISH_CONCURRENCY", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid GRIP_PUBLISH_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Addr:         getEnvWithDefault("SERVER_ADDR", ":8080"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),

		VerifyKey:          os.Getenv("GRIP_VERIFY_KEY"),
		VerifyIss:          os.Getenv("GRIP_VERIFY_ISS"),
		VerifyJWKSURL:      os.Getenv("GRIP_VERIFY_JWKS_URL"),
		JWKSCacheTTL:       jwksCacheTTL,
		ClockSkew:          clockSkew,
		PublishConcurrency: concurrency,
		PublishTimeout:     publishTimeout,
		PublishToken:       os.Getenv("GRIP_PUBLISH_TOKEN"),
	}

	for _, uri := range parseCommaSeparated("GRIP_URL") {
		cfg.Endpoints = append(cfg.Endpoints, Endpoint{GripURI: uri})
	}

	if path := os.Getenv("GRIP_CONFIG"); path != "" {
		endpoints, err := LoadEndpointsFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Endpoints = append(cfg.Endpoints, endpoints...)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEndpointsFile reads the endpoints list from a YAML file.
func LoadEndpointsFile(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read GRIP_CONFIG: %w", err)
	}
	return ParseEndpoints(data)
}

// ParseEndpoints decodes a YAML document of the form
//
//	endpoints:
//	  - grip_uri: http://localhost:5561/?iss=realm&key=base64:c2VjcmV0
//	  - control_uri: https://proxy.example.com
//	    token: abc
func ParseEndpoints(data []byte) ([]Endpoint, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse endpoints: %w", err)
	}
	return fc.Endpoints, nil
}

// EndpointConfig resolves the entry into a publisher endpoint.
func (e Endpoint) EndpointConfig() (publisher.EndpointConfig, error) {
	var cfg publisher.EndpointConfig
	if e.GripURI != "" {
		parsed, err := publisher.ParseGripURI(e.GripURI)
		if err != nil {
			return publisher.EndpointConfig{}, err
		}
		cfg = parsed
	} else {
		cfg.ControlURI = e.ControlURI
		cfg.ControlIss = e.ControlIss
		cfg.VerifyIss = e.VerifyIss
		if e.Key != "" {
			key, err := auth.DecodeKeyParam(e.Key)
			if err != nil {
				return publisher.EndpointConfig{}, err
			}
			cfg.Key = key
		}
		if e.VerifyKey != "" {
			key, err := auth.DecodeKeyParam(e.VerifyKey)
			if err != nil {
				return publisher.EndpointConfig{}, err
			}
			cfg.VerifyKey = key
		}
	}

	switch {
	case e.User != "":
		cfg.Auth = auth.Basic{User: e.User, Pass: e.Pass}
	case e.Token != "":
		cfg.Auth = auth.Bearer{Token: e.Token}
	}
	return cfg, nil
}

// EndpointConfigs resolves every configured endpoint.
func (c *Config) EndpointConfigs() ([]publisher.EndpointConfig, error) {
	out := make([]publisher.EndpointConfig, 0, len(c.Endpoints))
	for i, e := range c.Endpoints {
		cfg, err := e.EndpointConfig()
		if err != nil {
			return nil, fmt.Errorf("endpoint %d: %w", i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvWithDefault returns the environment variable value or the default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseCommaSeparated parses a comma-separated environment variable into a string slice.
// Empty values are filtered out. Returns nil if the environment variable is not set.
func parseCommaSeparated(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseDurationWithDefault parses a duration from an environment variable.
// Returns an error if the value is set but cannot be parsed.
func parseDurationWithDefault(key, defaultValue string) (time.Duration, error) {
	value := getEnvWithDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", value, err)
	}
	return duration, nil
}

func parseIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse integer %q: %w", value, err)
	}
	return n, nil
}

// String returns a string representation of the configuration (for debugging).
// Keys and credentials are redacted.
func (c *Config) String() string {
	uris := make([]string, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		if e.ControlURI != "" {
			uris = append(uris, e.ControlURI)
		} else {
			uris = append(uris, redactGripURI(e.GripURI))
		}
	}
	return fmt.Sprintf("Config{Addr: %s, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, LogLevel: %s, Endpoints: %v, VerifyKey: %s, VerifyIss: %s, VerifyJWKSURL: %s, PublishConcurrency: %d, PublishTimeout: %v, PublishToken: %s}",
		c.Addr, c.ReadTimeout, c.WriteTimeout, c.IdleTimeout, c.LogLevel,
		uris, redact(c.VerifyKey), c.VerifyIss, c.VerifyJWKSURL,
		c.PublishConcurrency, c.PublishTimeout, redact(c.PublishToken))
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}

// redactGripURI drops the query, which may carry keys.
func redactGripURI(uri string) string {
	base, _, _ := strings.Cut(uri, "?")
	return base
}
