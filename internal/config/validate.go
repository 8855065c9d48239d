package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateGrip(cfg); err != nil {
		return fmt.Errorf("invalid grip config: %w", err)
	}

	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	// 0 means no idle timeout
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", cfg.LogLevel)
	}

	return nil
}

// validateGrip validates endpoints and Grip-Sig settings.
func validateGrip(cfg *Config) error {
	for i, e := range cfg.Endpoints {
		if err := validateEndpoint(e); err != nil {
			return fmt.Errorf("endpoint %d: %w", i, err)
		}
	}

	if cfg.VerifyKey != "" && cfg.VerifyJWKSURL != "" {
		return fmt.Errorf("GRIP_VERIFY_KEY and GRIP_VERIFY_JWKS_URL are mutually exclusive")
	}

	if cfg.VerifyJWKSURL != "" {
		if err := validateHTTPURL(cfg.VerifyJWKSURL); err != nil {
			return fmt.Errorf("invalid GRIP_VERIFY_JWKS_URL: %w", err)
		}
		if cfg.JWKSCacheTTL <= 0 {
			return fmt.Errorf("GRIP_JWKS_CACHE_TTL must be positive")
		}
	}

	if cfg.ClockSkew < 0 {
		return fmt.Errorf("GRIP_CLOCK_SKEW must be non-negative")
	}

	if cfg.PublishConcurrency < 0 {
		return fmt.Errorf("GRIP_PUBLISH_CONCURRENCY must be non-negative")
	}

	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("GRIP_PUBLISH_TIMEOUT must be positive")
	}

	return nil
}

func validateEndpoint(e Endpoint) error {
	switch {
	case e.GripURI == "" && e.ControlURI == "":
		return fmt.Errorf("grip_uri or control_uri is required")
	case e.GripURI != "" && e.ControlURI != "":
		return fmt.Errorf("grip_uri and control_uri are mutually exclusive")
	case e.User != "" && e.Token != "":
		return fmt.Errorf("user and token are mutually exclusive")
	}

	if e.ControlURI != "" {
		if err := validateHTTPURL(e.ControlURI); err != nil {
			return fmt.Errorf("invalid control_uri: %w", err)
		}
	}

	// Resolving catches malformed GRIP URIs and key parameters.
	if _, err := e.EndpointConfig(); err != nil {
		return err
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q must be an absolute URL", raw)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%q must use http or https scheme", raw)
	}
	return nil
}
