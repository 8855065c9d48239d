package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a valid configuration for testing.
// Tests can override specific fields as needed.
func validConfig() *Config {
	return &Config{
		Addr:           ":8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		LogLevel:       "info",
		Endpoints:      []Endpoint{{GripURI: "http://localhost:5561"}},
		JWKSCacheTTL:   10 * time.Minute,
		ClockSkew:      30 * time.Second,
		PublishTimeout: 30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:        "empty Addr",
			modify:      func(c *Config) { c.Addr = "" },
			wantErr:     true,
			errContains: "SERVER_ADDR",
		},
		{
			name:        "zero read timeout",
			modify:      func(c *Config) { c.ReadTimeout = 0 },
			wantErr:     true,
			errContains: "SERVER_READ_TIMEOUT",
		},
		{
			name:        "negative write timeout",
			modify:      func(c *Config) { c.WriteTimeout = -time.Second },
			wantErr:     true,
			errContains: "SERVER_WRITE_TIMEOUT",
		},
		{
			name:   "zero idle timeout allowed",
			modify: func(c *Config) { c.IdleTimeout = 0 },
		},
		{
			name:        "negative idle timeout",
			modify:      func(c *Config) { c.IdleTimeout = -1 },
			wantErr:     true,
			errContains: "SERVER_IDLE_TIMEOUT",
		},
		{
			name:        "unknown log level",
			modify:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errContains: "LOG_LEVEL",
		},
		{
			name:   "no endpoints allowed",
			modify: func(c *Config) { c.Endpoints = nil },
		},
		{
			name:        "endpoint without uri",
			modify:      func(c *Config) { c.Endpoints = []Endpoint{{Token: "x"}} },
			wantErr:     true,
			errContains: "is required",
		},
		{
			name: "endpoint with both uris",
			modify: func(c *Config) {
				c.Endpoints = []Endpoint{{GripURI: "http://a", ControlURI: "http://b"}}
			},
			wantErr:     true,
			errContains: "mutually exclusive",
		},
		{
			name: "endpoint with user and token",
			modify: func(c *Config) {
				c.Endpoints = []Endpoint{{ControlURI: "http://a", User: "u", Token: "t"}}
			},
			wantErr:     true,
			errContains: "user and token",
		},
		{
			name:        "control uri wrong scheme",
			modify:      func(c *Config) { c.Endpoints = []Endpoint{{ControlURI: "ftp://proxy"}} },
			wantErr:     true,
			errContains: "http or https",
		},
		{
			name:        "bad key param",
			modify:      func(c *Config) { c.Endpoints = []Endpoint{{ControlURI: "http://a", Key: "base64:%%%"}} },
			wantErr:     true,
			errContains: "endpoint 0",
		},
		{
			name:        "relative jwks url",
			modify:      func(c *Config) { c.VerifyJWKSURL = "/jwks" },
			wantErr:     true,
			errContains: "GRIP_VERIFY_JWKS_URL",
		},
		{
			name: "jwks without ttl",
			modify: func(c *Config) {
				c.VerifyJWKSURL = "https://proxy.example.com/jwks"
				c.JWKSCacheTTL = 0
			},
			wantErr:     true,
			errContains: "GRIP_JWKS_CACHE_TTL",
		},
		{
			name:        "negative concurrency",
			modify:      func(c *Config) { c.PublishConcurrency = -1 },
			wantErr:     true,
			errContains: "GRIP_PUBLISH_CONCURRENCY",
		},
		{
			name:        "zero publish timeout",
			modify:      func(c *Config) { c.PublishTimeout = 0 },
			wantErr:     true,
			errContains: "GRIP_PUBLISH_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := Validate(cfg)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() error = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %q, want to contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should return error")
	}
}
