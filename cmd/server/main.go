// Package main runs the GRIP demo backend. It wires the publisher, Grip-Sig
// verification and the HTTP transport together and manages the server
// lifecycle with graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jamesprial/go-grip/internal/auth"
	"github.com/jamesprial/go-grip/internal/config"
	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/sigverify"
	"github.com/jamesprial/go-grip/internal/transport"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("server configuration loaded", "config", cfg.String())

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := publisher.NewMetrics(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	// Wire publisher
	endpoints, err := cfg.EndpointConfigs()
	if err != nil {
		log.Fatalf("failed to resolve endpoints: %v", err)
	}
	pub, err := publisher.New(endpoints,
		publisher.WithTransport(publisher.NewHTTPTransport(cfg.PublishTimeout)),
		publisher.WithLogger(logger),
		publisher.WithMetrics(metrics),
		publisher.WithConcurrency(cfg.PublishConcurrency),
	)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	slog.Info("publisher initialized",
		"endpoints", len(endpoints),
		"concurrency", cfg.PublishConcurrency,
		"timeout", cfg.PublishTimeout,
	)

	// Grip-Sig verification: a server-wide key or JWKS overrides the
	// per-endpoint verify keys.
	validator, err := newSigValidator(cfg)
	if err != nil {
		log.Fatalf("failed to create grip-sig verifier: %v", err)
	}

	// Wire transport layer
	server, _, err := transport.NewTransportServices(&transport.Config{
		ServerConfig: cfg,
		Publisher:    pub,
		SigValidator: validator,
		Gatherer:     registry,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server gracefully...")
	case err := <-serverErrCh:
		slog.Error("server error", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped successfully")
}

// newSigValidator returns nil when neither GRIP_VERIFY_KEY nor
// GRIP_VERIFY_JWKS_URL is set, leaving verification to the endpoints.
func newSigValidator(cfg *config.Config) (transport.SigValidator, error) {
	opts := []sigverify.Option{sigverify.WithLeeway(cfg.ClockSkew)}
	if cfg.VerifyIss != "" {
		opts = append(opts, sigverify.WithIssuer(cfg.VerifyIss))
	}

	var key any
	switch {
	case cfg.VerifyJWKSURL != "":
		resolver := auth.NewJWKSResolver(cfg.VerifyJWKSURL, cfg.JWKSCacheTTL, nil)
		opts = append(opts, sigverify.WithKeyFunc(resolver.Resolve))
		slog.Info("grip-sig keys resolved from jwks",
			"jwks_url", cfg.VerifyJWKSURL,
			"cache_ttl", cfg.JWKSCacheTTL,
		)
	case cfg.VerifyKey != "":
		decoded, err := auth.DecodeKeyParam(cfg.VerifyKey)
		if err != nil {
			return nil, err
		}
		key = decoded
	default:
		return nil, nil
	}

	verifier, err := sigverify.NewVerifier(key, opts...)
	if err != nil {
		return nil, err
	}
	return transport.NewVerifierSigValidator(verifier), nil
}
