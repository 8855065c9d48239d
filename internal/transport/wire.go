package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamesprial/go-grip/internal/config"
	"github.com/jamesprial/go-grip/internal/instruct"
	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/sigverify"
	"github.com/jamesprial/go-grip/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/go-grip/internal/transport/internal/http"
	"github.com/jamesprial/go-grip/internal/transport/internal/middleware"
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and serves handler.
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) Server {
	return transporthttp.NewServer(cfg, handler, logger)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewGripSigMiddleware creates Grip-Sig middleware backed by validator.
func NewGripSigMiddleware(validator SigValidator, responder ErrorResponder) SigMiddleware {
	return middleware.NewGripSigMiddleware(validator, responder)
}

// NewVerifierSigValidator adapts a server-wide verifier to SigValidator.
// Every Grip-Sig header must verify against it.
func NewVerifierSigValidator(v *sigverify.Verifier) SigValidator {
	return middleware.VerifierValidator{Verifier: v}
}

// NewErrorResponder creates a JSON error responder.
// If logger is nil, it uses the default slog logger.
func NewErrorResponder(logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(logger)
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(endpoints handlers.EndpointLister, responder ErrorResponder) http.Handler {
	return handlers.NewHealthHandler(endpoints, responder)
}

// NewHoldHandler creates a long-poll or stream hold handler.
func NewHoldHandler(mode instruct.Mode, responder ErrorResponder) http.Handler {
	return handlers.NewHoldHandler(mode, responder)
}

// NewWebSocketHandler creates the WebSocket-over-HTTP echo handler.
func NewWebSocketHandler(responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewWebSocketHandler(responder, logger)
}

// NewPublishHandler creates the publish handler. newID may be nil.
func NewPublishHandler(p handlers.Publisher, responder ErrorResponder, newID func() string) http.Handler {
	return handlers.NewPublishHandler(p, responder, newID)
}

// NewBearerTokenMiddleware creates middleware requiring
// "Authorization: Bearer <token>".
func NewBearerTokenMiddleware(token string, responder ErrorResponder) Middleware {
	return middleware.NewBearerTokenMiddleware(token, responder)
}

// NewLoggingMiddleware creates request logging middleware.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Publisher fans items out to the configured proxies.
	Publisher *publisher.Publisher

	// SigValidator checks Grip-Sig. Nil uses Publisher, which verifies
	// against each endpoint's verify key.
	SigValidator SigValidator

	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// Logger is used by the middleware and handlers. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// It wires routing, middleware and handlers and returns the server and its router.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Publisher == nil {
		return nil, nil, fmt.Errorf("publisher cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	validator := cfg.SigValidator
	if validator == nil {
		validator = cfg.Publisher
	}

	responder := NewErrorResponder(logger)
	sig := NewGripSigMiddleware(validator, responder)

	router := NewRouter()
	router.Use(NewRecoveryMiddleware(responder, logger), NewLoggingMiddleware(logger))

	// Public endpoints
	router.Handle("GET /health", NewHealthHandler(cfg.Publisher, responder))
	publish := NewPublishHandler(cfg.Publisher, responder, nil)
	if token := cfg.ServerConfig.PublishToken; token != "" {
		router.With(NewBearerTokenMiddleware(token, responder)).Handle("POST /publish/{channel}", publish)
	} else {
		logger.Warn("publish endpoint has no GRIP_PUBLISH_TOKEN and is open to any client; use it locally only")
		router.Handle("POST /publish/{channel}", publish)
	}
	if cfg.Gatherer != nil {
		router.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Proxied endpoints
	proxied := router.With(sig.Verify(), sig.RequireProxied())
	proxied.Handle("GET /hold/response", NewHoldHandler(instruct.ModeResponse, responder))
	proxied.Handle("GET /hold/stream", NewHoldHandler(instruct.ModeStream, responder))
	proxied.Handle("POST /websocket", NewWebSocketHandler(responder, logger))

	server := NewServer(cfg.ServerConfig, router, logger)

	return server, router, nil
}
