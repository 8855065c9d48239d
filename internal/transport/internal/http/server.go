// Package http provides HTTP server implementation for the transport layer.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jamesprial/go-grip/internal/config"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

// defaultShutdownTimeout bounds Shutdown when the caller's context has no deadline.
const defaultShutdownTimeout = 30 * time.Second

// server implements transportcore.Server using net/http.Server.
type server struct {
	httpServer *http.Server
	mu         sync.RWMutex
	listener   net.Listener
}

// NewServer creates a new HTTP server with the provided configuration and
// handler. net/http's internal errors are routed to logger at warn level.
// If logger is nil, it uses the default slog logger.
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) transportcore.Server {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if handler == nil {
		panic("handler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server. A context without a deadline
// is bounded by defaultShutdownTimeout.
func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return transportcore.ErrServerClosed
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// Addr returns the bound address once Start has run, otherwise the
// configured one.
func (s *server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}
