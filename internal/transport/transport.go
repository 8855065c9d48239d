package transport

import (
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

// Re-export types from transportcore.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// SigValidator checks the Grip-Sig header of an inbound request.
type SigValidator = transportcore.SigValidator

// SigMiddleware inspects Grip-Sig on inbound requests.
type SigMiddleware = transportcore.SigMiddleware

// ErrorResponder writes JSON error responses.
type ErrorResponder = transportcore.ErrorResponder
