// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"

	"github.com/jamesprial/go-grip/internal/publisher"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// The pattern syntax follows http.ServeMux conventions.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)

	// With returns a router sharing the same routes whose registrations
	// are additionally wrapped by middlewares, inside the current chain.
	With(middlewares ...Middleware) Router
}

// SigValidator checks the Grip-Sig header of an inbound request.
// *publisher.Publisher satisfies it.
type SigValidator interface {
	ValidateGripSig(ctx context.Context, header string) publisher.SigStatus
}

// SigMiddleware inspects Grip-Sig on inbound requests.
type SigMiddleware interface {
	// Verify validates the Grip-Sig header and stores the resulting
	// publisher.SigStatus in the request context.
	//
	// Returns 401 Unauthorized when a signature is required and the
	// header does not verify.
	Verify() Middleware

	// RequireProxied rejects requests that did not come through a GRIP
	// proxy. This middleware must be used after Verify() in the chain.
	RequireProxied() Middleware
}

// ErrorResponder writes JSON error responses.
type ErrorResponder interface {
	// Unauthorized sends a 401 Unauthorized response.
	Unauthorized(w http.ResponseWriter, err error)

	// InternalError sends a 500 Internal Server Error response.
	// The response body contains a JSON error message.
	InternalError(w http.ResponseWriter, err error)

	// BadRequest sends a 400 Bad Request response.
	// The response body contains a JSON error message.
	BadRequest(w http.ResponseWriter, err error)

	// PublishFailed sends a 502 Bad Gateway response listing the
	// endpoints that rejected a publish.
	PublishFailed(w http.ResponseWriter, err error)
}
