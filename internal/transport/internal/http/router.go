package http

import (
	"net/http"

	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

// router implements transportcore.Router using http.ServeMux.
type router struct {
	mux         *http.ServeMux
	middlewares []transportcore.Middleware
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() transportcore.Router {
	return &router{
		mux: http.NewServeMux(),
	}
}

// Handle registers a handler for the given pattern.
// The handler is wrapped with all currently registered middleware.
func (r *router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, r.applyMiddleware(handler))
}

// HandleFunc registers a handler function for the given pattern.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use applies middleware to all subsequent route registrations.
// Middleware is applied in the order registered.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// With returns a child router on the same mux. Routes registered on the
// child run the parent's middleware first, then middlewares.
func (r *router) With(middlewares ...transportcore.Middleware) transportcore.Router {
	chain := make([]transportcore.Middleware, 0, len(r.middlewares)+len(middlewares))
	chain = append(chain, r.middlewares...)
	chain = append(chain, middlewares...)
	return &router{mux: r.mux, middlewares: chain}
}

// ServeHTTP implements http.Handler by delegating to the underlying ServeMux.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// applyMiddleware wraps the handler so the first registered middleware is
// the outermost layer.
func (r *router) applyMiddleware(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
