package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// EndpointLister reports the configured publish endpoints.
// *publisher.Publisher satisfies it.
type EndpointLister interface {
	Clients() []*publisher.Client
}

// healthResponse represents the JSON response for health checks.
type healthResponse struct {
	Status    string `json:"status"`
	Endpoints int    `json:"endpoints"`
}

// healthHandler provides a simple health check endpoint.
type healthHandler struct {
	endpoints EndpointLister
	responder transportcore.ErrorResponder
}

// NewHealthHandler creates a handler for the /health endpoint.
// It reports the number of publish endpoints; endpoints may be nil.
func NewHealthHandler(endpoints EndpointLister, responder transportcore.ErrorResponder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &healthHandler{
		endpoints: endpoints,
		responder: responder,
	}
}

// ServeHTTP handles GET requests for health checks.
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{Status: "ok"}
	if h.endpoints != nil {
		resp.Endpoints = len(h.endpoints.Clients())
	}

	w.Header().Set(pkggrip.HeaderContentType, pkggrip.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already written.
		slog.Error("failed to encode health response", "error", err)
	}
}
