package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// errorResponse represents a JSON error response body.
type errorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Failures []failureResponse `json:"failures,omitempty"`
}

// failureResponse describes one endpoint that rejected a publish.
type failureResponse struct {
	ControlURI string `json:"control_uri"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	logger *slog.Logger
}

// NewErrorResponder creates a new error responder.
// If logger is nil, it uses the default slog logger.
func NewErrorResponder(logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{logger: logger}
}

// Unauthorized sends a 401 Unauthorized response. The message names the
// transport sentinel and never the token.
func (e *errorResponder) Unauthorized(w http.ResponseWriter, err error) {
	e.logger.Warn("unauthorized request", "error", err)

	message := "Authentication required"
	switch {
	case errors.Is(err, transportcore.ErrInvalidSignature):
		message = transportcore.ErrInvalidSignature.Error()
	case errors.Is(err, transportcore.ErrNotProxied):
		message = transportcore.ErrNotProxied.Error()
	case errors.Is(err, transportcore.ErrInvalidPublishToken):
		message = transportcore.ErrInvalidPublishToken.Error()
	}
	e.write(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: message})
}

// InternalError sends a 500 Internal Server Error response.
// The response body contains a JSON error message.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	e.logger.Error("internal server error", "error", err)
	e.write(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "An internal server error occurred",
	})
}

// BadRequest sends a 400 Bad Request response.
// The response body contains a JSON error message.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	e.logger.Warn("bad request", "error", err)

	message := "Invalid request"
	if err != nil {
		message = err.Error()
	}
	e.write(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

// PublishFailed sends a 502 Bad Gateway response. When err is a
// *publisher.PublishError every failing endpoint is listed.
func (e *errorResponder) PublishFailed(w http.ResponseWriter, err error) {
	e.logger.Warn("publish failed", "error", err)

	resp := errorResponse{Error: "publish_failed", Message: "Publish failed"}
	var perr *publisher.PublishError
	if errors.As(err, &perr) {
		resp.Message = perr.Message
		for _, f := range perr.Failures {
			fr := failureResponse{ControlURI: f.ControlURI, StatusCode: f.StatusCode}
			if f.Err != nil {
				fr.Error = f.Err.Error()
			}
			resp.Failures = append(resp.Failures, fr)
		}
	}
	e.write(w, http.StatusBadGateway, resp)
}

func (e *errorResponder) write(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set(pkggrip.HeaderContentType, pkggrip.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		e.logger.Error("failed to encode error response", "error", err)
	}
}
