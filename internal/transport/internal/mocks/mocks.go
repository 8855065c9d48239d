// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"net/http"
	"sync"

	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/publisher"
)

// SigValidator is a mock implementation of transportcore.SigValidator.
type SigValidator struct {
	ValidateFunc func(ctx context.Context, header string) publisher.SigStatus
}

// ValidateGripSig calls the mock ValidateFunc. Without one, any non-empty
// header counts as a valid signature.
func (m *SigValidator) ValidateGripSig(ctx context.Context, header string) publisher.SigStatus {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, header)
	}
	if header == "" {
		return publisher.SigStatus{}
	}
	return publisher.SigStatus{IsProxied: true, NeedsSigned: true, IsSigned: true}
}

// PublishCall records one PublishFormats call.
type PublishCall struct {
	Channel string
	Item    *grip.Item
}

// Publisher is a mock implementation of handlers.Publisher.
type Publisher struct {
	mu    sync.Mutex
	Err   error
	Calls []PublishCall
}

// PublishFormats records the call and returns Err.
func (m *Publisher) PublishFormats(_ context.Context, channel string, formats []grip.Format, opts ...grip.ItemOption) error {
	item, err := grip.NewItem(formats, opts...)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, PublishCall{Channel: channel, Item: item})
	return m.Err
}

// ErrorResponder is a mock implementation for error response handling.
type ErrorResponder struct {
	UnauthorizedCalled  bool
	UnauthorizedErr     error
	InternalCalled      bool
	InternalErr         error
	BadRequestCalled    bool
	BadRequestErr       error
	PublishFailedCalled bool
	PublishFailedErr    error
}

// Unauthorized records the call and writes a 401 response.
func (m *ErrorResponder) Unauthorized(w http.ResponseWriter, err error) {
	m.UnauthorizedCalled = true
	m.UnauthorizedErr = err
	w.WriteHeader(http.StatusUnauthorized)
}

// InternalError records the call and writes a 500 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, err error) {
	m.InternalCalled = true
	m.InternalErr = err
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal server error"}`))
}

// BadRequest records the call and writes a 400 response.
func (m *ErrorResponder) BadRequest(w http.ResponseWriter, err error) {
	m.BadRequestCalled = true
	m.BadRequestErr = err
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":"bad request"}`))
}

// PublishFailed records the call and writes a 502 response.
func (m *ErrorResponder) PublishFailed(w http.ResponseWriter, err error) {
	m.PublishFailedCalled = true
	m.PublishFailedErr = err
	w.WriteHeader(http.StatusBadGateway)
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	*m = ErrorResponder{}
}
