// Package errors defines the error kinds shared by the GRIP packages and
// DomainError, which tags an error with the package and operation that
// produced it.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Callers match them with errors.Is.
var (
	// ErrInvalid marks a value rejected at construction time. Retrying
	// with the same input fails the same way.
	ErrInvalid = errors.New("invalid")

	// ErrUnauthorized marks a rejected signature or credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadRequest marks an inbound request the backend cannot serve.
	ErrBadRequest = errors.New("bad request")

	// ErrPublish marks an item that one or more endpoints did not accept.
	ErrPublish = errors.New("publish failed")

	// ErrTransport marks an outbound request that got no response.
	ErrTransport = errors.New("transport failure")

	ErrInternal = errors.New("internal error")
)

// DomainError is an error raised by one operation of one package.
type DomainError struct {
	// Domain is the package that raised the error, e.g. "grip" or "auth".
	Domain string

	// Op is the failing operation, e.g. "NewItem" or "ParseKey".
	Op string

	// Kind is one of the sentinel kinds above.
	Kind error

	// Err is the cause, if any.
	Err error

	// Context holds extra values for logs.
	Context map[string]any
}

// New returns a DomainError. err may be nil.
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Err:     err,
		Context: make(map[string]any),
	}
}

// Invalid returns a construction error of kind ErrInvalid.
func Invalid(domain, op string, err error) *DomainError {
	return New(domain, op, ErrInvalid, err)
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches target against Kind as well as the cause chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// WithContext records key=value and returns e for chaining.
func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsInvalid reports whether err is a construction or validation error.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// StatusCode maps err to the HTTP status a backend answers with when the
// error reaches a handler. Publish and transport kinds take precedence over
// the kinds of their per-endpoint causes. Unknown errors map to 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPublish), errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
