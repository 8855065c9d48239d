package publisher

import (
	"errors"
	"fmt"
	"strings"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

const domainPublisher = "publisher"

var (
	// ErrEmptyControlURI indicates an endpoint without a control URI.
	ErrEmptyControlURI = errors.New("control uri is empty")

	// ErrInvalidGripURI indicates a GRIP URI that cannot be parsed.
	ErrInvalidGripURI = errors.New("invalid grip uri")

	// ErrNoItems indicates a publish call without items.
	ErrNoItems = errors.New("no items to publish")

	// ErrUnexpectedStatus indicates a non-2xx response from the proxy.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// EndpointFailure describes why publishing to one endpoint failed.
// StatusCode and Body are zero when no response was received.
type EndpointFailure struct {
	ControlURI string
	StatusCode int
	Body       string
	Err        error
}

func (f EndpointFailure) String() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", f.ControlURI, f.StatusCode, f.Body)
	}
	return fmt.Sprintf("%s: %v", f.ControlURI, f.Err)
}

// PublishError is returned by every publish operation that fails, listing
// each failed endpoint. It matches errors.Is(err, errors.ErrPublish).
type PublishError struct {
	Message  string
	Failures []EndpointFailure
}

func (e *PublishError) Error() string {
	if len(e.Failures) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is errors.ErrPublish.
func (e *PublishError) Is(target error) bool {
	return target == ierrors.ErrPublish
}

// Unwrap exposes the per-endpoint causes.
func (e *PublishError) Unwrap() []error {
	var errs []error
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

func newPublishError(failures ...EndpointFailure) *PublishError {
	msg := "publish failed"
	if len(failures) > 1 {
		msg = fmt.Sprintf("publish failed on %d endpoints", len(failures))
	}
	return &PublishError{Message: msg, Failures: failures}
}
