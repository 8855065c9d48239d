package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// These are used for error identification and testing.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrInvalidSignature indicates the Grip-Sig header did not verify.
	ErrInvalidSignature = errors.New("invalid grip signature")

	// ErrNotProxied indicates a request that must come through a GRIP proxy did not.
	ErrNotProxied = errors.New("request not proxied")

	// ErrInvalidPublishToken indicates a publish request without the
	// configured bearer token.
	ErrInvalidPublishToken = errors.New("invalid publish token")

	// ErrMissingChannel indicates a request named no channel.
	ErrMissingChannel = errors.New("missing channel")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
