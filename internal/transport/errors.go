package transport

import (
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

// Re-export errors from transportcore so callers need not import it.
var (
	// ErrInvalidSignature indicates the Grip-Sig header did not verify.
	ErrInvalidSignature = transportcore.ErrInvalidSignature

	// ErrNotProxied indicates a request that must come through a GRIP proxy did not.
	ErrNotProxied = transportcore.ErrNotProxied

	// ErrMissingChannel indicates a request named no channel.
	ErrMissingChannel = transportcore.ErrMissingChannel

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = transportcore.ErrServerClosed
)
