package transport

import (
	"context"

	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

// SigStatusContextKey is the context key for the Grip-Sig check result.
const SigStatusContextKey = transportcore.SigStatusContextKey

// SigStatusFromContext extracts the Grip-Sig status stored by the Verify
// middleware. Handlers use it to decide whether GRIP instructions will be
// honored.
func SigStatusFromContext(ctx context.Context) (publisher.SigStatus, bool) {
	return transportcore.SigStatusFromContext(ctx)
}

// ContextWithSigStatus adds the Grip-Sig status to the request context.
func ContextWithSigStatus(ctx context.Context, status publisher.SigStatus) context.Context {
	return transportcore.ContextWithSigStatus(ctx, status)
}
