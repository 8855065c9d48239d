package transportcore

import (
	"context"

	"github.com/jamesprial/go-grip/internal/publisher"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SigStatusContextKey is the context key for the Grip-Sig check result.
	SigStatusContextKey contextKey = "grip_sig_status"
)

// SigStatusFromContext extracts the Grip-Sig status from the request context.
// Returns the zero status and false if Verify did not run.
func SigStatusFromContext(ctx context.Context) (publisher.SigStatus, bool) {
	if ctx == nil {
		return publisher.SigStatus{}, false
	}
	status, ok := ctx.Value(SigStatusContextKey).(publisher.SigStatus)
	return status, ok
}

// ContextWithSigStatus adds the Grip-Sig status to the request context.
func ContextWithSigStatus(ctx context.Context, status publisher.SigStatus) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, SigStatusContextKey, status)
}
