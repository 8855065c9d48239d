// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/sigverify"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// gripSigMiddleware implements transportcore.SigMiddleware.
type gripSigMiddleware struct {
	validator transportcore.SigValidator
	responder transportcore.ErrorResponder
}

// NewGripSigMiddleware creates Grip-Sig middleware backed by validator.
func NewGripSigMiddleware(
	validator transportcore.SigValidator,
	responder transportcore.ErrorResponder,
) transportcore.SigMiddleware {
	if validator == nil {
		panic("validator cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &gripSigMiddleware{
		validator: validator,
		responder: responder,
	}
}

// Verify validates the Grip-Sig header and stores the status in the request
// context for downstream handlers.
//
// Returns 401 Unauthorized when every key is required and the header is
// present but does not verify.
func (m *gripSigMiddleware) Verify() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get(pkggrip.HeaderGripSig))
			status := m.validator.ValidateGripSig(r.Context(), header)

			if header != "" && status.NeedsSigned && !status.IsSigned {
				m.responder.Unauthorized(w, transportcore.ErrInvalidSignature)
				return
			}

			ctx := transportcore.ContextWithSigStatus(r.Context(), status)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireProxied rejects requests that did not come through a proxy.
// This middleware must be used after Verify() in the chain.
func (m *gripSigMiddleware) RequireProxied() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, ok := transportcore.SigStatusFromContext(r.Context())
			if !ok || !status.IsProxied {
				m.responder.Unauthorized(w, transportcore.ErrNotProxied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VerifierValidator adapts a sigverify.Verifier to transportcore.SigValidator
// for deployments that verify Grip-Sig with one server-wide key or a JWKS
// endpoint instead of per-endpoint keys.
type VerifierValidator struct {
	Verifier *sigverify.Verifier
}

// ValidateGripSig implements transportcore.SigValidator. A signature is
// always required.
func (v VerifierValidator) ValidateGripSig(ctx context.Context, header string) publisher.SigStatus {
	if header == "" {
		return publisher.SigStatus{}
	}
	res := v.Verifier.Verify(ctx, header)
	return publisher.SigStatus{IsProxied: res.Valid, NeedsSigned: true, IsSigned: res.Valid}
}
