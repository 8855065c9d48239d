package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/jamesprial/go-grip/internal/transport/transportcore"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// NewBearerTokenMiddleware rejects requests whose Authorization header does
// not carry "Bearer <token>". The scheme is matched case-insensitively.
func NewBearerTokenMiddleware(token string, responder transportcore.ErrorResponder) transportcore.Middleware {
	if token == "" {
		panic("token cannot be empty")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := extractBearerToken(r)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", pkggrip.SchemeBearer)
				responder.Unauthorized(w, transportcore.ErrInvalidPublishToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken returns the token of "Authorization: Bearer <token>",
// or "" when the header is missing or uses another scheme.
func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get(pkggrip.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, pkggrip.SchemeBearer) {
		return ""
	}
	return strings.TrimSpace(token)
}
