package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/jamesprial/go-grip/internal/auth/internal/jwks"
	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// DefaultJWKSCacheTTL is how long resolved keys are reused.
const DefaultJWKSCacheTTL = 10 * time.Minute

// JWKSResolver resolves verification keys by kid from a remote JWKS
// document. Its Resolve method fits sigverify.KeyFunc.
type JWKSResolver struct {
	client *jwks.Client
}

// NewJWKSResolver creates a resolver for the key set at uri. Zero ttl
// uses DefaultJWKSCacheTTL; nil httpClient uses a 10 second timeout client.
func NewJWKSResolver(uri string, ttl time.Duration, httpClient *http.Client) *JWKSResolver {
	if ttl <= 0 {
		ttl = DefaultJWKSCacheTTL
	}
	return &JWKSResolver{client: jwks.NewClient(uri, ttl, httpClient)}
}

// Resolve returns the normalized key for kid.
func (r *JWKSResolver) Resolve(ctx context.Context, kid string) (*Key, error) {
	raw, err := r.client.GetKey(ctx, kid)
	if err != nil {
		return nil, ierrors.New(domainAuth, "JWKSResolver.Resolve", ierrors.ErrUnauthorized, err).
			WithContext("kid", kid)
	}
	return ParseKey(raw)
}

// Refresh discards cached keys and refetches the set.
func (r *JWKSResolver) Refresh(ctx context.Context) error {
	return r.client.Refresh(ctx)
}
