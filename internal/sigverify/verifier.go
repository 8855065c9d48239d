// Package sigverify checks the Grip-Sig token a GRIP proxy attaches to the
// requests it forwards.
package sigverify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jamesprial/go-grip/internal/auth"
	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// KeyFunc resolves the verification key for a token's kid header.
// (*auth.JWKSResolver).Resolve satisfies it.
type KeyFunc func(ctx context.Context, kid string) (*auth.Key, error)

// Result is the outcome of verifying one token.
type Result struct {
	Valid  bool
	Err    error
	Claims jwt.MapClaims
}

// Verifier validates Grip-Sig tokens. It is safe for concurrent use.
type Verifier struct {
	key     *auth.Key
	keyFunc KeyFunc
	issuer  string
	leeway  time.Duration
	now     func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithIssuer requires the iss claim to equal issuer.
func WithIssuer(issuer string) Option {
	return func(v *Verifier) { v.issuer = issuer }
}

// WithLeeway tolerates clock skew when checking exp.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) { v.leeway = d }
}

// WithKeyFunc resolves keys per token instead of using a static key.
func WithKeyFunc(fn KeyFunc) Option {
	return func(v *Verifier) { v.keyFunc = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a verifier for key, which may be anything
// auth.ParseKey accepts. key may be nil when WithKeyFunc is given.
func NewVerifier(key any, opts ...Option) (*Verifier, error) {
	v := &Verifier{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	if key != nil {
		k, err := auth.ParseKey(key)
		if err != nil {
			return nil, err
		}
		v.key = k
	}
	if v.key == nil && v.keyFunc == nil {
		return nil, ierrors.Invalid(domainSigVerify, "NewVerifier", ErrNoKey)
	}
	return v, nil
}

// Verify checks token and never panics. The signature must verify with an
// algorithm of the key's family, exp must be present and unexpired, and
// iss must match when an issuer is configured.
func (v *Verifier) Verify(ctx context.Context, token string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = reject(fmt.Errorf("%w: %v", ErrMalformedToken, r))
		}
	}()

	if token == "" {
		return reject(ErrMissingToken)
	}

	key, err := v.resolveKey(ctx, token)
	if err != nil {
		return reject(err)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(key.Algorithms),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key.VerifyKey, nil
	}, opts...)
	if err != nil {
		return reject(classify(err))
	}
	if !parsed.Valid {
		return reject(ErrInvalidSignature)
	}
	return Result{Valid: true, Claims: claims}
}

func (v *Verifier) resolveKey(ctx context.Context, token string) (*auth.Key, error) {
	if v.keyFunc == nil {
		return v.key, nil
	}
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	kid, _ := unverified.Header["kid"].(string)
	key, err := v.keyFunc(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoKey, err)
	}
	if key == nil {
		return nil, ErrNoKey
	}
	return key, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMissingExpiry
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
}

func reject(err error) Result {
	return Result{Err: ierrors.New(domainSigVerify, "Verify", ierrors.ErrUnauthorized, err)}
}

// ValidateSig reports whether header is a valid Grip-Sig token for key.
// An empty iss skips the issuer check. It never panics.
func ValidateSig(header string, key any, iss string) bool {
	v, err := NewVerifier(key, WithIssuer(iss))
	if err != nil {
		return false
	}
	return v.Verify(context.Background(), header).Valid
}
