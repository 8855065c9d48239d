package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// DefaultTTL is the lifetime given to generated tokens without an exp claim.
const DefaultTTL = time.Hour

// JWT signs a fresh token on every BuildHeader call. Claims are copied,
// never mutated; iat and exp are added unless already present.
type JWT struct {
	Claims map[string]any

	// Key is anything ParseKey accepts. A raw secret signs with HS256.
	Key any

	// TTL overrides DefaultTTL.
	TTL time.Duration

	// Now overrides time.Now.
	Now func() time.Time
}

// BuildHeader returns "Bearer <jwt>".
func (j JWT) BuildHeader() (string, error) {
	token, err := j.Token()
	if err != nil {
		return "", err
	}
	return pkggrip.SchemeBearer + " " + token, nil
}

// Token returns the signed token.
func (j JWT) Token() (string, error) {
	key, err := ParseKey(j.Key)
	if err != nil {
		return "", err
	}
	if key.SignKey == nil {
		return "", ierrors.New(domainAuth, "JWT.Token", ierrors.ErrInvalid, ErrNoSigningKey)
	}

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	ttl := j.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	claims := make(jwt.MapClaims, len(j.Claims)+2)
	for k, v := range j.Claims {
		claims[k] = v
	}
	issuedAt := now()
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = issuedAt.Unix()
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = issuedAt.Add(ttl).Unix()
	}

	signed, err := jwt.NewWithClaims(key.Method, claims).SignedString(key.SignKey)
	if err != nil {
		return "", ierrors.New(domainAuth, "JWT.Token", ierrors.ErrInternal,
			fmt.Errorf("sign %s token: %w", key.Method.Alg(), err))
	}
	return signed, nil
}
