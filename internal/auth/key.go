package auth

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jamesprial/go-grip/internal/auth/internal/jwks"
	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// KeyParamBase64Prefix marks a base64 encoded key in a GRIP URI.
const KeyParamBase64Prefix = "base64:"

// JWK is a JSON Web Key accepted by ParseKey.
type JWK = jwks.JWK

// Key is a normalized signing/verification key.
type Key struct {
	// Method is the algorithm used when signing with this key.
	Method jwt.SigningMethod

	// SignKey is nil for public-only keys.
	SignKey any

	// VerifyKey is the value handed to the JWT parser.
	VerifyKey any

	// Algorithms lists the token algorithms accepted when verifying.
	Algorithms []string
}

// ParseKey normalizes key material. It accepts:
//   - *Key (returned as is)
//   - []byte or string: PEM text, JWK JSON, or otherwise a raw HMAC secret
//   - JWK, *JWK or map[string]any JWK documents
//   - *rsa.PrivateKey, *rsa.PublicKey, *ecdsa.PrivateKey, *ecdsa.PublicKey,
//     ed25519.PrivateKey and ed25519.PublicKey
func ParseKey(key any) (*Key, error) {
	switch k := key.(type) {
	case nil:
		return nil, invalidKey(ErrEmptyKey)
	case *Key:
		return k, nil
	case string:
		return parseKeyBytes([]byte(k))
	case []byte:
		return parseKeyBytes(k)
	case JWK:
		return parseJWK(&k)
	case *JWK:
		return parseJWK(k)
	case map[string]any:
		raw, err := json.Marshal(k)
		if err != nil {
			return nil, invalidKey(fmt.Errorf("encode jwk: %w", err))
		}
		var jwk JWK
		if err := json.Unmarshal(raw, &jwk); err != nil {
			return nil, invalidKey(fmt.Errorf("decode jwk: %w", err))
		}
		return parseJWK(&jwk)
	}
	return fromCryptoKey(key)
}

// DecodeKeyParam decodes a key parameter from a GRIP URI. Values prefixed
// with "base64:" are base64 decoded; anything else is returned verbatim.
func DecodeKeyParam(param string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(param, KeyParamBase64Prefix)
	if !ok {
		return []byte(param), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ierrors.Invalid(domainAuth, "DecodeKeyParam", fmt.Errorf("%w: %v", ErrInvalidKeyParam, err))
	}
	return decoded, nil
}

func parseKeyBytes(b []byte) (*Key, error) {
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0:
		return nil, invalidKey(ErrEmptyKey)
	case bytes.HasPrefix(trimmed, []byte("-----BEGIN")):
		return parsePEM(trimmed)
	case trimmed[0] == '{':
		var jwk JWK
		if err := json.Unmarshal(trimmed, &jwk); err == nil && jwk.KeyType != "" {
			return parseJWK(&jwk)
		}
	}
	return secretKey(b), nil
}

// parsePEM tries each PEM shape the jwt package understands.
func parsePEM(pemBytes []byte) (*Key, error) {
	if k, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes); err == nil {
		return fromCryptoKey(k)
	}
	if k, err := jwt.ParseECPrivateKeyFromPEM(pemBytes); err == nil {
		return fromCryptoKey(k)
	}
	if k, err := jwt.ParseEdPrivateKeyFromPEM(pemBytes); err == nil {
		return fromCryptoKey(k)
	}
	if k, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes); err == nil {
		return fromCryptoKey(k)
	}
	if k, err := jwt.ParseECPublicKeyFromPEM(pemBytes); err == nil {
		return fromCryptoKey(k)
	}
	if k, err := jwt.ParseEdPublicKeyFromPEM(pemBytes); err == nil {
		return fromCryptoKey(k)
	}
	return nil, invalidKey(fmt.Errorf("%w: unrecognized PEM block", ErrUnsupportedKey))
}

func parseJWK(jwk *JWK) (*Key, error) {
	k, err := jwk.ToKey()
	if err != nil {
		return nil, invalidKey(fmt.Errorf("%w: %v", ErrUnsupportedKey, err))
	}
	if secret, ok := k.([]byte); ok {
		return secretKey(secret), nil
	}
	return fromCryptoKey(k)
}

func secretKey(secret []byte) *Key {
	s := append([]byte{}, secret...)
	return &Key{
		Method:     jwt.SigningMethodHS256,
		SignKey:    s,
		VerifyKey:  s,
		Algorithms: []string{"HS256", "HS384", "HS512"},
	}
}

var rsaAlgorithms = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}

func fromCryptoKey(key any) (*Key, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return &Key{Method: jwt.SigningMethodRS256, SignKey: k, VerifyKey: &k.PublicKey, Algorithms: rsaAlgorithms}, nil
	case *rsa.PublicKey:
		return &Key{Method: jwt.SigningMethodRS256, VerifyKey: k, Algorithms: rsaAlgorithms}, nil
	case *ecdsa.PrivateKey:
		method, err := ecMethod(&k.PublicKey)
		if err != nil {
			return nil, err
		}
		return &Key{Method: method, SignKey: k, VerifyKey: &k.PublicKey, Algorithms: []string{method.Alg()}}, nil
	case *ecdsa.PublicKey:
		method, err := ecMethod(k)
		if err != nil {
			return nil, err
		}
		return &Key{Method: method, VerifyKey: k, Algorithms: []string{method.Alg()}}, nil
	case ed25519.PrivateKey:
		pub, _ := k.Public().(ed25519.PublicKey)
		return &Key{Method: jwt.SigningMethodEdDSA, SignKey: k, VerifyKey: pub, Algorithms: []string{"EdDSA"}}, nil
	case ed25519.PublicKey:
		return &Key{Method: jwt.SigningMethodEdDSA, VerifyKey: k, Algorithms: []string{"EdDSA"}}, nil
	}
	return nil, invalidKey(fmt.Errorf("%w: %T", ErrUnsupportedKey, key))
}

func ecMethod(pub *ecdsa.PublicKey) (*jwt.SigningMethodECDSA, error) {
	switch pub.Curve.Params().BitSize {
	case 256:
		return jwt.SigningMethodES256, nil
	case 384:
		return jwt.SigningMethodES384, nil
	case 521:
		return jwt.SigningMethodES512, nil
	}
	return nil, invalidKey(fmt.Errorf("%w: curve %s", ErrUnsupportedKey, pub.Curve.Params().Name))
}

func invalidKey(err error) error {
	return ierrors.Invalid(domainAuth, "ParseKey", err)
}
