// Package jwks converts JSON Web Keys to crypto keys and resolves keys
// from a remote key set.
package jwks

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
	"math/big"
)

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a single JSON Web Key. Private parameters are optional;
// when present the converted key is a private key.
type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use,omitempty"`
	KeyID     string `json:"kid,omitempty"`
	Algorithm string `json:"alg,omitempty"`

	// oct
	K string `json:"k,omitempty"`

	// RSA
	N  string `json:"n,omitempty"`
	E  string `json:"e,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	DP string `json:"dp,omitempty"`
	DQ string `json:"dq,omitempty"`
	QI string `json:"qi,omitempty"`

	// EC and OKP
	Curve string `json:"crv,omitempty"`
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`

	// private exponent (RSA) or private scalar/seed (EC, OKP)
	D string `json:"d,omitempty"`
}

// IsPrivate reports whether the JWK carries private key material.
func (j *JWK) IsPrivate() bool {
	return j.D != "" || j.KeyType == "oct"
}

// ToKey converts the JWK into a []byte secret, *rsa.PublicKey,
// *rsa.PrivateKey, *ecdsa.PublicKey, *ecdsa.PrivateKey,
// ed25519.PublicKey or ed25519.PrivateKey.
func (j *JWK) ToKey() (any, error) {
	switch j.KeyType {
	case "oct":
		if j.K == "" {
			return nil, fmt.Errorf("%w: oct requires k", ErrMissingParams)
		}
		return base64URLDecode(j.K)
	case "RSA":
		return j.rsaKey()
	case "EC":
		return j.ecKey()
	case "OKP":
		return j.okpKey()
	default:
		return nil, fmt.Errorf("%w: kty %q", ErrUnsupportedKey, j.KeyType)
	}
}

func (j *JWK) rsaKey() (any, error) {
	if j.N == "" || j.E == "" {
		return nil, fmt.Errorf("%w: RSA requires n and e", ErrMissingParams)
	}
	n, err := decodeBigInt("n", j.N)
	if err != nil {
		return nil, err
	}
	e, err := decodeBigInt("e", j.E)
	if err != nil {
		return nil, err
	}
	pub := rsa.PublicKey{N: n, E: int(e.Int64())}
	if j.D == "" {
		return &pub, nil
	}

	if j.P == "" || j.Q == "" {
		return nil, fmt.Errorf("%w: RSA private key requires p and q", ErrMissingParams)
	}
	d, err := decodeBigInt("d", j.D)
	if err != nil {
		return nil, err
	}
	p, err := decodeBigInt("p", j.P)
	if err != nil {
		return nil, err
	}
	q, err := decodeBigInt("q", j.Q)
	if err != nil {
		return nil, err
	}
	priv := &rsa.PrivateKey{PublicKey: pub, D: d, Primes: []*big.Int{p, q}}
	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RSA private key: %w", err)
	}
	priv.Precompute()
	return priv, nil
}

func (j *JWK) ecKey() (any, error) {
	if j.X == "" || j.Y == "" || j.Curve == "" {
		return nil, fmt.Errorf("%w: EC requires crv, x and y", ErrMissingParams)
	}
	curve, err := getCurve(j.Curve)
	if err != nil {
		return nil, err
	}
	x, err := decodeBigInt("x", j.X)
	if err != nil {
		return nil, err
	}
	y, err := decodeBigInt("y", j.Y)
	if err != nil {
		return nil, err
	}
	pub := ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	if j.D == "" {
		return &pub, nil
	}
	d, err := decodeBigInt("d", j.D)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PrivateKey{PublicKey: pub, D: d}, nil
}

func (j *JWK) okpKey() (any, error) {
	if j.Curve != "Ed25519" {
		return nil, fmt.Errorf("%w: OKP curve %q", ErrUnsupportedKey, j.Curve)
	}
	if j.D != "" {
		seed, err := base64URLDecode(j.D)
		if err != nil {
			return nil, fmt.Errorf("decode d: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("%w: Ed25519 seed must be %d bytes", ErrMissingParams, ed25519.SeedSize)
		}
		return ed25519.NewKeyFromSeed(seed), nil
	}
	if j.X == "" {
		return nil, fmt.Errorf("%w: OKP requires x", ErrMissingParams)
	}
	x, err := base64URLDecode(j.X)
	if err != nil {
		return nil, fmt.Errorf("decode x: %w", err)
	}
	if len(x) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: Ed25519 public key must be %d bytes", ErrMissingParams, ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(x), nil
}
