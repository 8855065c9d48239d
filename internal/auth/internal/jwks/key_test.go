package jwks

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"math/big"
	"testing"
)

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func bigB64(i *big.Int) string { return b64(i.Bytes()) }

func TestJWK_ToKey_Oct(t *testing.T) {
	t.Parallel()

	jwk := JWK{KeyType: "oct", K: b64([]byte("shared-secret"))}
	key, err := jwk.ToKey()
	if err != nil {
		t.Fatalf("ToKey() error = %v", err)
	}
	secret, ok := key.([]byte)
	if !ok || string(secret) != "shared-secret" {
		t.Errorf("ToKey() = %#v, want shared-secret bytes", key)
	}
	if !jwk.IsPrivate() {
		t.Error("oct key should count as private")
	}
}

func TestJWK_ToKey_RSA(t *testing.T) {
	t.Parallel()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	public := JWK{
		KeyType: "RSA",
		N:       bigB64(priv.N),
		E:       bigB64(big.NewInt(int64(priv.E))),
	}
	key, err := public.ToKey()
	if err != nil {
		t.Fatalf("ToKey(public) error = %v", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok || !pub.Equal(&priv.PublicKey) {
		t.Errorf("ToKey(public) = %#v, want matching *rsa.PublicKey", key)
	}

	private := public
	private.D = bigB64(priv.D)
	private.P = bigB64(priv.Primes[0])
	private.Q = bigB64(priv.Primes[1])
	key, err = private.ToKey()
	if err != nil {
		t.Fatalf("ToKey(private) error = %v", err)
	}
	got, ok := key.(*rsa.PrivateKey)
	if !ok || !got.Equal(priv) {
		t.Errorf("ToKey(private) = %#v, want matching *rsa.PrivateKey", key)
	}
}

func TestJWK_ToKey_EC(t *testing.T) {
	t.Parallel()

	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	jwk := JWK{
		KeyType: "EC",
		Curve:   "P-384",
		X:       bigB64(priv.X),
		Y:       bigB64(priv.Y),
	}
	key, err := jwk.ToKey()
	if err != nil {
		t.Fatalf("ToKey() error = %v", err)
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok || !pub.Equal(&priv.PublicKey) {
		t.Errorf("ToKey() = %#v, want matching *ecdsa.PublicKey", key)
	}

	jwk.D = bigB64(priv.D)
	key, err = jwk.ToKey()
	if err != nil {
		t.Fatalf("ToKey(private) error = %v", err)
	}
	if _, ok := key.(*ecdsa.PrivateKey); !ok {
		t.Errorf("ToKey(private) = %T, want *ecdsa.PrivateKey", key)
	}
}

func TestJWK_ToKey_OKP(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	key, err := (&JWK{KeyType: "OKP", Curve: "Ed25519", X: b64(pub)}).ToKey()
	if err != nil {
		t.Fatalf("ToKey(public) error = %v", err)
	}
	if got, ok := key.(ed25519.PublicKey); !ok || !got.Equal(pub) {
		t.Errorf("ToKey(public) = %#v, want matching ed25519.PublicKey", key)
	}

	key, err = (&JWK{KeyType: "OKP", Curve: "Ed25519", X: b64(pub), D: b64(priv.Seed())}).ToKey()
	if err != nil {
		t.Fatalf("ToKey(private) error = %v", err)
	}
	if got, ok := key.(ed25519.PrivateKey); !ok || !got.Equal(priv) {
		t.Errorf("ToKey(private) = %#v, want matching ed25519.PrivateKey", key)
	}
}

func TestJWK_ToKey_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		jwk     JWK
		wantErr error
	}{
		{name: "unknown kty", jwk: JWK{KeyType: "foo"}, wantErr: ErrUnsupportedKey},
		{name: "oct without k", jwk: JWK{KeyType: "oct"}, wantErr: ErrMissingParams},
		{name: "rsa without e", jwk: JWK{KeyType: "RSA", N: "AQAB"}, wantErr: ErrMissingParams},
		{name: "rsa private without primes", jwk: JWK{KeyType: "RSA", N: "AQAB", E: "AQAB", D: "AQAB"}, wantErr: ErrMissingParams},
		{name: "ec unknown curve", jwk: JWK{KeyType: "EC", Curve: "P-999", X: "AQ", Y: "AQ"}, wantErr: ErrUnsupportedKey},
		{name: "okp x448", jwk: JWK{KeyType: "OKP", Curve: "X448", X: "AQ"}, wantErr: ErrUnsupportedKey},
		{name: "okp short key", jwk: JWK{KeyType: "OKP", Curve: "Ed25519", X: "AQ"}, wantErr: ErrMissingParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.jwk.ToKey()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ToKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBase64URLDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unpadded", input: "aGVsbG8gd29ybGQ", want: "hello world"},
		{name: "padded", input: "YQ==", want: "a"},
		{name: "url-safe dash", input: "dGVzdD4-Pz8", want: "test>>??"},
		{name: "url-safe underscore", input: "__8", want: "\xff\xff"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := base64URLDecode(tt.input)
			if err != nil {
				t.Fatalf("base64URLDecode(%q) error = %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("base64URLDecode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
