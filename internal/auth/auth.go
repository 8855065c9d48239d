// Package auth builds the Authorization header sent with publish requests
// and normalizes the keys used to sign and verify GRIP tokens.
package auth

import (
	"encoding/base64"

	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// Auth produces an Authorization header value. Implementations are
// immutable and safe for concurrent use.
type Auth interface {
	BuildHeader() (string, error)
}

// Basic is HTTP basic authentication.
type Basic struct {
	User string
	Pass string
}

// BuildHeader returns "Basic base64(user:pass)".
func (b Basic) BuildHeader() (string, error) {
	creds := base64.StdEncoding.EncodeToString([]byte(b.User + ":" + b.Pass))
	return pkggrip.SchemeBasic + " " + creds, nil
}

// Bearer sends a fixed token.
type Bearer struct {
	Token string
}

// BuildHeader returns "Bearer <token>".
func (b Bearer) BuildHeader() (string, error) {
	return pkggrip.SchemeBearer + " " + b.Token, nil
}
