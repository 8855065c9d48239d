package auth

import "errors"

const domainAuth = "auth"

// Sentinel errors for credential and key handling.
var (
	// ErrUnsupportedKey indicates a key value ParseKey cannot interpret.
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrEmptyKey indicates an empty secret or key document.
	ErrEmptyKey = errors.New("key is empty")

	// ErrNoSigningKey indicates a JWT signer was given only a public key.
	ErrNoSigningKey = errors.New("key cannot sign")

	// ErrInvalidKeyParam indicates a malformed key parameter in a GRIP URI.
	ErrInvalidKeyParam = errors.New("invalid key parameter")
)
