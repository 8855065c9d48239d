package jwks

import "errors"

var (
	// ErrUnsupportedKey indicates a JWK whose type or curve is not supported.
	ErrUnsupportedKey = errors.New("unsupported jwk")

	// ErrMissingParams indicates a JWK without the parameters its type requires.
	ErrMissingParams = errors.New("missing jwk parameters")

	// ErrKeyNotFound indicates no key in the set matched the requested kid.
	ErrKeyNotFound = errors.New("key not found")

	// ErrFetch indicates the key set could not be retrieved.
	ErrFetch = errors.New("jwks fetch failed")
)
