package sigverify

import "errors"

const domainSigVerify = "sigverify"

// Reasons a Grip-Sig token is rejected. Result.Err wraps one of these.
var (
	ErrMissingToken     = errors.New("missing token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMissingExpiry    = errors.New("token has no exp claim")
	ErrIssuerMismatch   = errors.New("issuer mismatch")
	ErrNoKey            = errors.New("no verification key")
)
