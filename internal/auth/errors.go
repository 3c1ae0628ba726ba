// Package auth provides bearer-token authentication for the caixa ledger.
package auth

import "errors"

// Token validation errors. Callers outside this package treat all of them as
// "unauthenticated"; they stay distinct for logging and tests.
var (
	// ErrTokenMalformed indicates the token cannot be parsed or lacks required claims.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenExpired indicates the current time is at or past the token expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalidSignature indicates the signature or signing method does not match.
	ErrTokenInvalidSignature = errors.New("token signature is invalid")

	// ErrEmptySecret indicates the signing key is missing.
	ErrEmptySecret = errors.New("token signing secret is empty")
)

// ErrUnauthorized is the single outward-facing authentication failure.
// It never says which check failed.
var ErrUnauthorized = errors.New("could not validate credentials")

// IsTokenError reports whether err is one of the token validation errors.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalidSignature)
}
