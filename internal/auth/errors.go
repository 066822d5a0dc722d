package auth

import "errors"

// Sentinel kinds for auth failures.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("admin role required")
)
