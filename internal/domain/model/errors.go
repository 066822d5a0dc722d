package model

import "errors"

// Sentinel kinds shared across the engines. Callers classify failures with
// errors.Is against these.
var (
	// ErrInvalidArgument marks malformed or out-of-range caller input.
	// Raised before any persistence I/O.
	ErrInvalidArgument = errors.New("invalid argument")
)
