package config

import (
	"errors"
)

// Sentinel error kinds for this package, checked by callers via errors.Is.
var (
	// ErrInvalidConfig marks a configuration that loaded but failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures in the file/env loading layers.
	ErrLoadConfig = errors.New("load config failed")
)
