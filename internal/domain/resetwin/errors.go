package resetwin

import "errors"

// Sentinel kinds for reset policy errors.
var (
	ErrInvalidPolicy = errors.New("invalid reset policy")
)
