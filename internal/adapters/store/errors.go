package store

import (
	"errors"
	"fmt"
)

// Sentinel kinds for persistence errors.
var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrStorage tags failures coming out of the backing database. The
	// original driver error stays in the chain for errors.Is/As.
	ErrStorage = errors.New("storage failure")
)

// storageErr wraps a driver error with the ErrStorage kind and the failing
// operation name.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
