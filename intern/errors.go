package intern

import (
	"errors"
)

var (
	// ErrExhausted is returned by Intern when the backing store cannot hold
	// another entry. The table is left exactly as it was before the call.
	ErrExhausted = errors.New("interner exhausted")

	// ErrClosed is returned by operations on a closed Interner.
	ErrClosed = errors.New("interner closed")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid interner config")
)
