package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrValidation marks caller-facing input problems: missing fields,
	// out-of-range values, unknown categories. Not retryable.
	ErrValidation = errors.New("validation failed")
)
