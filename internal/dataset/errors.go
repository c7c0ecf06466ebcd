package dataset

import "errors"

// Sentinel errors for this package. These allow errors.Is/As from callers.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyDataset  = errors.New("dataset has no data rows")
)
