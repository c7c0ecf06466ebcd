package feature

import (
	"fmt"

	"github.com/attrio/turnover/internal/domain/model"
)

// Sentinel kinds for feature preparation errors.
var (
	// ErrUnknownCategory is returned when a categorical value was never
	// seen by the fitted encoder. It wraps model.ErrValidation so callers
	// classify it as caller-facing input failure.
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", model.ErrValidation)

	// ErrNotFitted is returned when a transform is attempted before fit.
	ErrNotFitted = fmt.Errorf("preprocessing state not fitted")

	// ErrShapeMismatch is returned when assembled rows do not line up
	// with the width the state was fitted on.
	ErrShapeMismatch = fmt.Errorf("feature shape mismatch")

	// ErrEmptyBatch is returned when fitting on zero records.
	ErrEmptyBatch = fmt.Errorf("%w: empty batch", model.ErrValidation)
)
