package predict

import "errors"

// Sentinel errors for the predict package.
var (
	// ErrModelNotLoaded indicates no active model bundle is available.
	ErrModelNotLoaded = errors.New("no active model loaded")

	// ErrInconsistentFeatures indicates the resolved feature vector does
	// not match the shape the active model was trained on.
	ErrInconsistentFeatures = errors.New("feature vector does not match trained model")

	// ErrEmptyBatch indicates a batch prediction was requested with no records.
	ErrEmptyBatch = errors.New("empty prediction batch")
)
