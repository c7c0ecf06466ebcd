// Package classify implements the candidate turnover classifiers.
//
// Each classifier follows the same lifecycle: construct with a fixed
// default configuration, Fit on a prepared matrix, then predict
// probabilities. Fitted parameters are exported, JSON-serializable values
// so a model round-trips through the bundle artifact without behavioral
// drift. Fit honors ctx cooperatively between iterations; prediction is a
// pure read and safe for concurrent use once fitted.
package classify

import (
	"context"
	"errors"
	"fmt"
)

// Algorithm names. These are the identifiers recorded in bundles.
const (
	NameLogisticRegression = "logistic_regression"
	NameRandomForest       = "random_forest"
	NameGradientBoosting   = "gradient_boosting"
)

// Sentinel kinds for classifier errors.
var (
	// ErrDegenerateData marks a training set the algorithm cannot fit,
	// e.g. a single-class label vector.
	ErrDegenerateData = errors.New("degenerate training data")

	// ErrNotTrained is returned when predicting before a successful Fit.
	ErrNotTrained = errors.New("classifier not trained")

	// ErrUnknownAlgorithm is returned for unrecognized algorithm names.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// Classifier is a binary probability estimator over prepared feature rows.
type Classifier interface {
	// Name returns the algorithm identifier.
	Name() string

	// Fit trains on x (rows of equal width) and labels y (0 or 1),
	// checking ctx between iterations.
	Fit(ctx context.Context, x [][]float64, y []int) error

	// PredictProba returns P(left=1) for one row. The classifier must be
	// fitted; unfitted classifiers return 0.5.
	PredictProba(row []float64) float64

	// PredictProbaBatch returns probabilities for every row.
	PredictProbaBatch(x [][]float64) []float64

	// Params serializes the fitted parameters.
	Params() ([]byte, error)

	// SetParams restores fitted parameters produced by Params.
	SetParams(data []byte) error
}

// New constructs a classifier with default configuration by algorithm
// name. Used when reconstructing a bundle from its persisted artifact.
func New(name string) (Classifier, error) {
	switch name {
	case NameLogisticRegression:
		return NewLogisticRegression(DefaultLogisticRegressionConfig()), nil
	case NameRandomForest:
		return NewRandomForest(DefaultRandomForestConfig()), nil
	case NameGradientBoosting:
		return NewGradientBoosting(DefaultGradientBoostingConfig()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// validateTrainingSet rejects empty or single-class training data.
func validateTrainingSet(x [][]float64, y []int) error {
	if len(x) == 0 || len(y) != len(x) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrDegenerateData, len(x), len(y))
	}
	var positives int
	for _, label := range y {
		if label == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(y) {
		return fmt.Errorf("%w: single-class labels", ErrDegenerateData)
	}
	return nil
}

// contextCancelled checks whether ctx is done without blocking.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
