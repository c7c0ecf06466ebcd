// Package predict runs inference against the active model bundle. Single
// records and batches share one code path; batches prepare the full feature
// matrix in one pass before scoring.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/attrio/turnover/internal/adapters/repository"
	"github.com/attrio/turnover/internal/domain/feature"
	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/pkg/logger"
	"github.com/attrio/turnover/pkg/metrics"
)

// Decision threshold on the predicted probability.
const labelThreshold = 0.5

// Result is the outcome of scoring one record.
type Result struct {
	Probability     float64   `json:"probability"`
	PredictedLabel  bool      `json:"predicted_label"`
	ConfidenceScore float64   `json:"confidence_score"`
	ModelUsed       string    `json:"model_used"`
	FeatureNames    []string  `json:"feature_names"`
	FeatureVector   []float64 `json:"feature_vector"`
}

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithLogger sets a custom logger for the predictor.
func WithLogger(l logger.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

// Predictor scores performance records with whichever bundle is active in
// the store at call time.
type Predictor struct {
	store  repository.Store
	logger logger.Logger
}

// NewPredictor creates a Predictor bound to a bundle store.
func NewPredictor(store repository.Store, opts ...Option) *Predictor {
	p := &Predictor{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("predictor")
	}
	return p
}

// Predict scores a single record against the active bundle.
func (p *Predictor) Predict(ctx context.Context, record model.PerformanceRecord) (*Result, error) {
	results, err := p.PredictBatch(ctx, []model.PerformanceRecord{record})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// PredictBatch scores every record in one vectorized pass. The whole batch
// is prepared before any row is scored, so a malformed record fails the
// batch rather than producing a partial result.
func (p *Predictor) PredictBatch(ctx context.Context, records []model.PerformanceRecord) ([]Result, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	bundle, err := p.store.Active(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBundle) {
			metrics.RecordPredictionFailure("no_model")
			return nil, fmt.Errorf("%w: activate a trained bundle first", ErrModelNotLoaded)
		}
		metrics.RecordPredictionFailure("store")
		return nil, err
	}

	clf, err := bundle.Classifier()
	if err != nil {
		metrics.RecordPredictionFailure("store")
		return nil, err
	}

	x, err := feature.TransformBatch(bundle.Preparer, records)
	if err != nil {
		if errors.Is(err, feature.ErrShapeMismatch) {
			metrics.RecordPredictionFailure("shape")
			return nil, fmt.Errorf("%w: %v", ErrInconsistentFeatures, err)
		}
		metrics.RecordPredictionFailure("validation")
		return nil, err
	}
	for i, row := range x {
		if len(row) != len(bundle.FeatureNames) {
			metrics.RecordPredictionFailure("shape")
			return nil, fmt.Errorf("%w: record %d resolved %d features, model expects %d",
				ErrInconsistentFeatures, i, len(row), len(bundle.FeatureNames))
		}
	}

	probs := clf.PredictProbaBatch(x)
	results := make([]Result, len(records))
	for i, prob := range probs {
		results[i] = Result{
			Probability:     prob,
			PredictedLabel:  prob >= labelThreshold,
			ConfidenceScore: confidence(prob),
			ModelUsed:       bundle.AlgorithmName,
			FeatureNames:    append([]string(nil), bundle.FeatureNames...),
			FeatureVector:   append([]float64(nil), x[i]...),
		}
		metrics.RecordPrediction(bundle.AlgorithmName)
	}

	metrics.RecordBatchSize(len(records))
	metrics.RecordPredictionLatency(time.Since(start).Seconds())
	p.logger.Debug(ctx, "batch scored",
		logger.Int("records", len(records)),
		logger.String("algorithm", bundle.AlgorithmName),
	)
	return results, nil
}

// confidence is the distance from the decision boundary rescaled to [0,1]:
// 0 at p=0.5, 1 at either extreme.
func confidence(prob float64) float64 {
	return math.Abs(2*prob - 1)
}
