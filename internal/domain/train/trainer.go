// Package train fits the candidate classifiers on prepared features,
// evaluates them on a stratified held-out split, and selects the best one.
// Candidate failures are recovered locally by exclusion; a run fails only
// when every candidate fails.
package train

import (
	"context"
	"fmt"
	"time"

	"github.com/attrio/turnover/internal/domain/classify"
	"github.com/attrio/turnover/pkg/logger"
	"github.com/attrio/turnover/pkg/metrics"
)

// Default training configuration constants.
const (
	defaultTestFraction = 0.2
	defaultSplitSeed    = 42
)

// CandidateReport records how one candidate fared.
type CandidateReport struct {
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`
	Skipped bool    `json:"skipped"`
	Reason  string  `json:"reason,omitempty"`
}

// Result is the outcome of a training run.
type Result struct {
	Classifier      classify.Classifier
	AlgorithmName   string
	Metrics         Metrics
	Candidates      []CandidateReport
	SelectionReason string
}

// Option applies a configuration option to the Trainer.
type Option func(*Trainer)

// WithCandidates replaces the default candidate constructors.
func WithCandidates(factory func() []classify.Classifier) Option {
	return func(t *Trainer) {
		if factory != nil {
			t.candidates = factory
		}
	}
}

// WithTestFraction sets the held-out fraction of the stratified split.
func WithTestFraction(fraction float64) Option {
	return func(t *Trainer) {
		if fraction > 0 && fraction < 1 {
			t.testFraction = fraction
		}
	}
}

// WithSplitSeed sets the shuffle seed of the stratified split.
func WithSplitSeed(seed int64) Option {
	return func(t *Trainer) {
		t.splitSeed = seed
	}
}

// WithLogger sets a custom logger for the trainer.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// Trainer runs the multi-candidate training procedure.
type Trainer struct {
	candidates   func() []classify.Classifier
	testFraction float64
	splitSeed    int64
	logger       logger.Logger
}

// NewTrainer creates a Trainer with the default candidate set: a bagging
// ensemble, a boosting ensemble, and a linear classifier, each with fixed
// default hyperparameters.
func NewTrainer(opts ...Option) *Trainer {
	t := &Trainer{
		candidates: func() []classify.Classifier {
			return []classify.Classifier{
				classify.NewRandomForest(classify.DefaultRandomForestConfig()),
				classify.NewGradientBoosting(classify.DefaultGradientBoostingConfig()),
				classify.NewLogisticRegression(classify.DefaultLogisticRegressionConfig()),
			}
		},
		testFraction: defaultTestFraction,
		splitSeed:    defaultSplitSeed,
	}

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Train fits every candidate on the stratified training half, evaluates on
// the held-out half, and selects the candidate with the highest F1.
// Ties break on higher AUC, then lexical algorithm name. Candidates that
// fail to fit are skipped; Train fails only when all candidates fail or
// ctx is cancelled.
func (t *Trainer) Train(ctx context.Context, x [][]float64, y []int) (*Result, error) {
	if t.logger == nil {
		t.logger = logger.Get().Named("trainer")
	}

	start := time.Now()
	split := StratifiedSplit(x, y, t.testFraction, t.splitSeed)
	metrics.UpdateTrainingRows(len(x))

	var (
		reports  []CandidateReport
		best     classify.Classifier
		bestEval Metrics
	)

	for _, candidate := range t.candidates() {
		if err := candidate.Fit(ctx, split.XTrain, split.YTrain); err != nil {
			if ctx.Err() != nil {
				metrics.RecordTrainingRun("cancelled")
				return nil, ctx.Err()
			}
			t.logger.Warn(ctx, "candidate failed to fit; excluding from selection",
				logger.String("algorithm", candidate.Name()),
				logger.Error(err),
			)
			metrics.RecordCandidateFailure(candidate.Name())
			reports = append(reports, CandidateReport{
				Name:    candidate.Name(),
				Skipped: true,
				Reason:  err.Error(),
			})
			continue
		}

		eval := Evaluate(candidate.PredictProbaBatch(split.XTest), split.YTest)
		metrics.UpdateCandidateScores(candidate.Name(), eval.F1, eval.AUC)
		t.logger.Info(ctx, "candidate evaluated",
			logger.String("algorithm", candidate.Name()),
			logger.Float64("accuracy", eval.Accuracy),
			logger.Float64("f1", eval.F1),
			logger.Float64("auc", eval.AUC),
		)
		reports = append(reports, CandidateReport{Name: candidate.Name(), Metrics: eval})

		if best == nil || betterThan(candidate.Name(), eval, best.Name(), bestEval) {
			best, bestEval = candidate, eval
		}
	}

	if best == nil {
		metrics.RecordTrainingRun("failed")
		return nil, fmt.Errorf("%w: %d candidates", ErrAllCandidatesFailed, len(reports))
	}

	metrics.RecordTrainingRun("completed")
	metrics.RecordTrainingDuration(time.Since(start).Seconds())

	result := &Result{
		Classifier:      best,
		AlgorithmName:   best.Name(),
		Metrics:         bestEval,
		Candidates:      reports,
		SelectionReason: fmt.Sprintf("highest F1 (%.4f); ties break on AUC, then name", bestEval.F1),
	}
	t.logger.Info(ctx, "model selected",
		logger.String("algorithm", result.AlgorithmName),
		logger.Float64("f1", bestEval.F1),
		logger.Float64("auc", bestEval.AUC),
	)
	return result, nil
}

// betterThan orders candidates by F1 desc, then AUC desc, then name asc.
func betterThan(name string, m Metrics, bestName string, best Metrics) bool {
	if m.F1 != best.F1 {
		return m.F1 > best.F1
	}
	if m.AUC != best.AUC {
		return m.AUC > best.AUC
	}
	return name < bestName
}
