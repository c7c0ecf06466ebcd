package classify

import (
	"context"
	"fmt"
	"math"

	json "github.com/goccy/go-json"
)

// LogisticRegressionConfig contains configuration for the linear candidate.
type LogisticRegressionConfig struct {
	// LearningRate is the gradient descent step size.
	LearningRate float64

	// Epochs is the number of full passes over the training matrix.
	Epochs int

	// L2 is the ridge regularization strength applied to the weights.
	L2 float64
}

// DefaultLogisticRegressionConfig returns the fixed default hyperparameters.
func DefaultLogisticRegressionConfig() LogisticRegressionConfig {
	return LogisticRegressionConfig{
		LearningRate: 0.1,
		Epochs:       400,
		L2:           0.01,
	}
}

// logisticRegressionParams is the serialized fitted state.
type logisticRegressionParams struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LogisticRegression is a binary logistic classifier trained with batch
// gradient descent on standardized features.
type LogisticRegression struct {
	config LogisticRegressionConfig

	weights []float64
	bias    float64
	trained bool
}

// NewLogisticRegression creates an untrained logistic regression.
func NewLogisticRegression(cfg LogisticRegressionConfig) *LogisticRegression {
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 400
	}
	return &LogisticRegression{config: cfg}
}

// Name returns the algorithm identifier.
func (l *LogisticRegression) Name() string { return NameLogisticRegression }

// Fit runs batch gradient descent, checking ctx once per epoch.
func (l *LogisticRegression) Fit(ctx context.Context, x [][]float64, y []int) error {
	if err := validateTrainingSet(x, y); err != nil {
		return err
	}

	n := len(x)
	dims := len(x[0])
	l.weights = make([]float64, dims)
	l.bias = 0

	grad := make([]float64, dims)
	for epoch := 0; epoch < l.config.Epochs; epoch++ {
		if contextCancelled(ctx) {
			return ctx.Err()
		}

		for j := range grad {
			grad[j] = 0
		}
		var biasGrad float64
		for i, row := range x {
			p := sigmoid(dot(l.weights, row) + l.bias)
			residual := p - float64(y[i])
			for j, v := range row {
				grad[j] += residual * v
			}
			biasGrad += residual
		}

		scale := l.config.LearningRate / float64(n)
		for j := range l.weights {
			l.weights[j] -= scale * (grad[j] + l.config.L2*l.weights[j])
		}
		l.bias -= scale * biasGrad
	}

	l.trained = true
	return nil
}

// PredictProba returns the sigmoid of the linear score.
func (l *LogisticRegression) PredictProba(row []float64) float64 {
	if !l.trained || len(row) != len(l.weights) {
		return 0.5
	}
	return sigmoid(dot(l.weights, row) + l.bias)
}

// PredictProbaBatch scores every row.
func (l *LogisticRegression) PredictProbaBatch(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = l.PredictProba(row)
	}
	return out
}

// Params serializes the fitted weights.
func (l *LogisticRegression) Params() ([]byte, error) {
	if !l.trained {
		return nil, ErrNotTrained
	}
	return json.Marshal(logisticRegressionParams{Weights: l.weights, Bias: l.bias})
}

// SetParams restores fitted weights.
func (l *LogisticRegression) SetParams(data []byte) error {
	var p logisticRegressionParams
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("restore %s: %w", l.Name(), err)
	}
	l.weights = p.Weights
	l.bias = p.Bias
	l.trained = len(p.Weights) > 0
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
