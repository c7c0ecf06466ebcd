package classify

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	json "github.com/goccy/go-json"
)

// RandomForestConfig contains configuration for the bagging ensemble.
type RandomForestConfig struct {
	// Trees is the ensemble size.
	Trees int

	// MaxDepth bounds each tree.
	MaxDepth int

	// MinSamplesLeaf is the minimum rows per leaf.
	MinSamplesLeaf int

	// Seed makes bootstrap sampling and feature subsampling deterministic.
	Seed int64
}

// DefaultRandomForestConfig returns the fixed default hyperparameters.
func DefaultRandomForestConfig() RandomForestConfig {
	return RandomForestConfig{
		Trees:          64,
		MaxDepth:       8,
		MinSamplesLeaf: 2,
		Seed:           42,
	}
}

// randomForestParams is the serialized fitted state.
type randomForestParams struct {
	Trees []*TreeNode `json:"trees"`
}

// RandomForest bags CART trees grown on bootstrap samples with a random
// sqrt-sized feature subset per tree.
type RandomForest struct {
	config RandomForestConfig

	trees   []*TreeNode
	trained bool
}

// NewRandomForest creates an untrained random forest.
func NewRandomForest(cfg RandomForestConfig) *RandomForest {
	if cfg.Trees <= 0 {
		cfg.Trees = 64
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 2
	}
	return &RandomForest{config: cfg}
}

// Name returns the algorithm identifier.
func (f *RandomForest) Name() string { return NameRandomForest }

// Fit grows the ensemble, checking ctx between trees.
func (f *RandomForest) Fit(ctx context.Context, x [][]float64, y []int) error {
	if err := validateTrainingSet(x, y); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(f.config.Seed)) //nolint:gosec // deterministic seed for reproducible training
	dims := len(x[0])
	subset := int(math.Ceil(math.Sqrt(float64(dims))))
	cfg := treeConfig{
		maxDepth:       f.config.MaxDepth,
		minSamplesLeaf: f.config.MinSamplesLeaf,
		maxThresholds:  16,
	}

	f.trees = make([]*TreeNode, 0, f.config.Trees)
	for t := 0; t < f.config.Trees; t++ {
		if contextCancelled(ctx) {
			return ctx.Err()
		}

		rows := make([]int, len(x))
		for i := range rows {
			rows[i] = rng.Intn(len(x))
		}
		features := rng.Perm(dims)[:subset]

		f.trees = append(f.trees, buildClassificationTree(x, y, rows, features, 0, cfg))
	}

	f.trained = true
	return nil
}

// PredictProba averages the tree votes.
func (f *RandomForest) PredictProba(row []float64) float64 {
	if !f.trained {
		return 0.5
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}

// PredictProbaBatch scores every row.
func (f *RandomForest) PredictProbaBatch(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.PredictProba(row)
	}
	return out
}

// Params serializes the fitted trees.
func (f *RandomForest) Params() ([]byte, error) {
	if !f.trained {
		return nil, ErrNotTrained
	}
	return json.Marshal(randomForestParams{Trees: f.trees})
}

// SetParams restores fitted trees.
func (f *RandomForest) SetParams(data []byte) error {
	var p randomForestParams
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("restore %s: %w", f.Name(), err)
	}
	f.trees = p.Trees
	f.trained = len(p.Trees) > 0
	return nil
}
