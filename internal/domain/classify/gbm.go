package classify

import (
	"context"
	"fmt"
	"math"

	json "github.com/goccy/go-json"
)

// GradientBoostingConfig contains configuration for the boosting ensemble.
type GradientBoostingConfig struct {
	// Rounds is the number of boosting iterations.
	Rounds int

	// LearningRate shrinks each tree's contribution.
	LearningRate float64

	// MaxDepth bounds the regression trees; boosting uses shallow ones.
	MaxDepth int

	// MinSamplesLeaf is the minimum rows per leaf.
	MinSamplesLeaf int
}

// DefaultGradientBoostingConfig returns the fixed default hyperparameters.
func DefaultGradientBoostingConfig() GradientBoostingConfig {
	return GradientBoostingConfig{
		Rounds:         80,
		LearningRate:   0.1,
		MaxDepth:       3,
		MinSamplesLeaf: 2,
	}
}

// gradientBoostingParams is the serialized fitted state. The learning rate
// and base score are persisted so a restored model predicts identically
// regardless of the restoring process's configuration.
type gradientBoostingParams struct {
	BaseScore    float64     `json:"base_score"`
	LearningRate float64     `json:"learning_rate"`
	Trees        []*TreeNode `json:"trees"`
}

// GradientBoosting boosts shallow regression trees on log-loss gradients
// with Newton leaf values.
type GradientBoosting struct {
	config GradientBoostingConfig

	baseScore    float64
	learningRate float64
	trees        []*TreeNode
	trained      bool
}

// NewGradientBoosting creates an untrained gradient boosting model.
func NewGradientBoosting(cfg GradientBoostingConfig) *GradientBoosting {
	if cfg.Rounds <= 0 {
		cfg.Rounds = 80
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 2
	}
	return &GradientBoosting{config: cfg}
}

// Name returns the algorithm identifier.
func (g *GradientBoosting) Name() string { return NameGradientBoosting }

// Fit runs the boosting rounds, checking ctx between rounds.
func (g *GradientBoosting) Fit(ctx context.Context, x [][]float64, y []int) error {
	if err := validateTrainingSet(x, y); err != nil {
		return err
	}

	n := len(x)
	var positives float64
	for _, label := range y {
		positives += float64(label)
	}
	prior := positives / float64(n)
	g.baseScore = math.Log(prior / (1 - prior))
	g.learningRate = g.config.LearningRate

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = g.baseScore
	}

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	cfg := treeConfig{
		maxDepth:       g.config.MaxDepth,
		minSamplesLeaf: g.config.MinSamplesLeaf,
		maxThresholds:  16,
	}

	gradients := make([]float64, n)
	hessians := make([]float64, n)
	g.trees = make([]*TreeNode, 0, g.config.Rounds)
	for round := 0; round < g.config.Rounds; round++ {
		if contextCancelled(ctx) {
			return ctx.Err()
		}

		for i := range x {
			p := sigmoid(scores[i])
			gradients[i] = float64(y[i]) - p
			hessians[i] = p * (1 - p)
		}

		tree := buildRegressionTree(x, gradients, hessians, rows, 0, cfg)
		g.trees = append(g.trees, tree)

		for i, row := range x {
			scores[i] += g.learningRate * tree.predict(row)
		}
	}

	g.trained = true
	return nil
}

// PredictProba applies the additive model through the sigmoid link.
func (g *GradientBoosting) PredictProba(row []float64) float64 {
	if !g.trained {
		return 0.5
	}
	score := g.baseScore
	for _, t := range g.trees {
		score += g.learningRate * t.predict(row)
	}
	return sigmoid(score)
}

// PredictProbaBatch scores every row.
func (g *GradientBoosting) PredictProbaBatch(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = g.PredictProba(row)
	}
	return out
}

// Params serializes the fitted ensemble.
func (g *GradientBoosting) Params() ([]byte, error) {
	if !g.trained {
		return nil, ErrNotTrained
	}
	return json.Marshal(gradientBoostingParams{
		BaseScore:    g.baseScore,
		LearningRate: g.learningRate,
		Trees:        g.trees,
	})
}

// SetParams restores the fitted ensemble.
func (g *GradientBoosting) SetParams(data []byte) error {
	var p gradientBoostingParams
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("restore %s: %w", g.Name(), err)
	}
	g.baseScore = p.BaseScore
	g.learningRate = p.LearningRate
	g.trees = p.Trees
	g.trained = len(p.Trees) > 0
	return nil
}

// buildRegressionTree grows a tree on gradient/hessian pairs, splitting by
// gain in squared gradient sums and assigning Newton-step leaf values.
func buildRegressionTree(x [][]float64, gradients, hessians []float64, rows []int, depth int, cfg treeConfig) *TreeNode {
	var gradSum, hessSum float64
	for _, i := range rows {
		gradSum += gradients[i]
		hessSum += hessians[i]
	}
	leaf := &TreeNode{Feature: -1, Value: newtonStep(gradSum, hessSum)}

	if depth >= cfg.maxDepth || len(rows) < 2*cfg.minSamplesLeaf {
		return leaf
	}

	parentGain := gradSum * gradSum / (hessSum + 1e-9)
	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	for f := 0; f < len(x[0]); f++ {
		for _, t := range candidateThresholds(x, rows, f, cfg.maxThresholds) {
			var leftGrad, leftHess float64
			leftTotal := 0
			for _, i := range rows {
				if x[i][f] <= t {
					leftGrad += gradients[i]
					leftHess += hessians[i]
					leftTotal++
				}
			}
			rightTotal := len(rows) - leftTotal
			if leftTotal < cfg.minSamplesLeaf || rightTotal < cfg.minSamplesLeaf {
				continue
			}
			rightGrad := gradSum - leftGrad
			rightHess := hessSum - leftHess
			gain := leftGrad*leftGrad/(leftHess+1e-9) +
				rightGrad*rightGrad/(rightHess+1e-9) - parentGain
			if gain > bestGain {
				bestGain, bestFeature, bestThreshold = gain, f, t
			}
		}
	}

	if bestFeature < 0 {
		return leaf
	}

	leftRows := make([]int, 0, len(rows))
	rightRows := make([]int, 0, len(rows))
	for _, i := range rows {
		if x[i][bestFeature] <= bestThreshold {
			leftRows = append(leftRows, i)
		} else {
			rightRows = append(rightRows, i)
		}
	}

	return &TreeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      buildRegressionTree(x, gradients, hessians, leftRows, depth+1, cfg),
		Right:     buildRegressionTree(x, gradients, hessians, rightRows, depth+1, cfg),
	}
}

func newtonStep(gradSum, hessSum float64) float64 {
	return gradSum / (hessSum + 1e-9)
}
