package repository

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/attrio/turnover/internal/domain/classify"
	"github.com/attrio/turnover/internal/domain/feature"
	"github.com/attrio/turnover/internal/domain/train"
)

// Bundle is the atomic unit of a trained model plus the exact
// preprocessing state used during training. Its serialized form is one
// artifact; scaler, encoders and feature order are immutable once bundled.
type Bundle struct {
	ID            string          `json:"id"`
	AlgorithmName string          `json:"algorithm_name"`
	Params        json.RawMessage `json:"params"`
	Preparer      *feature.State  `json:"preparer"`
	FeatureNames  []string        `json:"feature_names"`
	Metrics       train.Metrics   `json:"metrics"`
	CreatedAt     time.Time       `json:"created_at"`

	// State is tracked by the store's manifest, not the artifact, so
	// activation never rewrites immutable artifacts.
	State BundleState `json:"-"`

	classifier classify.Classifier
}

// NewBundle packages a training result and its fitted preprocessing state
// into a Trained bundle.
func NewBundle(result *train.Result, state *feature.State) (*Bundle, error) {
	params, err := result.Classifier.Params()
	if err != nil {
		return nil, fmt.Errorf("package bundle: %w", err)
	}
	return &Bundle{
		ID:            uuid.NewString(),
		AlgorithmName: result.AlgorithmName,
		Params:        params,
		Preparer:      state,
		FeatureNames:  append([]string(nil), state.FeatureNames...),
		Metrics:       result.Metrics,
		CreatedAt:     time.Now().UTC(),
		State:         StateTrained,
		classifier:    result.Classifier,
	}, nil
}

// Classifier returns the bundle's fitted classifier, reconstructing it
// from the persisted parameters on first use.
func (b *Bundle) Classifier() (classify.Classifier, error) {
	if b.classifier != nil {
		return b.classifier, nil
	}
	c, err := classify.New(b.AlgorithmName)
	if err != nil {
		return nil, err
	}
	if err := c.SetParams(b.Params); err != nil {
		return nil, err
	}
	b.classifier = c
	return c, nil
}

// Info returns the listing row for this bundle.
func (b *Bundle) Info() BundleInfo {
	return BundleInfo{
		ID:            b.ID,
		AlgorithmName: b.AlgorithmName,
		State:         b.State,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}
