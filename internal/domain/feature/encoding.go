package feature

import (
	"fmt"
	"math"
	"sort"
)

// LabelEncoder maps categorical string values to integer indices. Classes
// are assigned indices in sorted order at fit time and are immutable once
// the encoder is bundled. The exported field makes the encoder round-trip
// through the bundle artifact.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// Fit assigns indices to the unique values in sorted order.
func (e *LabelEncoder) Fit(values []string) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	e.Classes = make([]string, 0, len(seen))
	for v := range seen {
		e.Classes = append(e.Classes, v)
	}
	sort.Strings(e.Classes)
	e.buildIndex()
}

// Transform returns the index of v. Unknown values fail with
// ErrUnknownCategory rather than silently encoding a default index.
func (e *LabelEncoder) Transform(v string) (int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	idx, ok := e.index[v]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
	}
	return idx, nil
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// StandardScaler standardizes columns to zero mean and unit variance.
// Fit once on the training matrix; the fitted state is bundled and reused
// verbatim at inference, never refit.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-column mean and standard deviation. Zero-variance
// columns get a standard deviation of 1 so transforms stay finite.
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return ErrEmptyBatch
	}
	cols := len(x[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for j := 0; j < cols; j++ {
		var sum float64
		for i := range x {
			sum += x[i][j]
		}
		mean := sum / float64(len(x))

		var variance float64
		for i := range x {
			d := x[i][j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(len(x)))
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return nil
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformRow standardizes a single feature vector.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d columns, got %d", len(s.Mean), len(row))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
