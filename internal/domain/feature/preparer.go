// Package feature turns raw performance attributes into the fixed-order
// numeric vectors consumed by the classifiers. The fitted preprocessing
// state (encoders, scaler, feature order, inference defaults) travels with
// the trained bundle so inference reuses the exact training-time versions.
package feature

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/attrio/turnover/internal/domain/model"
)

// Canonical column names of the ingestion schema.
const (
	ColSatisfaction = "satisfaction_level"
	ColEvaluation   = "last_evaluation"
	ColProjects     = "number_project"
	ColHours        = "average_monthly_hours"
	ColTenure       = "time_spend_company"
	ColAccident     = "work_accident"
	ColPromotion    = "promotion_last_5years"
	ColSalary       = "salary_tier"
	ColDepartment   = "department"
	ColLeft         = "left"
)

// Names returns the canonical feature vector layout. The order is fixed;
// it is recorded in every bundle and must match between training and
// inference.
func Names() []string {
	return []string{
		ColSatisfaction,
		ColEvaluation,
		ColProjects,
		ColHours,
		ColTenure,
		ColAccident,
		ColPromotion,
		ColSalary,
		ColDepartment,
	}
}

// aliases maps legacy and typo'd upstream column names to canonical ones.
// This is the single alias table; it is consulted once per incoming column.
var aliases = map[string]string{
	"average_montly_hours": ColHours, // long-standing upstream typo
	"avg_monthly_hours":    ColHours,
	"work_accident":        ColAccident,
	"sales":                ColDepartment, // historic name of the department column
	"dept":                 ColDepartment,
	"salary":               ColSalary,
	"satisfaction":         ColSatisfaction,
	"evaluation":           ColEvaluation,
	"projects":             ColProjects,
	"tenure":               ColTenure,
	"years_at_company":     ColTenure,
	"promotion":            ColPromotion,
	"attrition":            ColLeft,
}

var canonical = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range append(Names(), ColLeft) {
		set[n] = struct{}{}
	}
	return set
}()

// ResolveAlias normalizes an incoming column name to its canonical form.
// Returns false for columns that resolve to nothing; such columns are
// dropped by callers, never kept under two names.
func ResolveAlias(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := canonical[n]; ok {
		return n, true
	}
	if c, ok := aliases[n]; ok {
		return c, true
	}
	return "", false
}

// inferenceDefaults are the explicit constant fill-ins for missing numeric
// fields on the single-record inference path, where a batch median is
// undefined. They are persisted in the bundle state.
var inferenceDefaults = map[string]float64{
	ColSatisfaction: 0.5,
	ColEvaluation:   0.5,
}

// State is the fitted preprocessing state carried inside a bundle. It is
// immutable once bundled: reusing a different encoder or scaler instance at
// inference silently corrupts predictions.
type State struct {
	FeatureNames []string                 `json:"feature_names"`
	Encoders     map[string]*LabelEncoder `json:"encoders"`
	Scaler       *StandardScaler          `json:"scaler"`
	Defaults     map[string]float64       `json:"defaults"`
}

// Fitted reports whether the state is usable for transforms.
func (s *State) Fitted() bool {
	return s != nil && len(s.FeatureNames) > 0 && s.Scaler != nil && len(s.Encoders) > 0
}

// Preparer builds training matrices and fits preprocessing state.
type Preparer struct{}

// NewPreparer creates a Preparer.
func NewPreparer() *Preparer {
	return &Preparer{}
}

// FitTransform prepares a training batch: normalizes records, imputes
// missing numerics with the batch median, fits the categorical encoders and
// the scaler, and assembles the scaled matrix X and label vector y.
// The batch median is deliberately not persisted; the returned State
// carries constant per-field defaults for the inference path instead.
func (p *Preparer) FitTransform(records []model.TrainingRecord) ([][]float64, []int, *State, error) {
	if len(records) == 0 {
		return nil, nil, nil, ErrEmptyBatch
	}

	normalized := make([]model.PerformanceRecord, len(records))
	y := make([]int, len(records))
	for i, r := range records {
		rec := r.PerformanceRecord
		rec.Normalize()
		normalized[i] = rec
		if r.Left {
			y[i] = 1
		}
	}

	imputeColumn(normalized, func(r *model.PerformanceRecord) *float64 { return &r.SatisfactionLevel })
	imputeColumn(normalized, func(r *model.PerformanceRecord) *float64 { return &r.LastEvaluation })

	encoders := map[string]*LabelEncoder{
		ColSalary:     {},
		ColDepartment: {},
	}
	salaries := make([]string, len(normalized))
	departments := make([]string, len(normalized))
	for i, r := range normalized {
		salaries[i] = string(r.SalaryTier)
		departments[i] = r.Department
	}
	encoders[ColSalary].Fit(salaries)
	encoders[ColDepartment].Fit(departments)

	names := Names()
	raw := make([][]float64, len(normalized))
	for i := range normalized {
		row, err := assembleRow(&normalized[i], encoders)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		raw[i] = row
	}

	scaler := &StandardScaler{}
	if err := scaler.Fit(raw); err != nil {
		return nil, nil, nil, err
	}
	x, err := scaler.Transform(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	defaults := make(map[string]float64, len(inferenceDefaults))
	for k, v := range inferenceDefaults {
		defaults[k] = v
	}

	state := &State{
		FeatureNames: names,
		Encoders:     encoders,
		Scaler:       scaler,
		Defaults:     defaults,
	}
	return x, y, state, nil
}

// TransformBatch applies fitted state to inference records in one
// vectorized pass: normalize, fill missing numerics from the persisted
// defaults, validate, encode, assemble, and scale.
func TransformBatch(state *State, records []model.PerformanceRecord) ([][]float64, error) {
	if !state.Fitted() {
		return nil, ErrNotFitted
	}
	if len(state.Scaler.Mean) != len(state.FeatureNames) {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, state names %d features",
			ErrShapeMismatch, len(state.Scaler.Mean), len(state.FeatureNames))
	}

	raw := make([][]float64, len(records))
	for i := range records {
		rec := records[i]
		rec.Normalize()
		fillDefaults(&rec, state.Defaults)
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		row, err := assembleRow(&rec, state.Encoders)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if len(row) != len(state.FeatureNames) {
			return nil, fmt.Errorf("%w: record %d assembled %d features, state fitted on %d",
				ErrShapeMismatch, i, len(row), len(state.FeatureNames))
		}
		raw[i] = row
	}
	return state.Scaler.Transform(raw)
}

// TransformOne applies fitted state to a single record.
func TransformOne(state *State, record model.PerformanceRecord) ([]float64, error) {
	rows, err := TransformBatch(state, []model.PerformanceRecord{record})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// assembleRow lays out a record in the canonical feature order.
func assembleRow(r *model.PerformanceRecord, encoders map[string]*LabelEncoder) ([]float64, error) {
	salaryIdx, err := encoders[ColSalary].Transform(string(r.SalaryTier))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColSalary, err)
	}
	deptIdx, err := encoders[ColDepartment].Transform(r.Department)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColDepartment, err)
	}
	return []float64{
		r.SatisfactionLevel,
		r.LastEvaluation,
		float64(r.NumberProject),
		float64(r.AverageMonthlyHours),
		float64(r.TimeSpendCompany),
		boolToFloat(r.WorkAccident),
		boolToFloat(r.PromotionLast5Years),
		float64(salaryIdx),
		float64(deptIdx),
	}, nil
}

// imputeColumn replaces NaN values of one numeric column with the column
// median computed over the current batch.
func imputeColumn(records []model.PerformanceRecord, field func(*model.PerformanceRecord) *float64) {
	present := make([]float64, 0, len(records))
	for i := range records {
		if v := *field(&records[i]); !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	med := median(present)
	for i := range records {
		p := field(&records[i])
		if math.IsNaN(*p) {
			*p = med
		}
	}
}

// fillDefaults replaces NaN numerics with the bundle's constant defaults.
func fillDefaults(r *model.PerformanceRecord, defaults map[string]float64) {
	if math.IsNaN(r.SatisfactionLevel) {
		r.SatisfactionLevel = defaults[ColSatisfaction]
	}
	if math.IsNaN(r.LastEvaluation) {
		r.LastEvaluation = defaults[ColEvaluation]
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
