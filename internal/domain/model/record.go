// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SalaryTier buckets an employee's compensation.
type SalaryTier string

// Known salary tiers.
const (
	SalaryLow    SalaryTier = "low"
	SalaryMedium SalaryTier = "medium"
	SalaryHigh   SalaryTier = "high"
)

// PerformanceRecord is the canonical input unit for prediction and risk
// scoring. Field names mirror the ingestion schema after alias resolution.
type PerformanceRecord struct {
	SatisfactionLevel   float64    `json:"satisfaction_level" validate:"gte=0,lte=1"`
	LastEvaluation      float64    `json:"last_evaluation" validate:"gte=0,lte=1"`
	NumberProject       int        `json:"number_project" validate:"gte=1"`
	AverageMonthlyHours int        `json:"average_monthly_hours" validate:"gte=1"`
	TimeSpendCompany    int        `json:"time_spend_company" validate:"gte=0"`
	WorkAccident        bool       `json:"work_accident"`
	PromotionLast5Years bool       `json:"promotion_last_5years"`
	SalaryTier          SalaryTier `json:"salary_tier" validate:"oneof=low medium high"`
	Department          string     `json:"department" validate:"required"`
}

// TrainingRecord is a PerformanceRecord paired with the training-time
// target. Left is absent at inference.
type TrainingRecord struct {
	PerformanceRecord
	Left bool `json:"left"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize clamps bounded fields into their documented ranges and coerces
// unbounded numerics to sane integers. NaN float fields are left untouched
// so the feature preparer can distinguish missing from out-of-range.
func (r *PerformanceRecord) Normalize() {
	r.SatisfactionLevel = clampUnit(r.SatisfactionLevel)
	r.LastEvaluation = clampUnit(r.LastEvaluation)
	if r.NumberProject < 1 {
		r.NumberProject = 1
	}
	if r.AverageMonthlyHours < 1 {
		r.AverageMonthlyHours = 1
	}
	if r.TimeSpendCompany < 0 {
		r.TimeSpendCompany = 0
	}
	r.SalaryTier = SalaryTier(strings.ToLower(strings.TrimSpace(string(r.SalaryTier))))
	r.Department = strings.TrimSpace(r.Department)
}

// Validate checks the record against the canonical schema. It is meant to
// run after Normalize (and, on the inference path, after missing numerics
// have been filled from the bundle defaults). Failures wrap ErrValidation.
func (r *PerformanceRecord) Validate() error {
	if math.IsNaN(r.SatisfactionLevel) || math.IsNaN(r.LastEvaluation) {
		return fmt.Errorf("%w: missing numeric field", ErrValidation)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// clampUnit clamps v into [0,1], preserving NaN.
func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(0, math.Min(1, v))
}
