// Package risk implements the deterministic weighted rule engine. It is
// independent of any trained model: always available, always explainable,
// and a pure function of the input record and the fixed weight table.
package risk

import (
	"github.com/attrio/turnover/internal/domain/model"
)

// Level buckets a continuous risk score.
type Level string

// Risk levels. Lower bounds are inclusive, upper bounds exclusive;
// "high" starts at 0.7 inclusive.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Level thresholds.
const (
	mediumThreshold = 0.3
	highThreshold   = 0.7
)

// Factor names, also the keys of Assessment.Details.
const (
	FactorSatisfaction = "satisfaction_level"
	FactorEvaluation   = "last_evaluation"
	FactorProjects     = "number_project"
	FactorHours        = "average_monthly_hours"
	FactorTenure       = "time_spend_company"
	FactorAccident     = "work_accident"
	FactorPromotion    = "promotion_last_5years"
)

// FactorDetail explains one weighted rule: the raw value it saw, the rule's
// sub-risk, the factor weight, and the weighted contribution.
type FactorDetail struct {
	Value        float64 `json:"value"`
	Risk         float64 `json:"risk"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Assessment is the result of one risk scoring call. Created per call,
// never mutated, owned by the caller.
type Assessment struct {
	OverallScore float64                 `json:"overall_risk_score"`
	Level        Level                   `json:"risk_level"`
	Details      map[string]FactorDetail `json:"risk_details"`
}

// factor pairs a weight with its sub-risk rule. Weights sum to 1.0, every
// rule returns a value in [0,1], so the overall score stays in [0,1].
type factor struct {
	name   string
	weight float64
	value  func(r *model.PerformanceRecord) float64
	rule   func(r *model.PerformanceRecord) float64
}

var factors = []factor{
	{
		name:   FactorSatisfaction,
		weight: 0.25,
		value:  func(r *model.PerformanceRecord) float64 { return r.SatisfactionLevel },
		rule: func(r *model.PerformanceRecord) float64 {
			switch {
			case r.SatisfactionLevel < 0.4:
				return 1.0
			case r.SatisfactionLevel < 0.6:
				return 0.5
			default:
				return 0.0
			}
		},
	},
	{
		name:   FactorEvaluation,
		weight: 0.20,
		value:  func(r *model.PerformanceRecord) float64 { return r.LastEvaluation },
		rule: func(r *model.PerformanceRecord) float64 {
			switch {
			case r.LastEvaluation < 0.4:
				return 1.0
			case r.LastEvaluation < 0.6:
				return 0.5
			default:
				return 0.0
			}
		},
	},
	{
		name:   FactorProjects,
		weight: 0.15,
		value:  func(r *model.PerformanceRecord) float64 { return float64(r.NumberProject) },
		rule: func(r *model.PerformanceRecord) float64 {
			switch {
			case r.NumberProject < 2:
				return 0.3
			case r.NumberProject > 6:
				return 0.7
			default:
				return 0.0
			}
		},
	},
	{
		name:   FactorHours,
		weight: 0.15,
		value:  func(r *model.PerformanceRecord) float64 { return float64(r.AverageMonthlyHours) },
		rule: func(r *model.PerformanceRecord) float64 {
			switch {
			case r.AverageMonthlyHours < 160:
				return 0.3
			case r.AverageMonthlyHours > 200:
				return 0.8
			default:
				return 0.0
			}
		},
	},
	{
		name:   FactorTenure,
		weight: 0.10,
		value:  func(r *model.PerformanceRecord) float64 { return float64(r.TimeSpendCompany) },
		rule: func(r *model.PerformanceRecord) float64 {
			switch {
			case r.TimeSpendCompany < 2:
				return 0.2
			case r.TimeSpendCompany > 5:
				return 0.6
			default:
				return 0.0
			}
		},
	},
	{
		name:   FactorAccident,
		weight: 0.05,
		value:  func(r *model.PerformanceRecord) float64 { return boolValue(r.WorkAccident) },
		rule: func(r *model.PerformanceRecord) float64 {
			if r.WorkAccident {
				return 0.3
			}
			return 0.0
		},
	},
	{
		name:   FactorPromotion,
		weight: 0.10,
		value:  func(r *model.PerformanceRecord) float64 { return boolValue(r.PromotionLast5Years) },
		rule: func(r *model.PerformanceRecord) float64 {
			if !r.PromotionLast5Years {
				return 0.4
			}
			return 0.0
		},
	},
}

// FactorOrder returns the fixed factor evaluation order. The
// recommendation generator relies on it for stable output ordering.
func FactorOrder() []string {
	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.name
	}
	return names
}

// Scorer computes risk assessments from raw performance attributes.
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Assess applies the weight table to a record. The record is normalized
// (clamped/coerced) before the rules run; no trained state is consulted.
func (s *Scorer) Assess(record model.PerformanceRecord) Assessment {
	record.Normalize()

	details := make(map[string]FactorDetail, len(factors))
	var overall float64
	for _, f := range factors {
		subRisk := f.rule(&record)
		contribution := subRisk * f.weight
		overall += contribution
		details[f.name] = FactorDetail{
			Value:        f.value(&record),
			Risk:         subRisk,
			Weight:       f.weight,
			Contribution: contribution,
		}
	}

	return Assessment{
		OverallScore: overall,
		Level:        LevelFor(overall),
		Details:      details,
	}
}

// LevelFor buckets a score: <0.3 low, <0.7 medium, otherwise high.
func LevelFor(score float64) Level {
	switch {
	case score < mediumThreshold:
		return LevelLow
	case score < highThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
