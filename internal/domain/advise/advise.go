// Package advise converts risk factor contributions into prioritized HR
// actions. Each rule fires on a factor's sub-risk, not the overall score,
// and recommendations are emitted in the fixed factor-check order
// (satisfaction, performance, workload, promotion, safety) rather than
// sorted by priority, so downstream consumers see a stable ordering.
package advise

import (
	"github.com/attrio/turnover/internal/domain/risk"
	"github.com/attrio/turnover/internal/domain/types"
)

// Priorities of recommended actions.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// rule maps one risk factor to an HR action with a firing threshold on the
// factor's sub-risk.
type rule struct {
	factor         string
	threshold      float64
	category       string
	issue          string
	recommendation string
	priority       string
}

// rules run in fixed order; the output order is the rule order.
var rules = []rule{
	{
		factor:         risk.FactorSatisfaction,
		threshold:      0.5,
		category:       "Employee Satisfaction",
		issue:          "Satisfaction level is well below the healthy range",
		recommendation: "Schedule a one-on-one to surface blockers and agree on concrete changes",
		priority:       PriorityHigh,
	},
	{
		factor:         risk.FactorEvaluation,
		threshold:      0.5,
		category:       "Performance",
		issue:          "Last evaluation score indicates underperformance or disengagement",
		recommendation: "Set up a development plan with clear goals and a follow-up review",
		priority:       PriorityHigh,
	},
	{
		factor:         risk.FactorHours,
		threshold:      0.5,
		category:       "Workload",
		issue:          "Monthly hours are far outside the sustainable band",
		recommendation: "Rebalance project load and review on-call and overtime expectations",
		priority:       PriorityMedium,
	},
	{
		factor:         risk.FactorPromotion,
		threshold:      0.3,
		category:       "Career Growth",
		issue:          "No promotion in the last five years",
		recommendation: "Discuss a promotion path or a role change with new responsibilities",
		priority:       PriorityMedium,
	},
	{
		factor:         risk.FactorAccident,
		threshold:      0.2,
		category:       "Safety",
		issue:          "A workplace accident is on record",
		recommendation: "Review workplace safety conditions and offer support resources",
		priority:       PriorityMedium,
	},
}

// Generator derives recommendations from a risk assessment.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate emits one recommendation per rule whose factor sub-risk exceeds
// the rule threshold. Factors below threshold produce nothing.
func (g *Generator) Generate(assessment risk.Assessment) []types.Recommendation {
	out := make([]types.Recommendation, 0, len(rules))
	for _, r := range rules {
		detail, ok := assessment.Details[r.factor]
		if !ok || detail.Risk <= r.threshold {
			continue
		}
		out = append(out, types.Recommendation{
			Category:       r.category,
			Issue:          r.issue,
			Recommendation: r.recommendation,
			Priority:       r.priority,
		})
	}
	return out
}
