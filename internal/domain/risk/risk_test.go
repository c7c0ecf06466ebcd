package risk_test

import (
	"math/rand"
	"testing"

	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssessBoundaries(t *testing.T) {
	Convey("Given the weighted rule engine", t, func() {
		scorer := risk.NewScorer()

		Convey("A fully healthy record scores zero", func() {
			a := scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.9,
				LastEvaluation:      0.9,
				NumberProject:       3,
				AverageMonthlyHours: 170,
				TimeSpendCompany:    1,
				WorkAccident:        false,
				PromotionLast5Years: true,
				SalaryTier:          model.SalaryMedium,
				Department:          "engineering",
			})
			// Tenure of 1 year triggers the short-tenure rule (0.2 * 0.10).
			So(a.Details[risk.FactorSatisfaction].Risk, ShouldEqual, 0.0)
			So(a.Details[risk.FactorEvaluation].Risk, ShouldEqual, 0.0)
			So(a.Details[risk.FactorProjects].Risk, ShouldEqual, 0.0)
			So(a.Details[risk.FactorHours].Risk, ShouldEqual, 0.0)
			So(a.Details[risk.FactorAccident].Risk, ShouldEqual, 0.0)
			So(a.Details[risk.FactorPromotion].Risk, ShouldEqual, 0.0)
			So(a.Details[risk.FactorTenure].Risk, ShouldEqual, 0.2)
			So(a.OverallScore, ShouldAlmostEqual, 0.02, 1e-12)
			So(a.Level, ShouldEqual, risk.LevelLow)
		})

		Convey("Every factor at its maximum scores the weighted maximum", func() {
			a := scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.2,
				LastEvaluation:      0.3,
				NumberProject:       7,
				AverageMonthlyHours: 280,
				TimeSpendCompany:    6,
				WorkAccident:        true,
				PromotionLast5Years: false,
				SalaryTier:          model.SalaryLow,
				Department:          "sales",
			})
			want := 1.0*0.25 + 1.0*0.20 + 0.7*0.15 + 0.8*0.15 + 0.6*0.10 + 0.3*0.05 + 0.4*0.10
			So(a.OverallScore, ShouldAlmostEqual, want, 1e-12)
			So(a.Level, ShouldEqual, risk.LevelHigh)
			for name, d := range a.Details {
				So(d.Risk, ShouldBeGreaterThan, 0.0)
				So(d.Contribution, ShouldAlmostEqual, d.Risk*d.Weight, 1e-12)
				So(name, ShouldBeIn, risk.FactorOrder())
			}
		})

		Convey("Low satisfaction contributes its full weight", func() {
			a := scorer.Assess(healthyRecord(func(r *model.PerformanceRecord) {
				r.SatisfactionLevel = 0.35
			}))
			So(a.Details[risk.FactorSatisfaction].Risk, ShouldEqual, 1.0)
			So(a.Details[risk.FactorSatisfaction].Contribution, ShouldEqual, 0.25)
		})

		Convey("Level boundaries are lower-inclusive", func() {
			So(risk.LevelFor(0.0), ShouldEqual, risk.LevelLow)
			So(risk.LevelFor(0.29), ShouldEqual, risk.LevelLow)
			So(risk.LevelFor(0.3), ShouldEqual, risk.LevelMedium)
			So(risk.LevelFor(0.69), ShouldEqual, risk.LevelMedium)
			So(risk.LevelFor(0.7), ShouldEqual, risk.LevelHigh)
			So(risk.LevelFor(1.0), ShouldEqual, risk.LevelHigh)
		})
	})
}

func healthyRecord(mutate func(*model.PerformanceRecord)) model.PerformanceRecord {
	r := model.PerformanceRecord{
		SatisfactionLevel:   0.9,
		LastEvaluation:      0.9,
		NumberProject:       3,
		AverageMonthlyHours: 170,
		TimeSpendCompany:    3,
		PromotionLast5Years: true,
		SalaryTier:          model.SalaryMedium,
		Department:          "engineering",
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func TestAssessRangeInvariant(t *testing.T) {
	Convey("Given arbitrary valid records", t, func() {
		scorer := risk.NewScorer()
		rng := rand.New(rand.NewSource(11)) //nolint:gosec // deterministic test data

		Convey("The overall score is always within [0,1]", func() {
			for i := 0; i < 500; i++ {
				a := scorer.Assess(model.PerformanceRecord{
					SatisfactionLevel:   rng.Float64(),
					LastEvaluation:      rng.Float64(),
					NumberProject:       rng.Intn(10) + 1,
					AverageMonthlyHours: rng.Intn(300) + 1,
					TimeSpendCompany:    rng.Intn(12),
					WorkAccident:        rng.Intn(2) == 0,
					PromotionLast5Years: rng.Intn(2) == 0,
					SalaryTier:          model.SalaryLow,
					Department:          "any",
				})
				So(a.OverallScore, ShouldBeBetweenOrEqual, 0.0, 1.0)
				for _, d := range a.Details {
					So(d.Risk, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})
	})
}

func TestWeightsSumToOne(t *testing.T) {
	Convey("Given the factor table", t, func() {
		scorer := risk.NewScorer()
		a := scorer.Assess(healthyRecord(nil))

		var sum float64
		for _, d := range a.Details {
			sum += d.Weight
		}
		So(sum, ShouldAlmostEqual, 1.0, 1e-12)
		So(len(a.Details), ShouldEqual, len(risk.FactorOrder()))
	})
}

func TestAssessIsDeterministic(t *testing.T) {
	Convey("Given the same record", t, func() {
		scorer := risk.NewScorer()
		r := healthyRecord(func(rec *model.PerformanceRecord) { rec.SatisfactionLevel = 0.45 })

		a1 := scorer.Assess(r)
		a2 := scorer.Assess(r)
		So(a1.OverallScore, ShouldEqual, a2.OverallScore)
		So(a1.Level, ShouldEqual, a2.Level)
		So(a1.Details, ShouldResemble, a2.Details)
	})
}
