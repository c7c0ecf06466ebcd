package advise_test

import (
	"testing"

	"github.com/attrio/turnover/internal/domain/advise"
	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given the recommendation generator", t, func() {
		scorer := risk.NewScorer()
		gen := advise.NewGenerator()

		Convey("A healthy record yields no recommendations", func() {
			recs := gen.Generate(scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.9,
				LastEvaluation:      0.9,
				NumberProject:       3,
				AverageMonthlyHours: 170,
				TimeSpendCompany:    1,
				PromotionLast5Years: true,
				SalaryTier:          model.SalaryMedium,
				Department:          "engineering",
			}))
			So(recs, ShouldBeEmpty)
		})

		Convey("A maximally at-risk record fires all five rules in fixed order", func() {
			recs := gen.Generate(scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.2,
				LastEvaluation:      0.3,
				NumberProject:       7,
				AverageMonthlyHours: 280,
				TimeSpendCompany:    6,
				WorkAccident:        true,
				PromotionLast5Years: false,
				SalaryTier:          model.SalaryLow,
				Department:          "sales",
			}))

			categories := make([]string, len(recs))
			for i, r := range recs {
				categories[i] = r.Category
			}
			So(categories, ShouldResemble, []string{
				"Employee Satisfaction",
				"Performance",
				"Workload",
				"Career Growth",
				"Safety",
			})

			So(recs[0].Priority, ShouldEqual, advise.PriorityHigh)
			So(recs[1].Priority, ShouldEqual, advise.PriorityHigh)
			So(recs[2].Priority, ShouldEqual, advise.PriorityMedium)
			So(recs[3].Priority, ShouldEqual, advise.PriorityMedium)
			So(recs[4].Priority, ShouldEqual, advise.PriorityMedium)

			for _, r := range recs {
				So(r.Issue, ShouldNotBeEmpty)
				So(r.Recommendation, ShouldNotBeEmpty)
			}
		})

		Convey("A moderate satisfaction risk of exactly 0.5 does not fire", func() {
			// satisfaction 0.5 maps to sub-risk 0.5; the rule requires > 0.5.
			recs := gen.Generate(scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.5,
				LastEvaluation:      0.9,
				NumberProject:       3,
				AverageMonthlyHours: 170,
				TimeSpendCompany:    3,
				PromotionLast5Years: true,
				SalaryTier:          model.SalaryMedium,
				Department:          "engineering",
			}))
			So(recs, ShouldBeEmpty)
		})

		Convey("Undersupplied hours do not fire the workload rule", func() {
			// hours < 160 maps to sub-risk 0.3, below the 0.5 threshold.
			recs := gen.Generate(scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.9,
				LastEvaluation:      0.9,
				NumberProject:       3,
				AverageMonthlyHours: 120,
				TimeSpendCompany:    3,
				PromotionLast5Years: true,
				SalaryTier:          model.SalaryMedium,
				Department:          "engineering",
			}))
			So(recs, ShouldBeEmpty)
		})

		Convey("A single firing factor yields exactly one recommendation", func() {
			recs := gen.Generate(scorer.Assess(model.PerformanceRecord{
				SatisfactionLevel:   0.9,
				LastEvaluation:      0.9,
				NumberProject:       3,
				AverageMonthlyHours: 170,
				TimeSpendCompany:    3,
				WorkAccident:        true,
				PromotionLast5Years: true,
				SalaryTier:          model.SalaryMedium,
				Department:          "engineering",
			}))
			So(len(recs), ShouldEqual, 1)
			So(recs[0].Category, ShouldEqual, "Safety")
			So(recs[0].Priority, ShouldEqual, advise.PriorityMedium)
		})
	})
}
