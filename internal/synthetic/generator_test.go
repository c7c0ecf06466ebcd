package synthetic_test

import (
	"testing"

	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/internal/synthetic"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a synthetic data generator", t, func() {
		Convey("The same seed yields the same dataset", func() {
			a := synthetic.NewGenerator(synthetic.WithSeed(7)).Records(200)
			b := synthetic.NewGenerator(synthetic.WithSeed(7)).Records(200)
			So(a, ShouldResemble, b)
		})

		Convey("Different seeds yield different datasets", func() {
			a := synthetic.NewGenerator(synthetic.WithSeed(7)).Records(200)
			b := synthetic.NewGenerator(synthetic.WithSeed(8)).Records(200)
			So(a, ShouldNotResemble, b)
		})

		Convey("Every record passes validation after normalization", func() {
			records := synthetic.NewGenerator().Records(500)
			for i := range records {
				records[i].Normalize()
				So(records[i].Validate(), ShouldBeNil)
			}
		})

		Convey("Both classes occur and attrition tracks low satisfaction", func() {
			records := synthetic.NewGenerator().Records(1000)

			var leavers, stayers int
			var leaverSat, stayerSat float64
			for _, r := range records {
				if r.Left {
					leavers++
					leaverSat += r.SatisfactionLevel
				} else {
					stayers++
					stayerSat += r.SatisfactionLevel
				}
			}

			So(leavers, ShouldBeGreaterThan, 100)
			So(stayers, ShouldBeGreaterThan, 100)
			So(leaverSat/float64(leavers), ShouldBeLessThan, stayerSat/float64(stayers))
		})

		Convey("Salary tiers stay inside the enum", func() {
			for _, r := range synthetic.NewGenerator().Records(100) {
				So(r.SalaryTier, ShouldBeIn, model.SalaryLow, model.SalaryMedium, model.SalaryHigh)
			}
		})
	})
}
