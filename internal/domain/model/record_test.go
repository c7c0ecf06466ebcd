package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/attrio/turnover/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validRecord() model.PerformanceRecord {
	return model.PerformanceRecord{
		SatisfactionLevel:   0.7,
		LastEvaluation:      0.8,
		NumberProject:       4,
		AverageMonthlyHours: 180,
		TimeSpendCompany:    3,
		SalaryTier:          model.SalaryMedium,
		Department:          "engineering",
	}
}

func TestNormalize(t *testing.T) {
	Convey("Given records with out-of-range fields", t, func() {
		Convey("When bounded floats exceed their range", func() {
			r := validRecord()
			r.SatisfactionLevel = 1.4
			r.LastEvaluation = -0.2
			r.Normalize()
			So(r.SatisfactionLevel, ShouldEqual, 1.0)
			So(r.LastEvaluation, ShouldEqual, 0.0)
		})

		Convey("When integer fields are below their floor", func() {
			r := validRecord()
			r.NumberProject = 0
			r.AverageMonthlyHours = -10
			r.TimeSpendCompany = -1
			r.Normalize()
			So(r.NumberProject, ShouldEqual, 1)
			So(r.AverageMonthlyHours, ShouldEqual, 1)
			So(r.TimeSpendCompany, ShouldEqual, 0)
		})

		Convey("When the salary tier carries caseing and whitespace", func() {
			r := validRecord()
			r.SalaryTier = "  High "
			r.Normalize()
			So(r.SalaryTier, ShouldEqual, model.SalaryHigh)
		})

		Convey("When a float field is NaN it stays NaN for imputation", func() {
			r := validRecord()
			r.SatisfactionLevel = math.NaN()
			r.Normalize()
			So(math.IsNaN(r.SatisfactionLevel), ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the record validator", t, func() {
		Convey("A normalized, complete record passes", func() {
			r := validRecord()
			r.Normalize()
			So(r.Validate(), ShouldBeNil)
		})

		Convey("A NaN numeric fails with ErrValidation", func() {
			r := validRecord()
			r.LastEvaluation = math.NaN()
			err := r.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("An unknown salary tier fails with ErrValidation", func() {
			r := validRecord()
			r.SalaryTier = "astronomical"
			err := r.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("An empty department fails with ErrValidation", func() {
			r := validRecord()
			r.Department = ""
			err := r.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("An out-of-range satisfaction fails until normalized", func() {
			r := validRecord()
			r.SatisfactionLevel = 2.5
			So(errors.Is(r.Validate(), model.ErrValidation), ShouldBeTrue)
			r.Normalize()
			So(r.Validate(), ShouldBeNil)
		})
	})
}
