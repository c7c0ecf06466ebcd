package classify_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/attrio/turnover/internal/domain/classify"
	. "github.com/smartystreets/goconvey/convey"
)

// separableSet builds a deterministic, linearly separable training set.
func separableSet(n int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data
	x := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		a := rng.Float64()*4 - 2
		b := rng.Float64()*4 - 2
		x[i] = []float64{a, b, rng.Float64()}
		if a+b > 0.2 {
			y[i] = 1
		}
	}
	return x, y
}

func accuracy(c classify.Classifier, x [][]float64, y []int) float64 {
	correct := 0
	for i, p := range c.PredictProbaBatch(x) {
		if (p >= 0.5) == (y[i] == 1) {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

func candidates() []classify.Classifier {
	return []classify.Classifier{
		classify.NewLogisticRegression(classify.DefaultLogisticRegressionConfig()),
		classify.NewRandomForest(classify.DefaultRandomForestConfig()),
		classify.NewGradientBoosting(classify.DefaultGradientBoostingConfig()),
	}
}

func TestClassifiersLearnSeparableData(t *testing.T) {
	Convey("Given a separable training set", t, func() {
		x, y := separableSet(400)

		for _, c := range candidates() {
			c := c
			Convey("Then "+c.Name()+" fits and generalizes", func() {
				So(c.Fit(context.Background(), x, y), ShouldBeNil)
				So(accuracy(c, x, y), ShouldBeGreaterThan, 0.9)
			})
		}
	})
}

func TestClassifierParamsRoundTrip(t *testing.T) {
	Convey("Given fitted classifiers", t, func() {
		x, y := separableSet(300)

		for _, c := range candidates() {
			c := c
			Convey("Then "+c.Name()+" round-trips through its params", func() {
				So(c.Fit(context.Background(), x, y), ShouldBeNil)
				data, err := c.Params()
				So(err, ShouldBeNil)

				restored, err := classify.New(c.Name())
				So(err, ShouldBeNil)
				So(restored.SetParams(data), ShouldBeNil)

				// Bit-identical predictions on a fixed input set.
				want := c.PredictProbaBatch(x)
				got := restored.PredictProbaBatch(x)
				for i := range want {
					So(got[i], ShouldEqual, want[i])
				}
			})
		}
	})
}

func TestClassifierFailureModes(t *testing.T) {
	Convey("Given degenerate training data", t, func() {
		x := [][]float64{{1, 2}, {3, 4}, {5, 6}}
		single := []int{1, 1, 1}

		for _, c := range candidates() {
			c := c
			Convey("Then "+c.Name()+" rejects a single-class set", func() {
				err := c.Fit(context.Background(), x, single)
				So(errors.Is(err, classify.ErrDegenerateData), ShouldBeTrue)
			})
		}
	})

	Convey("Given a cancelled context", t, func() {
		x, y := separableSet(100)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		for _, c := range candidates() {
			c := c
			Convey("Then "+c.Name()+" stops cooperatively", func() {
				So(c.Fit(ctx, x, y), ShouldEqual, context.Canceled)
			})
		}
	})

	Convey("Given an unfitted classifier", t, func() {
		for _, c := range candidates() {
			c := c
			Convey("Then "+c.Name()+" predicts the uninformative prior", func() {
				So(c.PredictProba([]float64{0, 0, 0}), ShouldEqual, 0.5)
			})
			Convey("Then "+c.Name()+" refuses to serialize", func() {
				_, err := c.Params()
				So(errors.Is(err, classify.ErrNotTrained), ShouldBeTrue)
			})
		}
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the algorithm registry", t, func() {
		for _, name := range []string{
			classify.NameLogisticRegression,
			classify.NameRandomForest,
			classify.NameGradientBoosting,
		} {
			c, err := classify.New(name)
			So(err, ShouldBeNil)
			So(c.Name(), ShouldEqual, name)
		}

		Convey("Unknown names fail", func() {
			_, err := classify.New("perceptron")
			So(errors.Is(err, classify.ErrUnknownAlgorithm), ShouldBeTrue)
		})
	})
}
