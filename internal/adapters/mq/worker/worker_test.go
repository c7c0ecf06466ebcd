package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/attrio/turnover/internal/adapters/mq/queue"
	"github.com/attrio/turnover/internal/adapters/mq/worker"
	"github.com/attrio/turnover/internal/adapters/repository"
	"github.com/attrio/turnover/internal/domain/classify"
	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/internal/domain/train"
	"github.com/attrio/turnover/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() { //nolint:gochecknoinits // test logging setup
	_ = logger.Init()
}

// trainingSet builds a separable dataset: unhappy, overworked employees left.
func trainingSet(n int) []model.TrainingRecord {
	records := make([]model.TrainingRecord, n)
	for i := range records {
		left := i%2 == 0
		sat, hours := 0.9, 160
		if left {
			sat, hours = 0.1, 300
		}
		records[i] = model.TrainingRecord{
			PerformanceRecord: model.PerformanceRecord{
				SatisfactionLevel:   sat,
				LastEvaluation:      0.7,
				NumberProject:       4,
				AverageMonthlyHours: hours,
				TimeSpendCompany:    3,
				SalaryTier:          model.SalaryMedium,
				Department:          "engineering",
			},
			Left: left,
		}
	}
	return records
}

func newTrainer() *train.Trainer {
	return train.NewTrainer(train.WithCandidates(func() []classify.Classifier {
		return []classify.Classifier{
			classify.NewLogisticRegression(classify.DefaultLogisticRegressionConfig()),
		}
	}))
}

func waitForActive(ctx context.Context, store repository.Store) (*repository.Bundle, error) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if b, err := store.Active(ctx); err == nil {
			return b, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil, errors.New("no bundle became active in time")
}

func TestTrainingWorker(t *testing.T) {
	Convey("Given a worker wired to a queue and a store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, err := repository.NewFSStore(ctx, t.TempDir())
		So(err, ShouldBeNil)
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))

		Convey("When a training job is processed", func() {
			w := worker.NewTrainingWorker(q, newTrainer(), store)
			go w.Run(ctx)

			So(q.Enqueue(ctx, queue.TrainJob{ID: "job-1", Records: trainingSet(40)}), ShouldBeTrue)

			Convey("Then the winning bundle is saved and activated", func() {
				bundle, err := waitForActive(ctx, store)
				So(err, ShouldBeNil)
				So(bundle.AlgorithmName, ShouldEqual, "logistic_regression")
				So(bundle.State, ShouldEqual, repository.StateActive)
			})
		})

		Convey("When auto-activation is disabled", func() {
			w := worker.NewTrainingWorker(q, newTrainer(), store, worker.WithAutoActivate(false))
			go w.Run(ctx)

			So(q.Enqueue(ctx, queue.TrainJob{ID: "job-2", Records: trainingSet(40)}), ShouldBeTrue)

			Convey("Then the bundle is saved but nothing becomes active", func() {
				deadline := time.Now().Add(10 * time.Second)
				var infos []repository.BundleInfo
				for time.Now().Before(deadline) {
					infos, err = store.List(ctx)
					So(err, ShouldBeNil)
					if len(infos) > 0 {
						break
					}
					time.Sleep(20 * time.Millisecond)
				}
				So(len(infos), ShouldEqual, 1)
				So(infos[0].State, ShouldEqual, repository.StateTrained)

				_, err := store.Active(ctx)
				So(errors.Is(err, repository.ErrNoActiveBundle), ShouldBeTrue)
			})
		})

		Convey("When a job carries degenerate data", func() {
			w := worker.NewTrainingWorker(q, newTrainer(), store)
			go w.Run(ctx)

			records := trainingSet(40)
			for i := range records {
				records[i].Left = false
			}
			So(q.Enqueue(ctx, queue.TrainJob{ID: "bad"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.TrainJob{ID: "bad-2", Records: records}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.TrainJob{ID: "good", Records: trainingSet(40)}), ShouldBeTrue)

			Convey("Then the failure is contained and later jobs still run", func() {
				bundle, err := waitForActive(ctx, store)
				So(err, ShouldBeNil)
				So(bundle.AlgorithmName, ShouldEqual, "logistic_regression")
			})
		})
	})
}

func TestPoolShutdown(t *testing.T) {
	Convey("Given a running pool", t, func() {
		ctx := context.Background()

		store, err := repository.NewFSStore(ctx, t.TempDir())
		So(err, ShouldBeNil)
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))

		pool := worker.NewPool(2, q, newTrainer(), store)
		pool.Start(ctx)

		Convey("When a job has been processed", func() {
			So(q.Enqueue(ctx, queue.TrainJob{ID: "job-1", Records: trainingSet(40)}), ShouldBeTrue)
			_, err := waitForActive(ctx, store)
			So(err, ShouldBeNil)

			Convey("Then shutdown closes the queue and stops every worker", func() {
				So(pool.Shutdown(ctx), ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.TrainJob{ID: "late"}), ShouldBeFalse)
			})
		})

		Convey("When jobs are still buffered at shutdown", func() {
			for _, id := range []string{"job-a", "job-b", "job-c"} {
				So(q.Enqueue(ctx, queue.TrainJob{ID: id, Records: trainingSet(40)}), ShouldBeTrue)
			}

			Convey("Then every buffered job completes before the workers stop", func() {
				So(pool.Shutdown(ctx), ShouldBeNil)

				infos, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(len(infos), ShouldEqual, 3)
			})
		})
	})
}
