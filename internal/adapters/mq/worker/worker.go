// Package worker runs training jobs off the request path. Each worker
// dequeues a job, prepares features, trains the candidate set, persists the
// winning bundle and, when configured, promotes it to active.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/attrio/turnover/internal/adapters/mq/queue"
	"github.com/attrio/turnover/internal/adapters/repository"
	"github.com/attrio/turnover/internal/domain/feature"
	"github.com/attrio/turnover/internal/domain/train"
	"github.com/attrio/turnover/pkg/logger"
	"github.com/attrio/turnover/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 1 // training is CPU-bound; runs are serialized
	poolShutdownTimeout = 30 * time.Second
)

// Trainer runs the multi-candidate training procedure.
type Trainer interface {
	Train(ctx context.Context, x [][]float64, y []int) (*train.Result, error)
}

// Store persists and promotes trained bundles.
type Store interface {
	Save(ctx context.Context, b *repository.Bundle) error
	Activate(ctx context.Context, id string) (*repository.Bundle, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.TrainJob
}

// Worker processes training jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker. The job in flight completes,
	// and once the queue is closed any jobs still buffered drain before
	// the worker stops.
	Shutdown(ctx context.Context) error
}

// TrainingWorker implements Worker for training jobs.
type TrainingWorker struct {
	queue        Queue
	trainer      Trainer
	store        Store
	name         string
	autoActivate bool

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewTrainingWorker creates a new worker with configuration options.
func NewTrainingWorker(q Queue, trainer Trainer, store Store, opts ...Option) *TrainingWorker {
	w := &TrainingWorker{
		queue:        q,
		trainer:      trainer,
		store:        store,
		name:         "worker",
		autoActivate: true,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		logger:       logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *TrainingWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, jobs)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "training job failed",
					logger.String("jobID", job.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// drain keeps processing until the jobs channel closes. Callers close the
// queue before signaling shutdown, so the channel closes once the buffered
// jobs are handed out.
func (w *TrainingWorker) drain(ctx context.Context, jobs <-chan queue.TrainJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "training job failed",
					logger.String("jobID", job.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker. Safe to call more than once.
func (w *TrainingWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs one training job end to end.
func (w *TrainingWorker) processJob(ctx context.Context, job queue.TrainJob) error {
	start := time.Now()
	defer func() {
		metrics.RecordJobDuration(time.Since(start).Seconds())
	}()

	w.logger.Info(ctx, "training job started",
		logger.String("jobID", job.ID),
		logger.Int("records", len(job.Records)),
	)

	x, y, state, err := feature.NewPreparer().FitTransform(job.Records)
	if err != nil {
		return fmt.Errorf("feature preparation failed: %w", err)
	}

	result, err := w.trainer.Train(ctx, x, y)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	bundle, err := repository.NewBundle(result, state)
	if err != nil {
		return fmt.Errorf("bundle assembly failed: %w", err)
	}
	if err := w.store.Save(ctx, bundle); err != nil {
		return fmt.Errorf("bundle save failed: %w", err)
	}

	if w.autoActivate {
		if _, err := w.store.Activate(ctx, bundle.ID); err != nil {
			return fmt.Errorf("bundle activation failed: %w", err)
		}
	}

	w.logger.Info(ctx, "training job completed",
		logger.String("jobID", job.ID),
		logger.String("bundleID", bundle.ID),
		logger.String("algorithm", bundle.AlgorithmName),
		logger.Float64("f1", bundle.Metrics.F1),
		logger.Bool("activated", w.autoActivate),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*TrainingWorker

	logger logger.Logger
}

// NewPool creates a new worker pool. Training is serialized with a single
// worker unless a larger count is requested.
func NewPool(workerCount int, q Queue, trainer Trainer, store Store, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*TrainingWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewTrainingWorker(q, trainer, store, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown gracefully shuts down the entire worker pool. The queue is
// closed first so jobs still buffered drain before the workers stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.workers[0].queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
