// Package service wires the turnover risk engine together: the bundle
// store, the training queue and workers, the predictor, the risk scorer,
// and the recommendation generator behind one facade.
package service

import (
	"context"
	"fmt"
	"sync"

	trainqueue "github.com/attrio/turnover/internal/adapters/mq/queue"
	workerpool "github.com/attrio/turnover/internal/adapters/mq/worker"
	"github.com/attrio/turnover/internal/adapters/repository"
	"github.com/attrio/turnover/internal/domain/advise"
	"github.com/attrio/turnover/internal/domain/feature"
	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/internal/domain/predict"
	"github.com/attrio/turnover/internal/domain/risk"
	"github.com/attrio/turnover/internal/domain/train"
	"github.com/attrio/turnover/internal/domain/types"
	"github.com/attrio/turnover/pkg/logger"
	"github.com/attrio/turnover/pkg/metrics"
	"github.com/google/uuid"
)

// Default service configuration constants.
const (
	defaultStoreDir    = "models"
	defaultQueueSize   = 16
	defaultWorkerCount = 1
)

// Service implements the turnover risk engine operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	jobQueue  trainqueue.Queue
	pool      *workerpool.Pool
	trainer   *train.Trainer
	predictor *predict.Predictor
	scorer    *risk.Scorer
	adviser   *advise.Generator

	// Configuration
	storeDir     string
	queueSize    int
	workerCount  int
	autoActivate bool
	trainerOpts  []train.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStoreDir sets the directory holding persisted bundles.
func WithStoreDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.storeDir = dir
		}
	}
}

// WithQueueSize sets the maximum number of pending training jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of training workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithAutoActivate controls whether trained bundles are promoted to active
// as part of a training run.
func WithAutoActivate(enabled bool) Option {
	return func(s *Service) {
		s.autoActivate = enabled
	}
}

// WithTrainerOptions forwards options to the underlying trainer.
func WithTrainerOptions(opts ...train.Option) Option {
	return func(s *Service) {
		s.trainerOpts = append(s.trainerOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDir:     defaultStoreDir,
		queueSize:    defaultQueueSize,
		workerCount:  defaultWorkerCount,
		autoActivate: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	store, err := repository.NewFSStore(ctx, s.storeDir)
	if err != nil {
		return fmt.Errorf("opening bundle store: %w", err)
	}
	s.store = store

	s.trainer = train.NewTrainer(s.trainerOpts...)
	s.jobQueue = trainqueue.NewInMemoryQueue(trainqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.trainer, s.store,
		workerpool.WithAutoActivate(s.autoActivate),
	)
	s.pool.Start(ctx)

	s.predictor = predict.NewPredictor(s.store)
	s.scorer = risk.NewScorer()
	s.adviser = advise.NewGenerator()

	s.started = true
	s.logger.Info(ctx, "turnover service started",
		logger.String("storeDir", s.storeDir),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("autoActivate", s.autoActivate),
	)

	return nil
}

// Stop gracefully shuts down the service. Pending training jobs drain
// before the workers stop.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "turnover service stopped")
}

// TrainAsync submits a training job for background processing. It returns
// the job id and whether the job was accepted.
func (s *Service) TrainAsync(ctx context.Context, records []model.TrainingRecord) (string, bool) {
	jobID := uuid.NewString()
	accepted := s.jobQueue.Enqueue(ctx, trainqueue.TrainJob{ID: jobID, Records: records})
	if !accepted {
		s.logger.Warn(ctx, "training job rejected",
			logger.String("jobID", jobID),
			logger.Int("queueLength", s.jobQueue.Len(ctx)),
		)
		return "", false
	}

	s.logger.Info(ctx, "training job accepted",
		logger.String("jobID", jobID),
		logger.Int("records", len(records)),
	)
	return jobID, true
}

// TrainSync runs a training job inline and returns the winning bundle.
func (s *Service) TrainSync(ctx context.Context, records []model.TrainingRecord) (*repository.Bundle, error) {
	x, y, state, err := feature.NewPreparer().FitTransform(records)
	if err != nil {
		return nil, fmt.Errorf("feature preparation failed: %w", err)
	}

	result, err := s.trainer.Train(ctx, x, y)
	if err != nil {
		return nil, err
	}

	bundle, err := repository.NewBundle(result, state)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, bundle); err != nil {
		return nil, err
	}
	if s.autoActivate {
		if _, err := s.store.Activate(ctx, bundle.ID); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// Predict scores a single record against the active bundle.
func (s *Service) Predict(ctx context.Context, record model.PerformanceRecord) (types.Prediction, error) {
	res, err := s.predictor.Predict(ctx, record)
	if err != nil {
		return types.Prediction{}, err
	}
	return toPrediction(res), nil
}

// PredictBatch scores records in one vectorized pass.
func (s *Service) PredictBatch(ctx context.Context, records []model.PerformanceRecord) ([]types.Prediction, error) {
	results, err := s.predictor.PredictBatch(ctx, records)
	if err != nil {
		return nil, err
	}
	out := make([]types.Prediction, len(results))
	for i := range results {
		out[i] = toPrediction(&results[i])
	}
	return out, nil
}

// Assess applies the weighted rule engine to a record. It needs no trained
// model and is always available.
func (s *Service) Assess(record model.PerformanceRecord) risk.Assessment {
	assessment := s.scorer.Assess(record)
	metrics.RecordAssessment(string(assessment.Level))
	return assessment
}

// Advise derives prioritized recommendations from a risk assessment.
func (s *Service) Advise(assessment risk.Assessment) []types.Recommendation {
	recs := s.adviser.Generate(assessment)
	for _, rec := range recs {
		metrics.RecordRecommendation(rec.Category)
	}
	return recs
}

// Evaluate merges a model prediction with an optional risk assessment and
// its recommendations into one response.
func (s *Service) Evaluate(ctx context.Context, record model.PerformanceRecord, withRisk bool) (types.Evaluation, error) {
	res, err := s.predictor.Predict(ctx, record)
	if err != nil {
		return types.Evaluation{}, err
	}

	eval := types.Evaluation{Prediction: toPrediction(res)}
	if !withRisk {
		return eval, nil
	}

	assessment := s.Assess(record)
	eval.OverallRiskScore = &assessment.OverallScore
	eval.RiskDetails = make(map[string]types.FactorDetail, len(assessment.Details))
	for name, d := range assessment.Details {
		eval.RiskDetails[name] = types.FactorDetail{
			Value:        d.Value,
			Risk:         d.Risk,
			Weight:       d.Weight,
			Contribution: d.Contribution,
		}
	}
	eval.Recommendations = s.Advise(assessment)
	return eval, nil
}

// Activate promotes a saved bundle to active.
func (s *Service) Activate(ctx context.Context, id string) (repository.BundleInfo, error) {
	bundle, err := s.store.Activate(ctx, id)
	if err != nil {
		return repository.BundleInfo{}, err
	}
	return bundle.Info(), nil
}

// Bundles lists tracked bundles, newest first.
func (s *Service) Bundles(ctx context.Context) ([]repository.BundleInfo, error) {
	return s.store.List(ctx)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if !s.started {
		return stats
	}

	stats["queueLength"] = s.jobQueue.Len(ctx)
	if infos, err := s.store.List(ctx); err == nil {
		stats["bundlesTracked"] = len(infos)
		metrics.UpdateBundlesTracked(len(infos))
	}
	if active, err := s.store.Active(ctx); err == nil {
		stats["activeBundle"] = active.ID
		stats["activeAlgorithm"] = active.AlgorithmName
	}
	return stats
}

// toPrediction maps a predictor result onto the wire shape. The rule-based
// risk level of the predicted probability rides along for callers that do
// not request a full assessment.
func toPrediction(res *predict.Result) types.Prediction {
	return types.Prediction{
		Probability:     res.Probability,
		Prediction:      res.PredictedLabel,
		RiskLevel:       string(risk.LevelFor(res.Probability)),
		ConfidenceScore: res.ConfidenceScore,
		ModelUsed:       res.ModelUsed,
	}
}
