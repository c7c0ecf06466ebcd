// Package metrics provides Prometheus instrumentation for the turnover
// risk engine: training runs, model selection, inference, risk scoring,
// bundle store operations, and the training job queue.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns the metric collectors and the registry they are bound to.
type Manager struct {
	registry *prometheus.Registry

	// Training
	trainingRunsTotal      *prometheus.CounterVec
	candidateFailuresTotal *prometheus.CounterVec
	candidateF1            *prometheus.GaugeVec
	candidateAUC           *prometheus.GaugeVec
	trainingDuration       prometheus.Histogram
	trainingRowsLast       prometheus.Gauge

	// Inference
	predictionsTotal   *prometheus.CounterVec
	predictionLatency  prometheus.Histogram
	batchSize          prometheus.Histogram
	predictionFailures *prometheus.CounterVec

	// Risk scoring and recommendations
	assessmentsTotal     *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec

	// Bundle store
	bundleSavesTotal       prometheus.Counter
	bundleLoadsTotal       prometheus.Counter
	bundleActivationsTotal prometheus.Counter
	bundleErrorsTotal      *prometheus.CounterVec
	bundlesTracked         prometheus.Gauge

	// Training job queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueuesTotal prometheus.Counter
	queueDequeuesTotal prometheus.Counter
	queueRejectsTotal  *prometheus.CounterVec
	workerCount        prometheus.Gauge
	jobDuration        prometheus.Histogram

	// Ingestion
	ingestRowsTotal *prometheus.CounterVec
}

var manager *Manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	manager = NewManager()
}

// NewManager creates a Manager with all collectors registered on a fresh
// registry.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	m.trainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_training_runs_total",
		Help: "Training runs by outcome (completed, failed, cancelled).",
	}, []string{"outcome"})

	m.candidateFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_training_candidate_failures_total",
		Help: "Candidate classifiers that failed to fit, by algorithm.",
	}, []string{"algorithm"})

	m.candidateF1 = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "turnover_training_candidate_f1",
		Help: "Weighted F1 of each candidate on the held-out split.",
	}, []string{"algorithm"})

	m.candidateAUC = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "turnover_training_candidate_auc",
		Help: "AUC of each candidate on the held-out split.",
	}, []string{"algorithm"})

	m.trainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "turnover_training_duration_seconds",
		Help:    "Wall-clock duration of training runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	m.trainingRowsLast = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "turnover_training_rows_last",
		Help: "Row count of the most recent training run.",
	})

	m.predictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_predictions_total",
		Help: "Predictions served, by algorithm of the active bundle.",
	}, []string{"algorithm"})

	m.predictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "turnover_prediction_latency_seconds",
		Help:    "Latency of single and batch prediction calls.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	m.batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "turnover_prediction_batch_size",
		Help:    "Record counts of batch prediction calls.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	m.predictionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_prediction_failures_total",
		Help: "Failed prediction calls by reason (validation, no_model, feature_skew, internal).",
	}, []string{"reason"})

	m.assessmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_risk_assessments_total",
		Help: "Risk assessments produced, by resulting risk level.",
	}, []string{"level"})

	m.recommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_recommendations_total",
		Help: "Recommendations emitted, by category.",
	}, []string{"category"})

	m.bundleSavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "turnover_bundle_saves_total",
		Help: "Bundles persisted by the model store.",
	})

	m.bundleLoadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "turnover_bundle_loads_total",
		Help: "Bundles loaded from the model store.",
	})

	m.bundleActivationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "turnover_bundle_activations_total",
		Help: "Bundle activations (including re-activations of retired bundles).",
	})

	m.bundleErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_bundle_errors_total",
		Help: "Model store failures by operation (save, load, activate).",
	}, []string{"operation"})

	m.bundlesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "turnover_bundles_tracked",
		Help: "Number of bundles currently tracked by the store.",
	})

	m.queueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "turnover_training_queue_size",
		Help: "Training jobs currently queued.",
	})

	m.queueCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "turnover_training_queue_capacity",
		Help: "Configured training queue capacity.",
	})

	m.queueUtilization = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "turnover_training_queue_utilization",
		Help: "Queue size divided by capacity.",
	})

	m.queueEnqueuesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "turnover_training_queue_enqueues_total",
		Help: "Training jobs accepted by the queue.",
	})

	m.queueDequeuesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "turnover_training_queue_dequeues_total",
		Help: "Training jobs handed to workers.",
	})

	m.queueRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_training_queue_rejects_total",
		Help: "Training jobs rejected by the queue, by reason.",
	}, []string{"reason"})

	m.workerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "turnover_training_workers",
		Help: "Number of training workers.",
	})

	m.jobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "turnover_training_job_duration_seconds",
		Help:    "End-to-end duration of queued training jobs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	m.ingestRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "turnover_ingest_rows_total",
		Help: "CSV ingestion rows by outcome (loaded, failed).",
	}, []string{"outcome"})

	m.registry.MustRegister(
		m.trainingRunsTotal,
		m.candidateFailuresTotal,
		m.candidateF1,
		m.candidateAUC,
		m.trainingDuration,
		m.trainingRowsLast,
		m.predictionsTotal,
		m.predictionLatency,
		m.batchSize,
		m.predictionFailures,
		m.assessmentsTotal,
		m.recommendationsTotal,
		m.bundleSavesTotal,
		m.bundleLoadsTotal,
		m.bundleActivationsTotal,
		m.bundleErrorsTotal,
		m.bundlesTracked,
		m.queueSize,
		m.queueCapacity,
		m.queueUtilization,
		m.queueEnqueuesTotal,
		m.queueDequeuesTotal,
		m.queueRejectsTotal,
		m.workerCount,
		m.jobDuration,
		m.ingestRowsTotal,
	)
}

// Package-level helpers operating on the global manager.

func RecordTrainingRun(outcome string) {
	manager.trainingRunsTotal.WithLabelValues(outcome).Inc()
}

func RecordCandidateFailure(algorithm string) {
	manager.candidateFailuresTotal.WithLabelValues(algorithm).Inc()
}

func UpdateCandidateScores(algorithm string, f1, auc float64) {
	manager.candidateF1.WithLabelValues(algorithm).Set(f1)
	manager.candidateAUC.WithLabelValues(algorithm).Set(auc)
}

func RecordTrainingDuration(seconds float64) {
	manager.trainingDuration.Observe(seconds)
}

func UpdateTrainingRows(rows int) {
	manager.trainingRowsLast.Set(float64(rows))
}

func RecordPrediction(algorithm string) {
	manager.predictionsTotal.WithLabelValues(algorithm).Inc()
}

func RecordPredictionLatency(seconds float64) {
	manager.predictionLatency.Observe(seconds)
}

func RecordBatchSize(n int) {
	manager.batchSize.Observe(float64(n))
}

func RecordPredictionFailure(reason string) {
	manager.predictionFailures.WithLabelValues(reason).Inc()
}

func RecordAssessment(level string) {
	manager.assessmentsTotal.WithLabelValues(level).Inc()
}

func RecordRecommendation(category string) {
	manager.recommendationsTotal.WithLabelValues(category).Inc()
}

func RecordBundleSave() {
	manager.bundleSavesTotal.Inc()
}

func RecordBundleLoad() {
	manager.bundleLoadsTotal.Inc()
}

func RecordBundleActivation() {
	manager.bundleActivationsTotal.Inc()
}

func RecordBundleError(operation string) {
	manager.bundleErrorsTotal.WithLabelValues(operation).Inc()
}

func UpdateBundlesTracked(count int) {
	manager.bundlesTracked.Set(float64(count))
}

func UpdateQueueSize(size int) {
	manager.queueSize.Set(float64(size))
}

func UpdateQueueCapacity(capacity int) {
	manager.queueCapacity.Set(float64(capacity))
}

func UpdateQueueUtilization(utilization float64) {
	manager.queueUtilization.Set(utilization)
}

func RecordQueueEnqueue() {
	manager.queueEnqueuesTotal.Inc()
}

func RecordQueueDequeue() {
	manager.queueDequeuesTotal.Inc()
}

func RecordQueueReject(reason string) {
	manager.queueRejectsTotal.WithLabelValues(reason).Inc()
}

func UpdateWorkerCount(count int) {
	manager.workerCount.Set(float64(count))
}

func RecordJobDuration(seconds float64) {
	manager.jobDuration.Observe(seconds)
}

func RecordIngestRow(outcome string) {
	manager.ingestRowsTotal.WithLabelValues(outcome).Inc()
}

// GetRegistry returns the registry backing the global manager, for exposing
// via an HTTP handler or scraping in tests.
func GetRegistry() *prometheus.Registry {
	return manager.registry
}
