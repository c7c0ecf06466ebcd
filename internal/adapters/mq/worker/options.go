// Package worker runs training jobs off the request path.
package worker

import (
	"github.com/attrio/turnover/pkg/logger"
)

// Option applies a configuration option to the TrainingWorker.
type Option func(*TrainingWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *TrainingWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *TrainingWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithAutoActivate controls whether a freshly trained bundle is promoted
// to active as part of the job.
func WithAutoActivate(enabled bool) Option {
	return func(w *TrainingWorker) {
		w.autoActivate = enabled
	}
}
