// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the prometheus listen address, e.g. ":9090".
	// Empty disables the metrics listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// StoreDir is the directory holding persisted model bundles.
	StoreDir string `koanf:"store_dir"`

	// QueueSize bounds the in-memory training-job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of training workers.
	WorkerCount int `koanf:"worker_count"`

	// AutoActivate promotes a freshly trained bundle to active.
	AutoActivate bool `koanf:"auto_activate"`

	// TestFraction is the held-out share of the stratified training split.
	TestFraction float64 `koanf:"test_fraction"`

	// SplitSeed seeds the stratified split shuffle.
	SplitSeed int64 `koanf:"split_seed"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		MetricsAddr:  "",
		StoreDir:     "models",
		QueueSize:    16,
		WorkerCount:  1,
		AutoActivate: true,
		TestFraction: 0.2,
		SplitSeed:    42,
	}
}
