package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/attrio/turnover/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.StoreDir, convey.ShouldEqual, "models")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)
				convey.So(cfg.AutoActivate, convey.ShouldBeTrue)
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.2)
				convey.So(cfg.SplitSeed, convey.ShouldEqual, 42)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TURNOVER_STORE_DIR", "/var/lib/turnover")
			_ = os.Setenv("TURNOVER_QUEUE_SIZE", "64")
			_ = os.Setenv("TURNOVER_WORKER_COUNT", "2")
			_ = os.Setenv("TURNOVER_AUTO_ACTIVATE", "false")
			_ = os.Setenv("TURNOVER_TEST_FRACTION", "0.3")
			_ = os.Setenv("TURNOVER_METRICS_ADDR", ":9090")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.StoreDir, convey.ShouldEqual, "/var/lib/turnover")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.AutoActivate, convey.ShouldBeFalse)
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.3)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9090")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
log_level: "debug"
store_dir: "/data/models"
queue_size: 32
worker_count: 2
test_fraction: 0.25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TURNOVER_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.StoreDir, convey.ShouldEqual, "/data/models")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.25)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
store_dir: "/data/models"
queue_size: 32
worker_count: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TURNOVER_CONFIG", tmpFile)
			_ = os.Setenv("TURNOVER_STORE_DIR", "/env/models")
			_ = os.Setenv("TURNOVER_WORKER_COUNT", "4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.StoreDir, convey.ShouldEqual, "/env/models") // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)           // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)          // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TURNOVER_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TURNOVER_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty store_dir", func() {
			_ = os.Setenv("TURNOVER_STORE_DIR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range test fraction", func() {
			_ = os.Setenv("TURNOVER_TEST_FRACTION", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
store_dir: "/data/models"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TURNOVER_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.StoreDir, convey.ShouldEqual, "/data/models") // From file
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)            // From defaults
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)           // From defaults
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.2)        // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TURNOVER_QUEUE_SIZE", "invalid")
			_ = os.Setenv("TURNOVER_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TURNOVER_CONFIG",
		"TURNOVER_LOG_LEVEL",
		"TURNOVER_METRICS_ADDR",
		"TURNOVER_STORE_DIR",
		"TURNOVER_QUEUE_SIZE",
		"TURNOVER_WORKER_COUNT",
		"TURNOVER_AUTO_ACTIVATE",
		"TURNOVER_TEST_FRACTION",
		"TURNOVER_SPLIT_SEED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "turnover-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
