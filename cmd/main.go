// Command turnover is the CLI surface of the turnover risk engine:
// training from CSV, inference, rule-based assessment, and bundle
// lifecycle management.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	app "github.com/attrio/turnover/internal/app"
	"github.com/attrio/turnover/internal/config"
	"github.com/attrio/turnover/internal/dataset"
	"github.com/attrio/turnover/internal/domain/model"
	"github.com/attrio/turnover/internal/domain/train"
	"github.com/attrio/turnover/pkg/logger"
	"github.com/attrio/turnover/pkg/metrics"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	shutdownTimeout          = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if len(os.Args) < 2 {
		return usageError()
	}
	command, args := os.Args[1], os.Args[2:]

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStoreDir(cfg.StoreDir),
		app.WithQueueSize(cfg.QueueSize),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithAutoActivate(cfg.AutoActivate),
		app.WithTrainerOptions(
			train.WithTestFraction(cfg.TestFraction),
			train.WithSplitSeed(cfg.SplitSeed),
		),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		svc.Stop(shutdownCtx)
	}()

	switch command {
	case "train":
		return cmdTrain(ctx, svc, args)
	case "predict":
		return cmdPredict(ctx, svc, args)
	case "assess":
		return cmdAssess(svc, args)
	case "activate":
		return cmdActivate(ctx, svc, args)
	case "bundles":
		return cmdBundles(ctx, svc)
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("usage: turnover <train csv-file | predict json-file | assess json-file | activate bundle-id | bundles>")
}

// cmdTrain loads a CSV, trains the candidate set, and prints the winner.
func cmdTrain(ctx context.Context, svc *app.Service, args []string) error {
	if len(args) != 1 {
		return usageError()
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, report, err := dataset.LoadCSV(ctx, f)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Get().Info(ctx, "dataset loaded",
		logger.Int("loaded", report.Loaded),
		logger.Int("failed", report.Failed),
	)

	bundle, err := svc.TrainSync(ctx, records)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	return printJSON(map[string]any{
		"bundle_id": bundle.ID,
		"algorithm": bundle.AlgorithmName,
		"metrics":   bundle.Metrics,
		"ingest":    report,
	})
}

// cmdPredict scores records from a JSON file (one object or an array)
// against the active bundle.
func cmdPredict(ctx context.Context, svc *app.Service, args []string) error {
	records, err := readRecords(args)
	if err != nil {
		return err
	}

	predictions, err := svc.PredictBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}
	if len(predictions) == 1 {
		return printJSON(predictions[0])
	}
	return printJSON(predictions)
}

// cmdAssess runs the rule engine and recommendation generator. No trained
// model is needed.
func cmdAssess(svc *app.Service, args []string) error {
	records, err := readRecords(args)
	if err != nil {
		return err
	}

	out := make([]map[string]any, len(records))
	for i, rec := range records {
		assessment := svc.Assess(rec)
		out[i] = map[string]any{
			"overall_risk_score": assessment.OverallScore,
			"risk_level":         assessment.Level,
			"risk_details":       assessment.Details,
			"recommendations":    svc.Advise(assessment),
		}
	}
	if len(out) == 1 {
		return printJSON(out[0])
	}
	return printJSON(out)
}

// cmdActivate promotes a saved bundle to active.
func cmdActivate(ctx context.Context, svc *app.Service, args []string) error {
	if len(args) != 1 {
		return usageError()
	}

	info, err := svc.Activate(ctx, args[0])
	if err != nil {
		return fmt.Errorf("activation failed: %w", err)
	}
	return printJSON(info)
}

// cmdBundles lists tracked bundles, newest first.
func cmdBundles(ctx context.Context, svc *app.Service) error {
	infos, err := svc.Bundles(ctx)
	if err != nil {
		return fmt.Errorf("listing bundles: %w", err)
	}
	return printJSON(infos)
}

// readRecords decodes a single record or an array of records from a JSON
// file given as the only argument.
func readRecords(args []string) ([]model.PerformanceRecord, error) {
	if len(args) != 1 {
		return nil, usageError()
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	var records []model.PerformanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var single model.PerformanceRecord
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parsing input: %w", err)
		}
		records = []model.PerformanceRecord{single}
	}
	return records, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// serveMetrics exposes the prometheus registry until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Get().Info(ctx, "metrics listener started", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Get().Error(ctx, "metrics listener failed", logger.Error(err))
	}
}
