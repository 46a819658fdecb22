package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
	"github.com/FACorreiaa/statement-analyzer/pkg/config"
	"github.com/FACorreiaa/statement-analyzer/pkg/cron"
)

type options struct {
	inbox       string
	reportPath  string
	csvPath     string
	query       string
	searchLimit int
	workers     int
	metricsAddr string
	timeout     time.Duration
	runAtStart  bool
	paths       []string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("statement-analyzer", flag.ContinueOnError)
	fs.StringVar(&o.inbox, "inbox", "", "directory of documents to analyze (overrides INBOX_DIR)")
	fs.StringVar(&o.reportPath, "report", "-", "JSON report destination, - for stdout")
	fs.StringVar(&o.csvPath, "csv", "", "export consolidated transactions as CSV to this path")
	fs.StringVar(&o.query, "search", "", "full-text query over the consolidated transactions")
	fs.IntVar(&o.searchLimit, "search-limit", 20, "maximum number of search hits")
	fs.IntVar(&o.workers, "workers", 0, "parse workers (overrides PARSE_WORKERS)")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Minute, "upper bound of one batch run")
	fs.BoolVar(&o.runAtStart, "run-at-start", false, "with a schedule, run one batch before the first tick")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.paths = fs.Args()
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if opts.inbox != "" {
		cfg.Pipeline.InboxDir = opts.inbox
	}
	if opts.workers > 0 {
		cfg.Pipeline.ParseWorkers = opts.workers
	}

	logger := newLogger(cfg.Observability)

	// Initialize dependencies
	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if deps.Metrics != nil && opts.metricsAddr != "" {
		go startMetricsServer(ctx, deps, opts.metricsAddr)
	}

	job := func(ctx context.Context) error {
		return runOnce(ctx, deps, opts)
	}

	if cfg.Pipeline.Schedule == "" {
		runCtx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		if err := job(runCtx); err != nil {
			logger.Error("batch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	scheduler := cron.NewScheduler(cfg.Pipeline.Schedule, job, opts.timeout, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	if opts.runAtStart {
		go scheduler.RunNow()
	}
	<-ctx.Done()
	<-scheduler.Stop().Done()
	logger.Info("shutdown complete")
}

// runOnce processes one batch and writes its outputs.
func runOnce(ctx context.Context, deps *Dependencies, opts options) error {
	docs, err := loadDocuments(ctx, deps.Inbox, opts.paths)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		deps.Logger.Warn("no documents to process", slog.String("inbox", deps.Config.Pipeline.InboxDir))
	}

	batch, report, err := deps.Service.Run(ctx, docs)
	if err != nil && !errors.Is(err, insights.ErrNothingToAnalyze) {
		return err
	}

	out := output{GeneratedAt: time.Now(), Batch: batch, Report: report}

	categorized := batch.Transactions
	if report != nil && !report.Empty {
		categorized = report.Records
	}

	if opts.query != "" && len(categorized) > 0 {
		hits, err := searchTransactions(categorized, opts.query, opts.searchLimit)
		if err != nil {
			return fmt.Errorf("failed to search transactions: %w", err)
		}
		out.Search = hits
	}

	if opts.csvPath != "" {
		if err := exportCSV(opts.csvPath, categorized); err != nil {
			return err
		}
	}

	w, err := createOutput(opts.reportPath)
	if err != nil {
		return err
	}
	defer w.Close()
	return writeJSON(w, out)
}

func exportCSV(path string, txs []transaction.Transaction) error {
	w, err := createOutput(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return writeCSV(w, txs)
}

// newLogger builds the process logger from LOG_FORMAT and LOG_LEVEL. Logs go to stderr
// so stdout stays free for the report.
func newLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler)
}

// startMetricsServer exposes the pipeline registry until ctx is done.
func startMetricsServer(ctx context.Context, deps *Dependencies, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Gather(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	deps.Logger.Info("metrics server started", "addr", addr, "path", "/metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Logger.Error("metrics server error", "error", err)
	}
}
