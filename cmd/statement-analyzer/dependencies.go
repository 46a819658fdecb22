package main

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/extractor"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/statement-analyzer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/pkg/config"
	"github.com/FACorreiaa/statement-analyzer/pkg/metrics"
	"github.com/FACorreiaa/statement-analyzer/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Inbox      storage.Source
	Metrics    *metrics.Pipeline
	Extractor  *extractor.Extractor
	Registry   *parser.Registry
	Classifier *categorization.Classifier
	Analyzer   *insights.Analyzer
	Service    *importservice.Service
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	deps.initServices()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage opens the inbox directory
func (d *Dependencies) initStorage() error {
	inbox, err := storage.NewLocalInbox(d.Config.Pipeline.InboxDir)
	if err != nil {
		return err
	}
	d.Inbox = inbox
	return nil
}

// initServices wires the pipeline stages together
func (d *Dependencies) initServices() {
	p := d.Config.Pipeline

	d.Extractor = extractor.New(d.Logger, extractor.NewTesseractOCR(d.Logger))
	d.Registry = parser.NewDefaultRegistry(d.Logger)
	d.Classifier = categorization.NewDefaultClassifier()
	d.Analyzer = insights.NewAnalyzer(d.Classifier, insights.Options{
		Thresholds:  insights.NewThresholds(d.Config.Thresholds),
		TopN:        p.TopN,
		Currency:    p.DefaultCurrency,
		AssumedYear: p.AssumedYear,
	}, d.Logger)

	d.Service = importservice.NewService(d.Extractor, d.Registry, d.Analyzer, importservice.Options{
		Currency:    p.DefaultCurrency,
		AssumedYear: p.AssumedYear,
		Workers:     p.ParseWorkers,
	}, d.Logger)

	if d.Config.Observability.MetricsEnabled {
		d.Metrics = metrics.NewPipeline()
		d.Service.WithMetrics(d.Metrics)
	}

	d.Logger.Info("services initialized",
		slog.Int("parsers", len(d.Registry.Keys())),
		slog.Int("category_keywords", d.Classifier.KeywordCount()),
		slog.Int("workers", p.ParseWorkers),
	)
}
