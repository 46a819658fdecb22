// Package metrics exposes Prometheus counters for batch processing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline groups the batch counters. Each instance owns its registry so that
// repeated runs and tests never collide on registration.
type Pipeline struct {
	Registry *prometheus.Registry

	// DocumentsProcessed counts documents that yielded transactions or profile data
	DocumentsProcessed *prometheus.CounterVec
	// DocumentsFailed counts documents skipped, by reason
	DocumentsFailed *prometheus.CounterVec
	// TransactionsExtracted counts parsed records by dispatch stage
	TransactionsExtracted *prometheus.CounterVec
	// DuplicatesDropped counts records collapsed during consolidation
	DuplicatesDropped prometheus.Counter
	// BatchDuration tracks wall time of whole batches
	BatchDuration prometheus.Histogram
}

// NewPipeline registers the batch counters on a fresh registry.
func NewPipeline() *Pipeline {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Pipeline{
		Registry: reg,
		DocumentsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_documents_processed_total",
				Help: "Total number of documents processed",
			},
			[]string{"bank", "doc_type"},
		),
		DocumentsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_documents_failed_total",
				Help: "Total number of documents skipped",
			},
			[]string{"reason"},
		),
		TransactionsExtracted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_transactions_extracted_total",
				Help: "Total number of transactions parsed from documents",
			},
			[]string{"stage"},
		),
		DuplicatesDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_duplicates_dropped_total",
				Help: "Total number of duplicate transactions dropped during consolidation",
			},
		),
		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statement_batch_duration_seconds",
				Help:    "Batch processing duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// DocumentProcessed records one successfully processed document.
func (p *Pipeline) DocumentProcessed(bank, docType string) {
	p.DocumentsProcessed.WithLabelValues(bank, docType).Inc()
}

// DocumentFailed records one skipped document.
func (p *Pipeline) DocumentFailed(reason string) {
	p.DocumentsFailed.WithLabelValues(reason).Inc()
}

// TransactionsParsed adds n records produced by the given stage.
func (p *Pipeline) TransactionsParsed(stage string, n int) {
	p.TransactionsExtracted.WithLabelValues(stage).Add(float64(n))
}

// Duplicates adds n dropped duplicates.
func (p *Pipeline) Duplicates(n int) {
	p.DuplicatesDropped.Add(float64(n))
}

// BatchFinished observes the duration of one batch in seconds.
func (p *Pipeline) BatchFinished(seconds float64) {
	p.BatchDuration.Observe(seconds)
}

// Gather returns the registry as a prometheus.Gatherer, for exposition.
func (p *Pipeline) Gather() prometheus.Gatherer {
	return p.Registry
}
