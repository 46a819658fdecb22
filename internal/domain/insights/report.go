// Package insights derives totals, summaries and risk signals from the consolidated
// transactions of a batch.
package insights

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// ErrNothingToAnalyze is returned when a batch produced no transactions at all.
var ErrNothingToAnalyze = errors.New("no transactions to analyze")

// Report is the full analysis of one batch.
type Report struct {
	Empty bool `json:"empty"`

	Records    []transaction.Transaction  `json:"-"`
	Partitions categorization.Partitioned `json:"-"`
	Totals     Totals                     `json:"totals"`
	Score      int                        `json:"score"`
	Monthly    []MonthSummary             `json:"monthly"`

	TopInflows  []transaction.Transaction `json:"top_inflows"`
	TopOutflows []transaction.Transaction `json:"top_outflows"`

	Statement StatementSummary `json:"statement_summary"`
	Bill      BillSummary      `json:"bill_summary"`
	General   GeneralSummary   `json:"general_summary"`

	Risk      []RiskIndicator `json:"risk_indicators"`
	Gambling  []GamblingFlag  `json:"gambling_flags"`
	Anomalies []Anomaly       `json:"anomaly_flags"`
}

// Options tune an Analyzer.
type Options struct {
	Thresholds  Thresholds
	TopN        int
	Currency    string
	AssumedYear int
}

// Analyzer runs classification and every analytic over a batch.
type Analyzer struct {
	classifier *categorization.Classifier
	opts       Options
	logger     *slog.Logger
}

// NewAnalyzer creates an analyzer. A zero TopN defaults to 10 and an empty currency to BRL.
func NewAnalyzer(classifier *categorization.Classifier, opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Currency == "" {
		opts.Currency = "BRL"
	}
	return &Analyzer{classifier: classifier, opts: opts, logger: logger}
}

// Analyze categorizes the records and computes the report. Totals, rollups, rankings
// and risk signals cover every record; the score and the statement and bill summaries
// cover their partitions only. rawText is the concatenated
// text of every document of the batch; card-bill figures are read from it.
//
// An empty batch yields a report with Empty set together with ErrNothingToAnalyze.
func (a *Analyzer) Analyze(ctx context.Context, txs []transaction.Transaction, rawText string) (*Report, error) {
	_, span := otel.Tracer("insights").Start(ctx, "Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("transactions", len(txs)))

	if len(txs) == 0 {
		a.logger.Info("nothing to analyze")
		return &Report{Empty: true}, ErrNothingToAnalyze
	}

	c := a.classifier.Categorize(txs)
	p := c.Partitioned
	categorized := c.Records
	statement := p.Statement()
	th := a.opts.Thresholds

	r := &Report{
		Records:     categorized,
		Partitions:  p,
		Totals:      ComputeTotals(categorized),
		Score:       Score(statement, th),
		Monthly:     MonthlyRollup(categorized),
		TopInflows:  TopN(categorized, transaction.FlowInflow, a.opts.TopN),
		TopOutflows: TopN(categorized, transaction.FlowOutflow, a.opts.TopN),
		Statement:   SummarizeStatement(p),
		Bill:        SummarizeBill(p, rawText, a.opts.AssumedYear),
		General:     SummarizeGeneral(p),
		Risk:        AnalyzeRisk(categorized, rawText, th, a.opts.Currency),
		Gambling:    DetectGambling(categorized, a.classifier),
		Anomalies:   DetectAnomalies(categorized, th, a.opts.Currency),
	}

	span.SetAttributes(
		attribute.Int("score", r.Score),
		attribute.Int("anomalies", len(r.Anomalies)),
		attribute.Int("gambling_flags", len(r.Gambling)),
	)
	a.logger.Info("analysis complete",
		slog.Int("transactions", len(categorized)),
		slog.Int("score", r.Score),
		slog.Int("risk_indicators", len(r.Risk)),
		slog.Int("gambling_flags", len(r.Gambling)),
		slog.Int("anomalies", len(r.Anomalies)))

	return r, nil
}
