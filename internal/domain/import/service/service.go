// Package service drives a batch of documents through extraction, parsing and
// consolidation, and hands the consolidated records to the analytics stage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/extractor"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/sniffer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

var (
	// ErrNoContentExtracted means a document yielded neither text nor tables, even after OCR.
	ErrNoContentExtracted = errors.New("no content extracted")
	// ErrNoTransactionsFound means a document was read but no record could be parsed from it.
	ErrNoTransactionsFound = errors.New("no transactions found")
)

// Document is one uploaded file.
type Document struct {
	ID     uuid.UUID
	Name   string
	Format transaction.SourceFormat // resolved from Name when empty
	Data   []byte
}

// NewDocument creates a document with a fresh ID and the format implied by its name.
func NewDocument(name string, data []byte) Document {
	return Document{
		ID:     uuid.New(),
		Name:   name,
		Format: transaction.FormatFromFilename(name),
		Data:   data,
	}
}

// DocumentResult is the outcome of processing one document. Err is nil when the
// document contributed transactions or payslip data.
type DocumentResult struct {
	ID           uuid.UUID                 `json:"id"`
	Name         string                    `json:"name"`
	Format       transaction.SourceFormat  `json:"format"`
	Bank         transaction.Bank          `json:"bank"`
	DocType      transaction.DocType       `json:"doc_type"`
	UsedOCR      bool                      `json:"used_ocr"`
	Stage        parser.Stage              `json:"stage,omitempty"`
	Parser       string                    `json:"parser,omitempty"`
	Parsed       int                       `json:"parsed"`
	Added        int                       `json:"added"`
	Dropped      []parser.ParseError       `json:"-"`
	Payslip      *normalizer.PayslipInfo   `json:"payslip,omitempty"`
	Cadastral    normalizer.CadastralInfo  `json:"-"`
	Err          error                     `json:"-"`
	Error        string                    `json:"error,omitempty"`
	Transactions []transaction.Transaction `json:"-"`
	Text         string                    `json:"-"`
}

// OK reports whether the document contributed to the batch.
func (r DocumentResult) OK() bool {
	return r.Err == nil
}

// BatchResult is the consolidated outcome of a batch.
type BatchResult struct {
	Documents    []DocumentResult          `json:"documents"`
	Transactions []transaction.Transaction `json:"-"`
	Duplicates   int                       `json:"duplicates_dropped"`
	Cadastral    normalizer.CadastralInfo  `json:"cadastral"`
	Payslip      normalizer.PayslipInfo    `json:"payslip"`
	RawText      string                    `json:"-"`
}

// Failed returns the documents that did not contribute.
func (b BatchResult) Failed() []DocumentResult {
	var out []DocumentResult
	for _, d := range b.Documents {
		if !d.OK() {
			out = append(out, d)
		}
	}
	return out
}

// Metrics receives batch counters. pkg/metrics.Pipeline implements it.
type Metrics interface {
	DocumentProcessed(bank, docType string)
	DocumentFailed(reason string)
	TransactionsParsed(stage string, n int)
	Duplicates(n int)
	BatchFinished(seconds float64)
}

type noopMetrics struct{}

func (noopMetrics) DocumentProcessed(string, string) {}
func (noopMetrics) DocumentFailed(string)            {}
func (noopMetrics) TransactionsParsed(string, int)   {}
func (noopMetrics) Duplicates(int)                   {}
func (noopMetrics) BatchFinished(float64)            {}

// Options tunes a Service.
type Options struct {
	Currency    string
	AssumedYear int // 0 = year of the processing run
	Workers     int // 1 = strictly sequential
}

// Service orchestrates document batches.
type Service struct {
	extractor *extractor.Extractor
	registry  *parser.Registry
	analyzer  *insights.Analyzer
	metrics   Metrics
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new batch service
func NewService(ext *extractor.Extractor, registry *parser.Registry, analyzer *insights.Analyzer, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Currency == "" {
		opts.Currency = "BRL"
	}
	return &Service{
		extractor: ext,
		registry:  registry,
		analyzer:  analyzer,
		metrics:   noopMetrics{},
		opts:      opts,
		logger:    logger,
	}
}

// WithMetrics sets the metrics sink (optional)
func (s *Service) WithMetrics(m Metrics) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// ProcessDocument extracts, detects and parses one document. It never returns an
// error: failures are recorded on the result so the batch can continue.
func (s *Service) ProcessDocument(ctx context.Context, doc Document) DocumentResult {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Format == "" {
		doc.Format = transaction.FormatFromFilename(doc.Name)
	}
	res := DocumentResult{ID: doc.ID, Name: doc.Name, Format: doc.Format}

	ctx, span := otel.Tracer("import").Start(ctx, "ProcessDocument", trace.WithAttributes(
		attribute.String("document", doc.Name),
		attribute.String("format", string(doc.Format)),
	))
	defer span.End()

	content := s.extractor.Extract(ctx, doc.Name, doc.Data, doc.Format)
	if content.IsEmpty() && doc.Format.NeedsOCR() {
		s.logger.Debug("empty content, trying ocr", slog.String("document", doc.Name))
		content.Text = s.extractor.PerformOCR(ctx, doc.Name, doc.Data, doc.Format)
		res.UsedOCR = true
	}
	if content.IsEmpty() {
		return s.fail(ctx, res, "no_content", ErrNoContentExtracted)
	}
	res.Text = content.Text

	res.DocType = sniffer.ResolveDocumentType(content.Text, content.Headers(), doc.Format, doc.Name)
	res.Bank = sniffer.ResolveBank(doc.Name, content.Text)
	res.Cadastral = normalizer.ExtractCadastral(content.Text)
	span.SetAttributes(
		attribute.String("bank", string(res.Bank)),
		attribute.String("doc_type", string(res.DocType)),
	)

	// payslips feed the profile only
	if res.DocType == transaction.DocPayslip {
		info := normalizer.ExtractPayslip(content.Text)
		res.Payslip = &info
		s.metrics.DocumentProcessed(string(res.Bank), string(res.DocType))
		s.logger.Info("payslip processed", slog.String("document", doc.Name))
		return res
	}

	parsed := s.registry.Extract(parser.Input{
		Text:        content.Text,
		Tables:      content.Tables,
		Bank:        res.Bank,
		DocType:     res.DocType,
		Format:      doc.Format,
		AssumedYear: s.opts.AssumedYear,
		Currency:    s.opts.Currency,
		Source:      doc.Name,
	})
	res.Stage = parsed.Stage
	res.Parser = parsed.Parser
	res.Dropped = parsed.Errors
	res.Parsed = len(parsed.Transactions)
	res.Transactions = parsed.Transactions

	for _, pe := range parsed.Errors {
		s.logger.Debug("line dropped",
			slog.String("document", doc.Name),
			slog.Int("line", pe.Line),
			slog.String("field", pe.Field),
			slog.String("message", pe.Message))
	}

	if len(parsed.Transactions) == 0 {
		return s.fail(ctx, res, "no_transactions", ErrNoTransactionsFound)
	}

	s.metrics.TransactionsParsed(string(parsed.Stage), len(parsed.Transactions))
	s.metrics.DocumentProcessed(string(res.Bank), string(res.DocType))
	span.SetAttributes(attribute.Int("transactions", len(parsed.Transactions)))
	return res
}

func (s *Service) fail(ctx context.Context, res DocumentResult, reason string, err error) DocumentResult {
	res.Err = fmt.Errorf("failed to process %s: %w", res.Name, err)
	res.Error = res.Err.Error()

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	s.metrics.DocumentFailed(reason)
	s.logger.Warn("document skipped",
		slog.String("document", res.Name),
		slog.String("reason", reason),
		slog.Any("error", err))
	return res
}

// RunBatch processes every document and consolidates the records in upload order.
// With more than one worker documents are parsed concurrently, but merging stays
// sequential so the outcome matches a sequential run.
func (s *Service) RunBatch(ctx context.Context, docs []Document) BatchResult {
	ctx, span := otel.Tracer("import").Start(ctx, "RunBatch")
	defer span.End()
	start := time.Now()

	results := s.processAll(ctx, docs)

	set := transaction.NewSet()
	batch := BatchResult{Documents: results}
	var raw strings.Builder
	for i := range results {
		r := &results[i]
		if r.Text != "" {
			raw.WriteString(r.Text)
			raw.WriteByte('\n')
		}
		batch.Cadastral = batch.Cadastral.Merge(r.Cadastral)
		if r.Payslip != nil {
			batch.Payslip = mergePayslip(batch.Payslip, *r.Payslip)
		}
		if len(r.Transactions) == 0 {
			continue
		}
		before := set.Len()
		batch.Duplicates += set.AddAll(r.Transactions)
		r.Added = set.Len() - before
	}
	batch.Transactions = set.Items()
	batch.RawText = raw.String()

	s.metrics.Duplicates(batch.Duplicates)
	s.metrics.BatchFinished(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("documents", len(docs)),
		attribute.Int("transactions", len(batch.Transactions)),
		attribute.Int("duplicates", batch.Duplicates),
	)
	s.logger.Info("batch processed",
		slog.Int("documents", len(docs)),
		slog.Int("failed", len(batch.Failed())),
		slog.Int("transactions", len(batch.Transactions)),
		slog.Int("duplicates_dropped", batch.Duplicates),
		slog.Duration("elapsed", time.Since(start)))
	if income := batch.Payslip.DeclaredIncome(); income != nil {
		s.logger.Debug("payslip income declared", slog.String("amount", income.StringFixed(2)))
	}

	return batch
}

func (s *Service) processAll(ctx context.Context, docs []Document) []DocumentResult {
	results := make([]DocumentResult, len(docs))

	if s.opts.Workers == 1 || len(docs) < 2 {
		for i, doc := range docs {
			results[i] = s.ProcessDocument(ctx, doc)
		}
		return results
	}

	// each worker owns its result slot, so no locking is needed
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = s.ProcessDocument(gctx, doc)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Analyze runs the analytics stage over a consolidated batch. An empty batch yields
// an empty report and insights.ErrNothingToAnalyze.
func (s *Service) Analyze(ctx context.Context, batch BatchResult) (*insights.Report, error) {
	report, err := s.analyzer.Analyze(ctx, batch.Transactions, batch.RawText)
	if err != nil {
		if errors.Is(err, insights.ErrNothingToAnalyze) {
			return report, err
		}
		return nil, fmt.Errorf("failed to analyze batch: %w", err)
	}
	return report, nil
}

// Run processes and analyzes a batch in one call.
func (s *Service) Run(ctx context.Context, docs []Document) (BatchResult, *insights.Report, error) {
	batch := s.RunBatch(ctx, docs)
	report, err := s.Analyze(ctx, batch)
	return batch, report, err
}

func mergePayslip(a, b normalizer.PayslipInfo) normalizer.PayslipInfo {
	if b.Employer != nil {
		a.Employer = b.Employer
	}
	if b.Role != nil {
		a.Role = b.Role
	}
	if b.Gross != nil {
		a.Gross = b.Gross
	}
	if b.Net != nil {
		a.Net = b.Net
	}
	return a
}
