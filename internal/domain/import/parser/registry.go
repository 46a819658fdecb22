package parser

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// Key identifies the documents a parser understands.
type Key struct {
	Bank    transaction.Bank
	DocType transaction.DocType
	Format  transaction.SourceFormat
}

func (k Key) String() string {
	return string(k.Bank) + "/" + string(k.DocType) + "/" + string(k.Format)
}

// Func extracts records from one document. Implementations must be pure.
type Func func(b *Builder, in Input)

// Parser is a named extraction routine.
type Parser struct {
	Name  string
	Parse Func
}

// Registry maps (bank, document type, format) to specific parsers and owns the
// fallback chain used when none applies.
type Registry struct {
	mu       sync.RWMutex
	specific map[Key]Parser
	generic  *GenericTableParser
	logger   *slog.Logger
	tagger   *normalizer.OperationTagger
}

// NewRegistry creates a registry with no specific parsers.
func NewRegistry(logger *slog.Logger, generic *GenericTableParser) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if generic == nil {
		generic = NewGenericTableParser(DefaultColumnAliases())
	}
	return &Registry{
		specific: make(map[Key]Parser),
		generic:  generic,
		logger:   logger,
		tagger:   normalizer.NewOperationTagger(),
	}
}

// NewDefaultRegistry creates a registry with every built-in bank parser.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger, nil)
	registerBuiltins(r)
	return r
}

// Register installs a parser for each given source format.
func (r *Registry) Register(bank transaction.Bank, docType transaction.DocType, p Parser, formats ...transaction.SourceFormat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range formats {
		r.specific[Key{Bank: bank, DocType: docType, Format: f}] = p
	}
}

// Lookup returns the specific parser registered for key.
func (r *Registry) Lookup(key Key) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.specific[key]
	return p, ok
}

// Keys returns every registered key.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.specific))
	for k := range r.specific {
		keys = append(keys, k)
	}
	return keys
}

// Extract runs the dispatch chain and returns the records of the first stage that
// produced any.
func (r *Registry) Extract(in Input) Result {
	var dropped []ParseError

	if p, ok := r.Lookup(in.Key()); ok {
		b := newBuilder(in, r.tagger)
		p.Parse(b, in)
		res := b.result(StageSpecific, p.Name)
		if len(res.Transactions) > 0 {
			return r.done(in, res)
		}
		dropped = append(dropped, res.Errors...)
	} else if len(in.Tables) > 0 {
		b := newBuilder(in, r.tagger)
		r.generic.Parse(b, in)
		res := b.result(StageGeneric, "generic-table")
		if len(res.Transactions) > 0 {
			return r.done(in, res)
		}
		dropped = append(dropped, res.Errors...)
	}

	if strings.TrimSpace(in.Text) != "" {
		b := newBuilder(in, r.tagger)
		parseFallback(b, in)
		res := b.result(StageFallback, "regex-fallback")
		res.Errors = append(dropped, res.Errors...)
		return r.done(in, res)
	}

	return Result{Errors: dropped, Stage: StageNone}
}

func (r *Registry) done(in Input, res Result) Result {
	r.logger.Debug("transactions extracted",
		slog.String("document", in.Source),
		slog.String("key", in.Key().String()),
		slog.String("parser", res.Parser),
		slog.Int("transactions", len(res.Transactions)),
		slog.Int("dropped", len(res.Errors)))
	return res
}

func registerBuiltins(r *Registry) {
	textFormats := []transaction.SourceFormat{transaction.FormatPDF, transaction.FormatImage}
	tableFormats := []transaction.SourceFormat{transaction.FormatCSV, transaction.FormatXLSX}

	r.Register(transaction.BankNubank, transaction.DocStatement, Parser{Name: "nubank-statement-text", Parse: parseNubankStatementText}, textFormats...)
	r.Register(transaction.BankC6, transaction.DocCardBill, Parser{Name: "c6-card-bill-text", Parse: parseC6CardBillText}, textFormats...)

	r.Register(transaction.BankNubank, transaction.DocStatement, Parser{Name: "nubank-statement-table", Parse: parseNubankStatementTable}, tableFormats...)
	r.Register(transaction.BankNubank, transaction.DocCardBill, Parser{Name: "nubank-card-bill-table", Parse: parseNubankCardBillTable}, tableFormats...)
	r.Register(transaction.BankInter, transaction.DocStatement, Parser{Name: "inter-statement-table", Parse: parseInterStatementTable}, tableFormats...)
	r.Register(transaction.BankInter, transaction.DocCardBill, Parser{Name: "inter-card-bill-table", Parse: parseInterCardBillTable}, tableFormats...)
	r.Register(transaction.BankCaixa, transaction.DocStatement, Parser{Name: "caixa-statement-table", Parse: parseCaixaStatementTable}, tableFormats...)
	r.Register(transaction.BankPicPay, transaction.DocCardBill, Parser{Name: "picpay-card-bill-table", Parse: parsePicPayCardBillTable}, tableFormats...)
}
