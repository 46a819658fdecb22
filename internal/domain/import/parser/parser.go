// Package parser converts extracted document content into canonical transactions.
//
// Parsers are plain functions registered in a Registry under the (bank, document type,
// source format) triple they understand. Dispatch walks a fixed chain: the parser
// registered for the exact triple, then the generic column mapper for any tables, then
// a regex scan over the raw text when nothing structured produced a record.
package parser

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/extractor"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Input is everything a parser may look at.
type Input struct {
	Text        string
	Tables      []extractor.Table
	Bank        transaction.Bank
	DocType     transaction.DocType
	Format      transaction.SourceFormat
	AssumedYear int    // 0 = current year
	Currency    string // defaults to BRL
	Source      string // document name, copied onto each record
}

// Key returns the registry key of the input.
func (in Input) Key() Key {
	return Key{Bank: in.Bank, DocType: in.DocType, Format: in.Format}
}

// Stage names the dispatch step that produced a result.
type Stage string

const (
	StageSpecific Stage = "specific"
	StageGeneric  Stage = "generic"
	StageFallback Stage = "fallback"
	StageNone     Stage = "none"
)

// ParseError describes a line or row that was dropped.
type ParseError struct {
	Line    int
	Field   string
	Message string
	RawData string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, field %s: %s", e.Line, e.Field, e.Message)
}

// Result contains the records of one dispatch and the lines that were dropped on the way.
type Result struct {
	Transactions []transaction.Transaction
	Errors       []ParseError
	Stage        Stage
	Parser       string
}

// Builder assembles records for one parser run, turning normalizer failures into
// dropped lines.
type Builder struct {
	in     Input
	tagger *normalizer.OperationTagger
	txs    []transaction.Transaction
	errs   []ParseError
}

func newBuilder(in Input, tagger *normalizer.OperationTagger) *Builder {
	if in.Currency == "" {
		in.Currency = "BRL"
	}
	return &Builder{in: in, tagger: tagger}
}

// Amount parses an amount fragment, recording the line as dropped on failure.
func (b *Builder) Amount(line int, raw string) (decimal.Decimal, bool) {
	v, err := normalizer.ParseAmount(raw)
	if err != nil {
		b.errs = append(b.errs, ParseError{Line: line, Field: "amount", Message: err.Error(), RawData: raw})
		return decimal.Zero, false
	}
	return v, true
}

// Add normalizes the date and appends the record. An empty opTag is inferred from
// the description.
func (b *Builder) Add(line int, dateRaw, description string, value decimal.Decimal, opTag string) {
	date, err := normalizer.ParseDate(dateRaw, b.in.AssumedYear)
	if err != nil {
		b.errs = append(b.errs, ParseError{Line: line, Field: "date", Message: err.Error(), RawData: dateRaw})
		return
	}

	description = strings.TrimSpace(description)
	if opTag == "" {
		opTag = b.tagger.Tag(description)
	}

	b.txs = append(b.txs, transaction.Transaction{
		Date:         date,
		Description:  description,
		Value:        value,
		Currency:     b.in.Currency,
		DocType:      b.in.DocType,
		OperationTag: opTag,
		Bank:         b.in.Bank,
		Source:       b.in.Source,
	})
}

// Drop records a line that could not be turned into a record.
func (b *Builder) Drop(line int, field, message, raw string) {
	b.errs = append(b.errs, ParseError{Line: line, Field: field, Message: message, RawData: raw})
}

func (b *Builder) result(stage Stage, name string) Result {
	return Result{Transactions: b.txs, Errors: b.errs, Stage: stage, Parser: name}
}

// lines splits text into trimmed, non-empty lines, keeping 1-based line numbers.
func lines(text string) []numberedLine {
	raw := strings.Split(text, "\n")
	out := make([]numberedLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, numberedLine{n: i + 1, text: l})
	}
	return out
}

type numberedLine struct {
	n    int
	text string
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
