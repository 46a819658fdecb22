package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	importservice "github.com/FACorreiaa/statement-analyzer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/search"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
	"github.com/FACorreiaa/statement-analyzer/pkg/storage"
)

// loadDocuments reads the named files in argument order, or the whole inbox when none are given.
func loadDocuments(ctx context.Context, inbox storage.Source, paths []string) ([]importservice.Document, error) {
	var docs []importservice.Document

	if len(paths) > 0 {
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", p, err)
			}
			docs = append(docs, importservice.NewDocument(filepath.Base(p), data))
		}
		return docs, nil
	}

	files, err := inbox.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		data, err := storage.ReadAll(ctx, inbox, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		docs = append(docs, importservice.NewDocument(f.Name, data))
	}
	return docs, nil
}

// exportRow is the CSV layout of one categorized transaction.
type exportRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Value       string `csv:"value"`
	Currency    string `csv:"currency"`
	Flow        string `csv:"flow"`
	Category    string `csv:"category"`
	Operation   string `csv:"operation"`
	DocType     string `csv:"doc_type"`
	Bank        string `csv:"bank"`
	Source      string `csv:"source"`
}

func toExportRows(txs []transaction.Transaction) []*exportRow {
	rows := make([]*exportRow, 0, len(txs))
	for _, tx := range txs {
		date := tx.Date.Format(time.DateOnly)
		if !tx.Date.Equal(tx.Day()) {
			date = tx.Date.Format(time.DateTime)
		}
		rows = append(rows, &exportRow{
			Date:        date,
			Description: tx.Description,
			Value:       tx.Value.StringFixed(2),
			Currency:    tx.Currency,
			Flow:        string(tx.Flow()),
			Category:    string(tx.Category),
			Operation:   tx.OperationTag,
			DocType:     string(tx.DocType),
			Bank:        string(tx.Bank),
			Source:      tx.Source,
		})
	}
	return rows
}

// writeCSV exports transactions with a header row.
func writeCSV(w io.Writer, txs []transaction.Transaction) error {
	if err := gocsv.Marshal(toExportRows(txs), w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// searchHit is the JSON shape of one search result.
type searchHit struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
}

// searchTransactions indexes txs in memory and runs a relevance query over them.
func searchTransactions(txs []transaction.Transaction, text string, limit int) ([]searchHit, error) {
	idx, err := search.NewIndex()
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	if err := idx.Add(txs); err != nil {
		return nil, err
	}
	var hits []search.Hit
	if usesQuerySyntax(text) {
		hits, err = idx.Advanced(text, limit)
	} else {
		hits, err = idx.Query(text, limit)
	}
	if err != nil {
		return nil, err
	}

	out := make([]searchHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, searchHit{
			Date:        h.Transaction.Date.Format(time.DateOnly),
			Description: h.Transaction.Description,
			Amount:      money.Format(h.Transaction.Value, h.Transaction.Currency),
			Category:    string(h.Transaction.Category),
			Score:       h.Score,
		})
	}
	return out, nil
}

// usesQuerySyntax reports whether text uses field scoping or required/excluded terms,
// e.g. "category:Leisure" or "+pix -estorno".
func usesQuerySyntax(text string) bool {
	if strings.Contains(text, ":") {
		return true
	}
	for _, term := range strings.Fields(text) {
		if len(term) > 1 && (term[0] == '+' || term[0] == '-') {
			return true
		}
	}
	return false
}

// output is the JSON document written per run.
type output struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Batch       importservice.BatchResult `json:"batch"`
	Report      *insights.Report          `json:"report"`
	Search      []searchHit               `json:"search,omitempty"`
}

func writeJSON(w io.Writer, out output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// createOutput opens path for writing; "-" or empty means stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
