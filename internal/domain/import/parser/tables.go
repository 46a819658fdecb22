package parser

import (
	"io"
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/extractor"
	"github.com/gocarina/gocsv"
)

// tableReader feeds an extracted table to gocsv. Rows are padded to the header width.
type tableReader struct {
	rows [][]string
	pos  int
}

func newTableReader(t extractor.Table) *tableReader {
	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = strings.TrimSpace(h)
	}
	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, header)
	for _, r := range t.Rows {
		row := make([]string, len(header))
		copy(row, r)
		rows = append(rows, row)
	}
	return &tableReader{rows: rows}
}

func (r *tableReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *tableReader) ReadAll() ([][]string, error) {
	rest := r.rows[r.pos:]
	r.pos = len(r.rows)
	return rest, nil
}

// decodeRows unmarshals every table carrying the columns of T. Tables that cannot be
// decoded are skipped.
func decodeRows[T any](tables []extractor.Table) [][]T {
	var out [][]T
	for _, t := range tables {
		if len(t.Header) == 0 {
			continue
		}
		var rows []T
		if err := gocsv.UnmarshalCSV(newTableReader(t), &rows); err != nil {
			continue
		}
		out = append(out, rows)
	}
	return out
}

// Column layouts of the bank exports.

type nubankStatementRow struct {
	Date        string `csv:"Data"`
	Description string `csv:"Descrição"`
	Value       string `csv:"Valor"`
}

type nubankCardBillRow struct {
	Date     string `csv:"Data da transação"`
	Merchant string `csv:"Estabelecimento"`
	Value    string `csv:"Valor"`
}

type interStatementRow struct {
	Date    string `csv:"Data"`
	History string `csv:"Histórico"`
	Value   string `csv:"Valor"`
}

type interCardBillRow struct {
	Date        string `csv:"Data"`
	Description string `csv:"Descrição"`
	Value       string `csv:"Valor"`
}

type caixaStatementRow struct {
	Date    string `csv:"Data Mov."`
	History string `csv:"Histórico"`
	Debit   string `csv:"Débito"`
	Credit  string `csv:"Crédito"`
	Value   string `csv:"Valor"`
}

type picPayCardBillRow struct {
	Date        string `csv:"Data"`
	Description string `csv:"Descrição"`
	Value       string `csv:"Valor"`
	Kind        string `csv:"Tipo"`
}

// line numbers of table rows count the header as line 1.
func rowLine(i int) int { return i + 2 }

func parseNubankStatementTable(b *Builder, in Input) {
	for _, rows := range decodeRows[nubankStatementRow](in.Tables) {
		for i, row := range rows {
			if strings.TrimSpace(row.Date) == "" {
				continue
			}
			v, ok := b.Amount(rowLine(i), row.Value)
			if !ok {
				continue
			}
			b.Add(rowLine(i), row.Date, row.Description, v, "")
		}
	}
}

func parseNubankCardBillTable(b *Builder, in Input) {
	for _, rows := range decodeRows[nubankCardBillRow](in.Tables) {
		for i, row := range rows {
			if strings.TrimSpace(row.Date) == "" {
				continue
			}
			v, ok := b.Amount(rowLine(i), row.Value)
			if !ok {
				continue
			}
			b.Add(rowLine(i), row.Date, row.Merchant, asOutflow(v), "")
		}
	}
}

func parseInterStatementTable(b *Builder, in Input) {
	for _, rows := range decodeRows[interStatementRow](in.Tables) {
		for i, row := range rows {
			if strings.TrimSpace(row.Date) == "" {
				continue
			}
			v, ok := b.Amount(rowLine(i), row.Value)
			if !ok {
				continue
			}
			b.Add(rowLine(i), row.Date, row.History, v, "")
		}
	}
}

func parseInterCardBillTable(b *Builder, in Input) {
	for _, rows := range decodeRows[interCardBillRow](in.Tables) {
		for i, row := range rows {
			if strings.TrimSpace(row.Date) == "" {
				continue
			}
			v, ok := b.Amount(rowLine(i), row.Value)
			if !ok {
				continue
			}
			b.Add(rowLine(i), row.Date, row.Description, asOutflow(v), "")
		}
	}
}

// parseCaixaStatementTable prefers the debit/credit pair and falls back to a single
// Valor column.
func parseCaixaStatementTable(b *Builder, in Input) {
	for _, rows := range decodeRows[caixaStatementRow](in.Tables) {
		for i, row := range rows {
			if strings.TrimSpace(row.Date) == "" {
				continue
			}
			v, ok := debitCredit(row.Debit, row.Credit)
			if !ok {
				if v, ok = b.Amount(rowLine(i), row.Value); !ok {
					continue
				}
			}
			b.Add(rowLine(i), row.Date, row.History, v, "")
		}
	}
}

func parsePicPayCardBillTable(b *Builder, in Input) {
	for _, rows := range decodeRows[picPayCardBillRow](in.Tables) {
		for i, row := range rows {
			if strings.TrimSpace(row.Date) == "" {
				continue
			}
			v, ok := b.Amount(rowLine(i), row.Value)
			if !ok {
				continue
			}
			kind := strings.ToLower(strings.TrimSpace(row.Kind))
			switch {
			case strings.Contains(kind, "recebido") || strings.Contains(kind, "entrada"):
				v = asInflow(v)
			case strings.Contains(kind, "pago") || strings.Contains(kind, "saida"):
				v = asOutflow(v)
			}
			b.Add(rowLine(i), row.Date, row.Description, v, "")
		}
	}
}
