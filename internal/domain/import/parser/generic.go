package parser

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
)

// ColumnAliases lists, per canonical field, the header names that map to it.
// Aliases are compared against normalized headers in order.
type ColumnAliases struct {
	Date        []string
	Description []string
	Amount      []string
	Debit       []string
	Credit      []string
}

// DefaultColumnAliases returns the aliases seen in Brazilian bank exports.
func DefaultColumnAliases() ColumnAliases {
	return ColumnAliases{
		Date:        []string{"data", "date", "data mov", "data da transacao", "dt transacao"},
		Description: []string{"descricao", "descrição", "historico", "histórico", "estabelecimento", "detalhes", "item"},
		Amount:      []string{"valor", "value", "montante", "quantia"},
		Debit:       []string{"débito", "debito", "saída", "saida"},
		Credit:      []string{"crédito", "credito", "entrada"},
	}
}

// ColumnMap holds the resolved column indices, -1 when absent.
type ColumnMap struct {
	Date        int
	Description int
	Amount      int
	Debit       int
	Credit      int
}

// GenericTableParser maps arbitrary headers to canonical fields.
type GenericTableParser struct {
	aliases ColumnAliases
	// maximum edit distance accepted between a header and an alias of at least
	// fuzzyMinLength runes
	maxDistance    int
	fuzzyMinLength int
}

// NewGenericTableParser creates a parser for the given alias table.
func NewGenericTableParser(aliases ColumnAliases) *GenericTableParser {
	return &GenericTableParser{aliases: aliases, maxDistance: 1, fuzzyMinLength: 6}
}

// normalizeHeader lowercases, drops dots, turns underscores into spaces and trims.
func normalizeHeader(h string) string {
	h = strings.ToLower(h)
	h = strings.ReplaceAll(h, ".", "")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.TrimSpace(h)
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// MapColumns resolves the canonical columns of a header row. Exact alias matches win,
// then accent-insensitive ones, then near misses such as OCR typos.
func (p *GenericTableParser) MapColumns(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	folded := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
		folded[i] = foldAccents(normalized[i])
	}

	used := make(map[int]bool)
	find := func(aliases []string) int {
		for _, alias := range aliases {
			for i, h := range normalized {
				if !used[i] && h == alias {
					used[i] = true
					return i
				}
			}
		}
		for _, alias := range aliases {
			fa := foldAccents(alias)
			for i, h := range folded {
				if !used[i] && h == fa {
					used[i] = true
					return i
				}
			}
		}
		for _, alias := range aliases {
			fa := foldAccents(alias)
			if len([]rune(fa)) < p.fuzzyMinLength {
				continue
			}
			for i, h := range folded {
				if !used[i] && fuzzy.LevenshteinDistance(h, fa) <= p.maxDistance {
					used[i] = true
					return i
				}
			}
		}
		return -1
	}

	return ColumnMap{
		Date:        find(p.aliases.Date),
		Description: find(p.aliases.Description),
		Amount:      find(p.aliases.Amount),
		Debit:       find(p.aliases.Debit),
		Credit:      find(p.aliases.Credit),
	}
}

// Parse reads every table. Rows without a date are skipped. A missing or zero amount
// falls back to the debit column (outflow) and then the credit column (inflow).
func (p *GenericTableParser) Parse(b *Builder, in Input) {
	for _, table := range in.Tables {
		cm := p.MapColumns(table.Header)
		if cm.Date < 0 {
			continue
		}

		for i, row := range table.Rows {
			line := rowLine(i)
			cell := func(idx int) string {
				if idx < 0 || idx >= len(row) {
					return ""
				}
				return strings.TrimSpace(row[idx])
			}

			dateRaw := cell(cm.Date)
			if dateRaw == "" {
				continue
			}

			v, err := normalizer.ParseAmount(cell(cm.Amount))
			if err != nil || v.IsZero() {
				var ok bool
				if v, ok = debitCredit(cell(cm.Debit), cell(cm.Credit)); !ok {
					b.Drop(line, "amount", "no usable amount", strings.Join(row, " | "))
					continue
				}
			}

			b.Add(line, dateRaw, cell(cm.Description), v, "")
		}
	}
}

// debitCredit combines a debit/credit column pair: a non-zero debit is an outflow,
// otherwise a non-zero credit is an inflow.
func debitCredit(debitRaw, creditRaw string) (decimal.Decimal, bool) {
	if d, err := normalizer.ParseAmount(debitRaw); err == nil && !d.IsZero() {
		return asOutflow(d), true
	}
	if c, err := normalizer.ParseAmount(creditRaw); err == nil && !c.IsZero() {
		return asInflow(c), true
	}
	return decimal.Zero, false
}
