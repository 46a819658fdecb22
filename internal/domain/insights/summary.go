package insights

import (
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

var hundred = decimal.NewFromInt(100)

// share returns part/total as a percentage, zero when total is zero.
func share(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Abs().Div(total.Abs()).Mul(hundred).Round(2)
}

// CategoryRow is one category line of the statement summary.
type CategoryRow struct {
	Category     transaction.Category `json:"category"`
	Inflow       decimal.Decimal      `json:"inflow"`
	Outflow      decimal.Decimal      `json:"outflow"`
	InflowShare  decimal.Decimal      `json:"inflow_share"`  // % of total inflow
	OutflowShare decimal.Decimal      `json:"outflow_share"` // % of total outflow
}

// StatementSummary breaks statement movements down by category.
type StatementSummary struct {
	Rows         []CategoryRow   `json:"rows"`
	TotalInflow  decimal.Decimal `json:"total_inflow"`
	TotalOutflow decimal.Decimal `json:"total_outflow"`
}

// SummarizeStatement groups statement inflows and outflows by category, sorted by name.
func SummarizeStatement(p categorization.Partitioned) StatementSummary {
	rows := make(map[transaction.Category]*CategoryRow)
	row := func(c transaction.Category) *CategoryRow {
		r, ok := rows[c]
		if !ok {
			r = &CategoryRow{Category: c, Inflow: decimal.Zero, Outflow: decimal.Zero}
			rows[c] = r
		}
		return r
	}

	s := StatementSummary{TotalInflow: decimal.Zero, TotalOutflow: decimal.Zero}
	for _, tx := range p.StatementInflows {
		r := row(tx.Category)
		r.Inflow = r.Inflow.Add(tx.Value)
		s.TotalInflow = s.TotalInflow.Add(tx.Value)
	}
	for _, tx := range p.StatementOutflows {
		r := row(tx.Category)
		r.Outflow = r.Outflow.Add(tx.Value)
		s.TotalOutflow = s.TotalOutflow.Add(tx.Value)
	}

	for _, r := range rows {
		r.InflowShare = share(r.Inflow, s.TotalInflow)
		r.OutflowShare = share(r.Outflow, s.TotalOutflow)
		s.Rows = append(s.Rows, *r)
	}
	sort.Slice(s.Rows, func(i, j int) bool { return s.Rows[i].Category < s.Rows[j].Category })
	return s
}

// CategoryShare is a category total with its percentage of the whole.
type CategoryShare struct {
	Category transaction.Category `json:"category"`
	Total    decimal.Decimal      `json:"total"`
	Share    decimal.Decimal      `json:"share"`
}

// BillSummary holds the headline figures printed on a card bill and the card totals.
// Figures missing from the text are nil.
type BillSummary struct {
	BillTotal      *decimal.Decimal `json:"bill_total,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	TotalLimit     *decimal.Decimal `json:"total_limit,omitempty"`
	AvailableLimit *decimal.Decimal `json:"available_limit,omitempty"`
	Installment    *decimal.Decimal `json:"installment,omitempty"`

	Purchases  decimal.Decimal `json:"purchases"`
	Credits    decimal.Decimal `json:"credits"`
	ByCategory []CategoryShare `json:"by_category"`
}

var (
	billTotalPattern   = regexp.MustCompile(`(?i)Valor da fatura:\s*R\$?\s*([\d\.,]+)`)
	dueDatePattern     = regexp.MustCompile(`(?i)Vencimento:\s*(\d{2}/\d{2}/\d{4}|\d{1,2}\s+de\s+\p{L}+)`)
	availablePattern   = regexp.MustCompile(`(?i)Disponível\s*R\$?\s*([\d\.,]+)`)
	installmentPattern = regexp.MustCompile(`(?is)(?:Parcelamento em \dx|Entrada \+ \dx de R\$?\s*[\d\.,]+).*?(?:R\$?\s*([\d\.,]+))`)
)

func amountFrom(re *regexp.Regexp, text string) *decimal.Decimal {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := normalizer.ParseAmount(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// SummarizeBill reads the bill headline from rawText and totals the card records.
func SummarizeBill(p categorization.Partitioned, rawText string, assumedYear int) BillSummary {
	s := BillSummary{
		BillTotal:      amountFrom(billTotalPattern, rawText),
		TotalLimit:     amountFrom(cardLimitPattern, rawText),
		AvailableLimit: amountFrom(availablePattern, rawText),
		Installment:    amountFrom(installmentPattern, rawText),
		Purchases:      decimal.Zero,
		Credits:        decimal.Zero,
	}
	if m := dueDatePattern.FindStringSubmatch(rawText); m != nil {
		if d, err := normalizer.ParseDate(m[1], assumedYear); err == nil {
			s.DueDate = &d
		}
	}

	byCategory := make(map[transaction.Category]decimal.Decimal)
	for _, tx := range p.CardPurchases {
		s.Purchases = s.Purchases.Add(tx.Value)
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Value)
	}
	for _, tx := range p.CardCredits {
		s.Credits = s.Credits.Add(tx.Value)
	}

	for c, total := range byCategory {
		s.ByCategory = append(s.ByCategory, CategoryShare{Category: c, Total: total, Share: share(total, s.Purchases)})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool { return s.ByCategory[i].Category < s.ByCategory[j].Category })
	return s
}

// GeneralSummary consolidates statement and card figures. Ratios are percentages of
// statement inflow and are nil when there is no inflow.
type GeneralSummary struct {
	StatementInflow  decimal.Decimal `json:"statement_inflow"`
	StatementOutflow decimal.Decimal `json:"statement_outflow"`
	StatementBalance decimal.Decimal `json:"statement_balance"`
	CardPurchases    decimal.Decimal `json:"card_purchases"`
	CardCredits      decimal.Decimal `json:"card_credits"`
	TotalOutflow     decimal.Decimal `json:"total_outflow"` // statement outflow + card purchases
	NetBalance       decimal.Decimal `json:"net_balance"`

	StatementOutflowPct *decimal.Decimal `json:"statement_outflow_pct,omitempty"`
	CardPurchasesPct    *decimal.Decimal `json:"card_purchases_pct,omitempty"`
	TotalOutflowPct     *decimal.Decimal `json:"total_outflow_pct,omitempty"`

	PixReceived decimal.Decimal `json:"pix_received"`
	PixSent     decimal.Decimal `json:"pix_sent"`
	PixNet      decimal.Decimal `json:"pix_net"`
}

// SummarizeGeneral builds the consolidated view over the four partitions.
func SummarizeGeneral(p categorization.Partitioned) GeneralSummary {
	in := ComputeTotals(p.StatementInflows).Inflow
	out := ComputeTotals(p.StatementOutflows).Outflow
	purchases := ComputeTotals(p.CardPurchases).Outflow
	credits := ComputeTotals(p.CardCredits).Inflow

	g := GeneralSummary{
		StatementInflow:  in,
		StatementOutflow: out,
		StatementBalance: in.Add(out),
		CardPurchases:    purchases,
		CardCredits:      credits,
		TotalOutflow:     out.Add(purchases),
		PixReceived:      decimal.Zero,
		PixSent:          decimal.Zero,
	}
	g.NetBalance = in.Add(g.TotalOutflow)

	if in.IsPositive() {
		pct := func(v decimal.Decimal) *decimal.Decimal {
			r := share(v, in)
			return &r
		}
		g.StatementOutflowPct = pct(out)
		g.CardPurchasesPct = pct(purchases)
		g.TotalOutflowPct = pct(g.TotalOutflow)
	}

	for _, tx := range p.StatementInflows {
		if tx.OperationTag == normalizer.OpPIX {
			g.PixReceived = g.PixReceived.Add(tx.Value)
		}
	}
	for _, tx := range p.StatementOutflows {
		if tx.OperationTag == normalizer.OpPIX {
			g.PixSent = g.PixSent.Add(tx.Value)
		}
	}
	g.PixNet = g.PixReceived.Add(g.PixSent)
	return g
}
