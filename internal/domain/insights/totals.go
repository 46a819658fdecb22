package insights

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// Totals sums records by sign. Outflow is negative and Balance = Inflow + Outflow.
type Totals struct {
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Balance decimal.Decimal `json:"balance"`
}

// ComputeTotals sums inflows and outflows.
func ComputeTotals(txs []transaction.Transaction) Totals {
	t := Totals{Inflow: decimal.Zero, Outflow: decimal.Zero}
	for _, tx := range txs {
		if tx.IsInflow() {
			t.Inflow = t.Inflow.Add(tx.Value)
		} else {
			t.Outflow = t.Outflow.Add(tx.Value)
		}
	}
	t.Balance = t.Inflow.Add(t.Outflow)
	return t
}

// Score maps the inflow/outflow ratio to 0..1000.
//
//	0                                   when both totals are zero
//	1000                                when there is no outflow
//	base + span * r/(r+1), r = in/(|out|+smoothing)   otherwise
//
// With the default base and span of 500 the score tends to 500 as r -> 0 and to 1000 as
// outflow -> 0. The result is truncated and clamped to [0, 1000].
func Score(txs []transaction.Transaction, th Thresholds) int {
	t := ComputeTotals(txs)
	in, out := t.Inflow, t.Outflow.Abs()

	if in.IsZero() && out.IsZero() {
		return 0
	}
	if out.IsZero() {
		return 1000
	}

	ratio := in.Div(out.Add(th.ScoreSmoothing))
	score := th.ScoreBase.Add(th.ScoreSpan.Mul(ratio.Div(ratio.Add(decimal.NewFromInt(1))))).IntPart()

	switch {
	case score < 0:
		return 0
	case score > 1000:
		return 1000
	default:
		return int(score)
	}
}
