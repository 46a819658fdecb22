package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// MonthSummary is one row of the monthly rollup.
type MonthSummary struct {
	Month   string          `json:"month"` // YYYY-MM
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyRollup groups records by calendar month in chronological order. Records
// without a date are left out.
func MonthlyRollup(txs []transaction.Transaction) []MonthSummary {
	byMonth := make(map[string]*MonthSummary)
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		key := tx.Month()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthSummary{Month: key, Inflow: decimal.Zero, Outflow: decimal.Zero}
			byMonth[key] = m
		}
		if tx.IsInflow() {
			m.Inflow = m.Inflow.Add(tx.Value)
		} else {
			m.Outflow = m.Outflow.Add(tx.Value)
		}
	}

	out := make([]MonthSummary, 0, len(byMonth))
	for _, m := range byMonth {
		m.Balance = m.Inflow.Add(m.Outflow)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TopN returns up to limit records of the given direction, largest absolute value first.
// Ties keep their input order.
func TopN(txs []transaction.Transaction, flow transaction.Flow, limit int) []transaction.Transaction {
	var filtered []transaction.Transaction
	for _, tx := range txs {
		if tx.Flow() == flow {
			filtered = append(filtered, tx)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Value.Abs().GreaterThan(filtered[j].Value.Abs())
	})
	if limit >= 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}
