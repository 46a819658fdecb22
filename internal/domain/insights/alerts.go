package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// GamblingMatcher decides whether a description refers to a gambling operator.
type GamblingMatcher interface {
	IsGambling(description string) bool
}

// GamblingKind tells money sent to a betting site from money coming back.
type GamblingKind string

const (
	GamblingBet    GamblingKind = "Outflow - Online Bet"
	GamblingPayout GamblingKind = "Inflow - Bet Return/Winnings"
)

// GamblingFlag is a record attributed to a gambling operator.
type GamblingFlag struct {
	Transaction transaction.Transaction `json:"transaction"`
	Kind        GamblingKind            `json:"kind"`
	Alert       string                  `json:"alert"`
}

// DetectGambling flags records whose description names a gambling operator.
func DetectGambling(txs []transaction.Transaction, m GamblingMatcher) []GamblingFlag {
	var flags []GamblingFlag
	for _, tx := range txs {
		if tx.Description == "" || !m.IsGambling(tx.Description) {
			continue
		}
		flag := GamblingFlag{Transaction: tx, Kind: GamblingPayout, Alert: "Inflow received from a betting site."}
		if !tx.IsInflow() {
			flag.Kind = GamblingBet
			flag.Alert = "Outflow sent to a betting site."
		}
		flags = append(flags, flag)
	}
	return flags
}

// AnomalyKind names the heuristic that fired.
type AnomalyKind string

const (
	AnomalyPassThrough AnomalyKind = "pass_through"
	AnomalyStructuring AnomalyKind = "structuring"
	AnomalyOffHours    AnomalyKind = "off_hours"
)

// Anomaly is a suspicious movement. Day-level heuristics leave Transaction nil.
type Anomaly struct {
	Kind        AnomalyKind              `json:"kind"`
	Date        time.Time                `json:"date"`
	Description string                   `json:"description"`
	Amount      decimal.Decimal          `json:"amount"`
	Alert       string                   `json:"alert"`
	Transaction *transaction.Transaction `json:"transaction,omitempty"`
}

type dayBucket struct {
	day      time.Time
	inflow   decimal.Decimal
	outflows []transaction.Transaction
}

// DetectAnomalies runs the pass-through and structuring heuristics over the statement
// records of each calendar day, then the off-hours check over every record. The
// heuristics are independent and one day may fire several of them. Records without a
// time of day never trip the off-hours check, and since parsers emit date-only values at
// midnight a genuine 00:00:00 timestamp is read as date-only too.
func DetectAnomalies(txs []transaction.Transaction, th Thresholds, currency string) []Anomaly {
	var anomalies []Anomaly

	days := make(map[time.Time]*dayBucket)
	for _, tx := range txs {
		if tx.DocType != transaction.DocStatement || tx.Date.IsZero() {
			continue
		}
		d := tx.Day()
		b, ok := days[d]
		if !ok {
			b = &dayBucket{day: d, inflow: decimal.Zero}
			days[d] = b
		}
		if tx.IsInflow() {
			b.inflow = b.inflow.Add(tx.Value)
		} else {
			b.outflows = append(b.outflows, tx)
		}
	}

	ordered := make([]*dayBucket, 0, len(days))
	for _, b := range days {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].day.Before(ordered[j].day) })

	for _, b := range ordered {
		if a, ok := passThrough(b, th, currency); ok {
			anomalies = append(anomalies, a)
		}
	}
	for _, b := range ordered {
		if a, ok := structuring(b, th, currency); ok {
			anomalies = append(anomalies, a)
		}
	}

	for i := range txs {
		tx := txs[i]
		if !hasClock(tx.Date) || tx.Date.Hour() > th.OffHoursLastHour {
			continue
		}
		if !tx.Value.Abs().GreaterThan(th.OffHoursMinValue) {
			continue
		}
		anomalies = append(anomalies, Anomaly{
			Kind:        AnomalyOffHours,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Value.Abs(),
			Alert:       "Sizeable transaction at an unusual hour. Check its legitimacy.",
			Transaction: &tx,
		})
	}

	return anomalies
}

// hasClock reports whether t carries a time of day. Parsers emit date-only values at
// exactly midnight.
func hasClock(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}

func passThrough(b *dayBucket, th Thresholds, currency string) (Anomaly, bool) {
	out := decimal.Zero
	for _, tx := range b.outflows {
		out = out.Add(tx.Value.Abs())
	}
	if !b.inflow.GreaterThan(th.PassThroughMinInflow) || !out.IsPositive() {
		return Anomaly{}, false
	}
	if out.LessThan(b.inflow.Mul(th.PassThroughRatio)) {
		return Anomaly{}, false
	}
	return Anomaly{
		Kind:        AnomalyPassThrough,
		Date:        b.day,
		Description: fmt.Sprintf("Received %s and passed on %s on the same day.", money.Format(b.inflow, currency), money.Format(out, currency)),
		Amount:      b.inflow,
		Alert:       "Circular pattern may indicate pass-through of funds. Check origin and destination.",
	}, true
}

func structuring(b *dayBucket, th Thresholds, currency string) (Anomaly, bool) {
	count := 0
	total := decimal.Zero
	for _, tx := range b.outflows {
		if tx.Value.Abs().LessThan(th.StructuringMaxPerTx) {
			count++
			total = total.Add(tx.Value.Abs())
		}
	}
	if count < th.StructuringMinCount || !total.GreaterThan(th.StructuringMinTotal) {
		return Anomaly{}, false
	}
	return Anomaly{
		Kind:        AnomalyStructuring,
		Date:        b.day,
		Description: fmt.Sprintf("%d low-value transactions totalling %s.", count, money.Format(total, currency)),
		Amount:      total,
		Alert:       "Many small outflows on the same day. May disguise a larger transfer.",
	}, true
}
