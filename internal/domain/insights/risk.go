package insights

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Severity grades a risk indicator.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Indicator keys, one per kind of finding.
const (
	RiskNegativeBalance  = "negative_balance"
	RiskDebtDependency   = "debt_dependency"
	RiskExpenseRatio     = "expense_ratio"
	RiskIncomeMissing    = "income_missing"
	RiskCardUtilization  = "card_utilization"
	RiskCardLimitUnknown = "card_limit_unknown"
	RiskImpulseSpending  = "impulse_spending"
	RiskMinimumPayment   = "minimum_payment"
)

// RiskIndicator is one finding of AnalyzeRisk.
type RiskIndicator struct {
	Key      string   `json:"key"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

var (
	cardLimitPattern      = regexp.MustCompile(`(?i)Limite total:\s*R\$?\s*([\d\.,]+)`)
	minimumPaymentPattern = regexp.MustCompile(`(?i)Pagamento mínimo ou parcial|Atrasar ou pagar menos que o mínimo da fatura`)
)

// Card categories where many small purchases read as impulse spending.
var impulseCategories = map[transaction.Category]bool{
	transaction.CategoryLeisure:        true,
	transaction.CategoryFood:           true,
	transaction.CategoryHealth:         true,
	transaction.CategoryApparel:        true,
	transaction.CategoryTechnology:     true,
	transaction.CategoryHomeAndHousing: true,
}

// AnalyzeRisk inspects categorized records and the raw document text. Statement
// records drive the overdraft and expense ratio checks; card-bill records drive
// utilization, impulse spending and minimum payment checks.
func AnalyzeRisk(txs []transaction.Transaction, rawText string, th Thresholds, currency string) []RiskIndicator {
	var statement, card []transaction.Transaction
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		switch tx.DocType {
		case transaction.DocStatement:
			statement = append(statement, tx)
		case transaction.DocCardBill:
			card = append(card, tx)
		}
	}

	var out []RiskIndicator
	if len(statement) > 0 {
		out = append(out, overdraftRisk(statement, th, currency)...)
		out = append(out, expenseRisk(statement, th, currency)...)
	}
	if len(card) > 0 {
		out = append(out, cardRisk(card, rawText, th, currency)...)
	}
	return out
}

func overdraftRisk(statement []transaction.Transaction, th Thresholds, currency string) []RiskIndicator {
	sorted := append([]transaction.Transaction{}, statement...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	balance := decimal.Zero
	minimum := decimal.Zero
	negativeDays := make(map[time.Time]struct{})
	for _, tx := range sorted {
		balance = balance.Add(tx.Value)
		if balance.IsNegative() {
			negativeDays[tx.Day()] = struct{}{}
			if balance.LessThan(minimum) {
				minimum = balance
			}
		}
	}

	if len(negativeDays) == 0 {
		return []RiskIndicator{{Key: RiskNegativeBalance, Severity: SeverityInfo, Message: "No negative balance period identified."}}
	}

	days := len(negativeDays)
	out := []RiskIndicator{{
		Key:      RiskNegativeBalance,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("%d days with negative balance (minimum: %s)", days, money.Format(minimum, currency)),
	}}

	switch {
	case days > th.OverdraftHighDays || minimum.LessThan(th.OverdraftHighMinimum):
		out = append(out, RiskIndicator{Key: RiskDebtDependency, Severity: SeverityHigh,
			Message: "Frequent or heavy use of the overdraft limit, indicating credit dependency."})
	case days > th.OverdraftModerateDays:
		out = append(out, RiskIndicator{Key: RiskDebtDependency, Severity: SeverityModerate,
			Message: "Occasional negative balance. Keep monitoring."})
	}
	return out
}

func expenseRisk(statement []transaction.Transaction, th Thresholds, currency string) []RiskIndicator {
	t := ComputeTotals(statement)
	in, out := t.Inflow, t.Outflow.Abs()

	if !in.IsPositive() {
		return []RiskIndicator{{Key: RiskIncomeMissing, Severity: SeverityInfo,
			Message: "No inflows recorded to compare expenses against."}}
	}

	ratio := out.Div(in)
	pct := ratio.Mul(decimal.NewFromInt(100))
	switch {
	case ratio.GreaterThan(th.ExpenseRatioHigh):
		return []RiskIndicator{{Key: RiskExpenseRatio, Severity: SeverityHigh,
			Message: fmt.Sprintf("Outflows (%s) exceed inflows (%s) by %s%%. This can lead to debt.",
				money.Format(out, currency), money.Format(in, currency), pct.Sub(decimal.NewFromInt(100)).StringFixed(2))}}
	case ratio.GreaterThan(th.ExpenseRatioLowMargin):
		return []RiskIndicator{{Key: RiskExpenseRatio, Severity: SeverityModerate,
			Message: fmt.Sprintf("Expenses (%s) consume %s%% of income (%s). Low margin for the unexpected.",
				money.Format(out, currency), pct.StringFixed(2), money.Format(in, currency))}}
	}
	return nil
}

// CardLimit extracts the "Limite total" figure printed on card bills.
func CardLimit(rawText string) (decimal.Decimal, bool) {
	m := cardLimitPattern.FindStringSubmatch(rawText)
	if m == nil {
		return decimal.Zero, false
	}
	v, err := normalizer.ParseAmount(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

func cardRisk(card []transaction.Transaction, rawText string, th Thresholds, currency string) []RiskIndicator {
	var out []RiskIndicator

	expenses := decimal.Zero
	impulseCount := 0
	impulseTotal := decimal.Zero
	for _, tx := range card {
		if tx.IsInflow() {
			continue
		}
		abs := tx.Value.Abs()
		expenses = expenses.Add(abs)
		if impulseCategories[tx.Category] && abs.LessThan(th.ImpulseMaxPerTx) {
			impulseCount++
			impulseTotal = impulseTotal.Add(abs)
		}
	}

	if limit, ok := CardLimit(rawText); ok && limit.IsPositive() {
		rate := expenses.Div(limit)
		pct := rate.Mul(decimal.NewFromInt(100)).StringFixed(2)
		switch {
		case rate.GreaterThan(th.UtilizationHigh):
			out = append(out, RiskIndicator{Key: RiskCardUtilization, Severity: SeverityHigh,
				Message: fmt.Sprintf("%s%% of the card limit used (%s of %s). High dependency on credit.",
					pct, money.Format(expenses, currency), money.Format(limit, currency))})
		case rate.GreaterThan(th.UtilizationModerate):
			out = append(out, RiskIndicator{Key: RiskCardUtilization, Severity: SeverityModerate,
				Message: fmt.Sprintf("%s%% of the card limit used. Keep monitoring.", pct)})
		}
	} else {
		out = append(out, RiskIndicator{Key: RiskCardLimitUnknown, Severity: SeverityInfo,
			Message: "Could not determine the total card limit."})
	}

	switch {
	case impulseCount == 0:
		out = append(out, RiskIndicator{Key: RiskImpulseSpending, Severity: SeverityInfo,
			Message: "No significant impulse purchase pattern on the card in this period."})
	case impulseCount > th.ImpulseHighCount && impulseTotal.GreaterThan(th.ImpulseHighTotal):
		out = append(out, RiskIndicator{Key: RiskImpulseSpending, Severity: SeverityHigh,
			Message: fmt.Sprintf("%d small purchases totalling %s. Review discretionary spending.", impulseCount, money.Format(impulseTotal, currency))})
	case impulseCount > th.ImpulseModerateCount && impulseTotal.GreaterThan(th.ImpulseModerateTotal):
		out = append(out, RiskIndicator{Key: RiskImpulseSpending, Severity: SeverityModerate,
			Message: fmt.Sprintf("%d small purchases totalling %s. Watch impulse spending.", impulseCount, money.Format(impulseTotal, currency))})
	}

	if minimumPaymentPattern.MatchString(rawText) {
		out = append(out, RiskIndicator{Key: RiskMinimumPayment, Severity: SeverityModerate,
			Message: "The bill mentions minimum or late payment, which signals financial strain if it is a habit."})
	}
	return out
}
