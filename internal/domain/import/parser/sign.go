package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

func asInflow(v decimal.Decimal) decimal.Decimal  { return v.Abs() }
func asOutflow(v decimal.Decimal) decimal.Decimal { return v.Abs().Neg() }

// outflowFirst forces the sign from keyword sets where outflow keywords are checked
// before inflow ones. With no hit the parsed sign is kept.
func outflowFirst(description string, v decimal.Decimal, outflow, inflow []string) decimal.Decimal {
	lower := strings.ToLower(description)
	switch {
	case containsAny(lower, outflow):
		return asOutflow(v)
	case containsAny(lower, inflow):
		return asInflow(v)
	default:
		return v
	}
}

// exclusive forces the sign only when exactly one of the keyword sets matches.
func exclusive(description string, v decimal.Decimal, inflow, outflow []string) decimal.Decimal {
	lower := strings.ToLower(description)
	in, out := containsAny(lower, inflow), containsAny(lower, outflow)
	switch {
	case in && !out:
		return asInflow(v)
	case out && !in:
		return asOutflow(v)
	default:
		return v
	}
}

// cardBill makes every amount a purchase unless a credit keyword says otherwise.
func cardBill(description string, v decimal.Decimal, credit []string) (decimal.Decimal, bool) {
	if containsAny(strings.ToLower(description), credit) {
		return asInflow(v), true
	}
	return asOutflow(v), false
}
