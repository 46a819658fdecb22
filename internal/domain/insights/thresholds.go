package insights

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/pkg/config"
)

// Thresholds are the tunable heuristics of the analytics stage.
type Thresholds struct {
	PassThroughMinInflow decimal.Decimal
	PassThroughRatio     decimal.Decimal

	StructuringMinCount int
	StructuringMaxPerTx decimal.Decimal
	StructuringMinTotal decimal.Decimal

	OffHoursLastHour int
	OffHoursMinValue decimal.Decimal

	OverdraftHighDays     int
	OverdraftHighMinimum  decimal.Decimal
	OverdraftModerateDays int

	ExpenseRatioHigh      decimal.Decimal
	ExpenseRatioLowMargin decimal.Decimal

	UtilizationHigh     decimal.Decimal
	UtilizationModerate decimal.Decimal

	ImpulseMaxPerTx      decimal.Decimal
	ImpulseHighCount     int
	ImpulseHighTotal     decimal.Decimal
	ImpulseModerateCount int
	ImpulseModerateTotal decimal.Decimal

	ScoreBase      decimal.Decimal
	ScoreSpan      decimal.Decimal
	ScoreSmoothing decimal.Decimal
}

// DefaultThresholds returns the built-in heuristics.
func DefaultThresholds() Thresholds {
	return NewThresholds(config.DefaultThresholds())
}

// NewThresholds converts the configured floats to decimals.
func NewThresholds(c config.ThresholdsConfig) Thresholds {
	d := decimal.NewFromFloat
	return Thresholds{
		PassThroughMinInflow:  d(c.PassThroughMinInflow),
		PassThroughRatio:      d(c.PassThroughRatio),
		StructuringMinCount:   c.StructuringMinCount,
		StructuringMaxPerTx:   d(c.StructuringMaxPerTx),
		StructuringMinTotal:   d(c.StructuringMinTotal),
		OffHoursLastHour:      c.OffHoursLastHour,
		OffHoursMinValue:      d(c.OffHoursMinValue),
		OverdraftHighDays:     c.OverdraftHighDays,
		OverdraftHighMinimum:  d(c.OverdraftHighMinimum),
		OverdraftModerateDays: c.OverdraftModerateDays,
		ExpenseRatioHigh:      d(c.ExpenseRatioHigh),
		ExpenseRatioLowMargin: d(c.ExpenseRatioLowMargin),
		UtilizationHigh:       d(c.UtilizationHigh),
		UtilizationModerate:   d(c.UtilizationModerate),
		ImpulseMaxPerTx:       d(c.ImpulseMaxPerTx),
		ImpulseHighCount:      c.ImpulseHighCount,
		ImpulseHighTotal:      d(c.ImpulseHighTotal),
		ImpulseModerateCount:  c.ImpulseModerateCount,
		ImpulseModerateTotal:  d(c.ImpulseModerateTotal),
		ScoreBase:             d(c.ScoreBase),
		ScoreSpan:             d(c.ScoreSpan),
		ScoreSmoothing:        d(c.ScoreSmoothing),
	}
}
