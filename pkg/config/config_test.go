package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PARSE_WORKERS", "")
	t.Setenv("DEFAULT_CURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "BRL", cfg.Pipeline.DefaultCurrency)
	assert.Equal(t, 1, cfg.Pipeline.ParseWorkers)
	assert.Equal(t, 10, cfg.Pipeline.TopN)
	assert.Equal(t, 500.0, cfg.Thresholds.PassThroughMinInflow)
	assert.Equal(t, 0.85, cfg.Thresholds.PassThroughRatio)
	assert.Equal(t, 5, cfg.Thresholds.StructuringMinCount)
	assert.Equal(t, 0.01, cfg.Thresholds.ScoreSmoothing)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PARSE_WORKERS", "4")
	t.Setenv("ASSUMED_YEAR", "2023")
	t.Setenv("PASS_THROUGH_RATIO", "0.9")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Pipeline.ParseWorkers)
	assert.Equal(t, 2023, cfg.Pipeline.AssumedYear)
	assert.Equal(t, 0.9, cfg.Thresholds.PassThroughRatio)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	t.Setenv("OVERDRAFT_HIGH_DAYS", "10")
	t.Setenv("OVERDRAFT_HIGH_MINIMUM", "-2000")
	t.Setenv("OVERDRAFT_MODERATE_DAYS", "3")
	t.Setenv("EXPENSE_RATIO_HIGH", "1.2")
	t.Setenv("EXPENSE_RATIO_LOW_MARGIN", "0.8")
	t.Setenv("UTILIZATION_HIGH", "0.9")
	t.Setenv("UTILIZATION_MODERATE", "0.6")
	t.Setenv("IMPULSE_HIGH_COUNT", "20")
	t.Setenv("IMPULSE_HIGH_TOTAL", "400")
	t.Setenv("IMPULSE_MODERATE_COUNT", "8")
	t.Setenv("IMPULSE_MODERATE_TOTAL", "120")
	t.Setenv("SCORE_BASE", "300")
	t.Setenv("SCORE_SPAN", "550")
	t.Setenv("SCORE_SMOOTHING", "0.05")

	cfg, err := Load()
	require.NoError(t, err)

	th := cfg.Thresholds
	assert.Equal(t, 10, th.OverdraftHighDays)
	assert.Equal(t, -2000.0, th.OverdraftHighMinimum)
	assert.Equal(t, 3, th.OverdraftModerateDays)
	assert.Equal(t, 1.2, th.ExpenseRatioHigh)
	assert.Equal(t, 0.8, th.ExpenseRatioLowMargin)
	assert.Equal(t, 0.9, th.UtilizationHigh)
	assert.Equal(t, 0.6, th.UtilizationModerate)
	assert.Equal(t, 20, th.ImpulseHighCount)
	assert.Equal(t, 400.0, th.ImpulseHighTotal)
	assert.Equal(t, 8, th.ImpulseModerateCount)
	assert.Equal(t, 120.0, th.ImpulseModerateTotal)
	assert.Equal(t, 300.0, th.ScoreBase)
	assert.Equal(t, 550.0, th.ScoreSpan)
	assert.Equal(t, 0.05, th.ScoreSmoothing)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero workers", func(c *Config) { c.Pipeline.ParseWorkers = 0 }, true},
		{"zero top n", func(c *Config) { c.Pipeline.TopN = 0 }, true},
		{"empty currency", func(c *Config) { c.Pipeline.DefaultCurrency = " " }, true},
		{"inverted expense ratio", func(c *Config) { c.Thresholds.ExpenseRatioLowMargin = 2 }, true},
		{"inverted utilization", func(c *Config) { c.Thresholds.UtilizationModerate = 0.95 }, true},
		{"bad off-hours", func(c *Config) { c.Thresholds.OffHoursLastHour = 24 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Pipeline:   PipelineConfig{DefaultCurrency: "BRL", ParseWorkers: 1, TopN: 10},
				Thresholds: DefaultThresholds(),
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
