package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Pipeline      PipelineConfig
	Thresholds    ThresholdsConfig
	Observability ObservabilityConfig
}

type PipelineConfig struct {
	DefaultCurrency string
	AssumedYear     int // 0 = year of the processing run
	ParseWorkers    int // 1 = strictly sequential
	InboxDir        string
	Schedule        string // cron expression, empty = run once
	TopN            int
}

// ThresholdsConfig carries the heuristic constants used by the analytics stage.
// Defaults reproduce the historical behaviour.
type ThresholdsConfig struct {
	PassThroughMinInflow float64
	PassThroughRatio     float64

	StructuringMinCount   int
	StructuringMaxPerTx   float64
	StructuringMinTotal   float64
	OffHoursLastHour      int
	OffHoursMinValue      float64
	OverdraftHighDays     int
	OverdraftHighMinimum  float64
	OverdraftModerateDays int
	ExpenseRatioHigh      float64
	ExpenseRatioLowMargin float64
	UtilizationHigh       float64
	UtilizationModerate   float64
	ImpulseMaxPerTx       float64
	ImpulseHighCount      int
	ImpulseHighTotal      float64
	ImpulseModerateCount  int
	ImpulseModerateTotal  float64
	ScoreBase             float64
	ScoreSpan             float64
	ScoreSmoothing        float64
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables, loading a .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Pipeline: PipelineConfig{
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "BRL"),
			AssumedYear:     getEnvAsInt("ASSUMED_YEAR", 0),
			ParseWorkers:    getEnvAsInt("PARSE_WORKERS", 1),
			InboxDir:        getEnv("INBOX_DIR", "./inbox"),
			Schedule:        getEnv("SCHEDULE", ""),
			TopN:            getEnvAsInt("TOP_N", 10),
		},
		Thresholds: DefaultThresholds(),
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "text"),
		},
	}

	t := &cfg.Thresholds
	t.PassThroughMinInflow = getEnvAsFloat("PASS_THROUGH_MIN_INFLOW", t.PassThroughMinInflow)
	t.PassThroughRatio = getEnvAsFloat("PASS_THROUGH_RATIO", t.PassThroughRatio)
	t.StructuringMinCount = getEnvAsInt("STRUCTURING_MIN_COUNT", t.StructuringMinCount)
	t.StructuringMaxPerTx = getEnvAsFloat("STRUCTURING_MAX_PER_TX", t.StructuringMaxPerTx)
	t.StructuringMinTotal = getEnvAsFloat("STRUCTURING_MIN_TOTAL", t.StructuringMinTotal)
	t.OffHoursLastHour = getEnvAsInt("OFF_HOURS_LAST_HOUR", t.OffHoursLastHour)
	t.OffHoursMinValue = getEnvAsFloat("OFF_HOURS_MIN_VALUE", t.OffHoursMinValue)
	t.OverdraftHighDays = getEnvAsInt("OVERDRAFT_HIGH_DAYS", t.OverdraftHighDays)
	t.OverdraftHighMinimum = getEnvAsFloat("OVERDRAFT_HIGH_MINIMUM", t.OverdraftHighMinimum)
	t.OverdraftModerateDays = getEnvAsInt("OVERDRAFT_MODERATE_DAYS", t.OverdraftModerateDays)
	t.ExpenseRatioHigh = getEnvAsFloat("EXPENSE_RATIO_HIGH", t.ExpenseRatioHigh)
	t.ExpenseRatioLowMargin = getEnvAsFloat("EXPENSE_RATIO_LOW_MARGIN", t.ExpenseRatioLowMargin)
	t.UtilizationHigh = getEnvAsFloat("UTILIZATION_HIGH", t.UtilizationHigh)
	t.UtilizationModerate = getEnvAsFloat("UTILIZATION_MODERATE", t.UtilizationModerate)
	t.ImpulseMaxPerTx = getEnvAsFloat("IMPULSE_MAX_PER_TX", t.ImpulseMaxPerTx)
	t.ImpulseHighCount = getEnvAsInt("IMPULSE_HIGH_COUNT", t.ImpulseHighCount)
	t.ImpulseHighTotal = getEnvAsFloat("IMPULSE_HIGH_TOTAL", t.ImpulseHighTotal)
	t.ImpulseModerateCount = getEnvAsInt("IMPULSE_MODERATE_COUNT", t.ImpulseModerateCount)
	t.ImpulseModerateTotal = getEnvAsFloat("IMPULSE_MODERATE_TOTAL", t.ImpulseModerateTotal)
	t.ScoreBase = getEnvAsFloat("SCORE_BASE", t.ScoreBase)
	t.ScoreSpan = getEnvAsFloat("SCORE_SPAN", t.ScoreSpan)
	t.ScoreSmoothing = getEnvAsFloat("SCORE_SMOOTHING", t.ScoreSmoothing)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultThresholds returns the stock heuristic constants.
func DefaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		PassThroughMinInflow:  500,
		PassThroughRatio:      0.85,
		StructuringMinCount:   5,
		StructuringMaxPerTx:   1000,
		StructuringMinTotal:   1500,
		OffHoursLastHour:      5,
		OffHoursMinValue:      500,
		OverdraftHighDays:     7,
		OverdraftHighMinimum:  -1000,
		OverdraftModerateDays: 2,
		ExpenseRatioHigh:      1.1,
		ExpenseRatioLowMargin: 0.9,
		UtilizationHigh:       0.8,
		UtilizationModerate:   0.5,
		ImpulseMaxPerTx:       150,
		ImpulseHighCount:      15,
		ImpulseHighTotal:      300,
		ImpulseModerateCount:  7,
		ImpulseModerateTotal:  100,
		ScoreBase:             500,
		ScoreSpan:             500,
		ScoreSmoothing:        0.01,
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.ParseWorkers < 1 {
		return fmt.Errorf("PARSE_WORKERS must be at least 1, got %d", c.Pipeline.ParseWorkers)
	}
	if c.Pipeline.TopN < 1 {
		return fmt.Errorf("TOP_N must be at least 1, got %d", c.Pipeline.TopN)
	}
	if strings.TrimSpace(c.Pipeline.DefaultCurrency) == "" {
		return errors.New("DEFAULT_CURRENCY is required")
	}
	t := c.Thresholds
	if t.ExpenseRatioLowMargin > t.ExpenseRatioHigh {
		return errors.New("expense ratio low-margin threshold exceeds the high threshold")
	}
	if t.UtilizationModerate > t.UtilizationHigh {
		return errors.New("utilization moderate threshold exceeds the high threshold")
	}
	if t.OverdraftModerateDays > t.OverdraftHighDays {
		return errors.New("overdraft moderate days exceed the high days")
	}
	if t.OffHoursLastHour < 0 || t.OffHoursLastHour > 23 {
		return fmt.Errorf("OFF_HOURS_LAST_HOUR must be within 0..23, got %d", t.OffHoursLastHour)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
