package analytics

import "math"

// Thresholds are the comparison points of every classifier. All of them apply
// to unitless statistics, so one set works for any price scale.
type Thresholds struct {
	// |net/range| below this is FLAT.
	FlatEpsilon float64 `yaml:"flat_epsilon" toml:"flat_epsilon" json:"flat_epsilon" default:"0.1" validate:"gt=0,lt=1"`
	// Late minus early normalized slope needed to call ACCELERATING/DECELERATING.
	MomentumTolerance float64 `yaml:"momentum_tolerance" toml:"momentum_tolerance" json:"momentum_tolerance" default:"0.25" validate:"gt=0"`
	// Drop relative to level that qualifies as CRASH.
	CrashDrop float64 `yaml:"crash_drop" toml:"crash_drop" json:"crash_drop" default:"0.1" validate:"gt=0"`
	// Move relative to level that qualifies as TRENDING.
	TrendMove float64 `yaml:"trend_move" toml:"trend_move" json:"trend_move" default:"0.03" validate:"gt=0"`
	// Minimum efficiency ratio for CRASH and TRENDING.
	TrendEfficiency float64 `yaml:"trend_efficiency" toml:"trend_efficiency" json:"trend_efficiency" default:"0.4" validate:"gt=0,lte=1"`
	// Realized step volatility that qualifies as VOLATILE.
	VolatileThreshold float64 `yaml:"volatile_threshold" toml:"volatile_threshold" json:"volatile_threshold" default:"0.02" validate:"gt=0"`
}

// DefaultThresholds returns the thresholds used when nothing is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FlatEpsilon:       0.10,
		MomentumTolerance: 0.25,
		CrashDrop:         0.10,
		TrendMove:         0.03,
		TrendEfficiency:   0.40,
		VolatileThreshold: 0.02,
	}
}

func normalizeThresholds(t Thresholds) Thresholds {
	def := DefaultThresholds()
	if t.FlatEpsilon <= 0 || t.FlatEpsilon >= 1 {
		t.FlatEpsilon = def.FlatEpsilon
	}
	if t.MomentumTolerance <= 0 {
		t.MomentumTolerance = def.MomentumTolerance
	}
	if t.CrashDrop <= 0 {
		t.CrashDrop = def.CrashDrop
	}
	if t.TrendMove <= 0 {
		t.TrendMove = def.TrendMove
	}
	if t.TrendEfficiency <= 0 || t.TrendEfficiency > 1 {
		t.TrendEfficiency = def.TrendEfficiency
	}
	if t.VolatileThreshold <= 0 {
		t.VolatileThreshold = def.VolatileThreshold
	}
	return t
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
