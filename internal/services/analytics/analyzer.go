package analytics

import (
	"fmt"
	"strconv"

	"GlyphCore/internal/domain/models"
	domsvc "GlyphCore/internal/domain/service"
	"GlyphCore/internal/services/features"
)

// Analyzer is the in-process Analyzer. It holds only thresholds and is safe
// for concurrent use.
type Analyzer struct {
	th Thresholds
}

func NewAnalyzer(th Thresholds) *Analyzer {
	return &Analyzer{th: normalizeThresholds(th)}
}

func (a *Analyzer) Thresholds() Thresholds { return a.th }

// Analyze classifies values. labels may be nil, in which case positions are
// used; otherwise it must have one entry per value.
func (a *Analyzer) Analyze(values []float64, labels []string) (models.Signal, error) {
	labels, err := Validate(values, labels)
	if err != nil {
		return models.Signal{}, err
	}

	// every statistic is unitless, so work on values scaled into [-1, 1]
	// where sums and differences cannot overflow
	scaled := features.Normalize(values)
	sig := a.classify(scaled, features.Describe(scaled))
	return sig.WithSeries(values, labels), nil
}

// Validate checks a series the way Analyze does and returns the resolved
// labels. Callers that short-circuit Analyze (a cache) must run it first.
func Validate(values []float64, labels []string) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("analyze: empty series: %w", models.ErrInvalidInput)
	}
	if !features.Finite(values) {
		return nil, fmt.Errorf("analyze: series contains NaN or Inf: %w", models.ErrInvalidInput)
	}
	return ResolveLabels(len(values), labels)
}

func (a *Analyzer) classify(values []float64, sum features.Summary) models.Signal {
	if sum.N == 1 {
		// one observation carries no evidence either way
		return models.Signal{
			Direction:  models.DirectionFlat,
			Momentum:   models.MomentumSteady,
			Regime:     models.RegimeCalm,
			Confidence: 0.5,
			Stats:      models.Stats{Points: 1},
		}
	}
	if sum.Flat() {
		return models.Signal{
			Direction:  models.DirectionFlat,
			Momentum:   models.MomentumSteady,
			Regime:     models.RegimeCalm,
			Confidence: 1,
			Stats:      models.Stats{Points: sum.N},
		}
	}

	st := a.stats(values, sum)

	dir, dirMargin := ClassifyDirection(st.Net, a.th.FlatEpsilon)

	mom := models.MomentumSteady
	if sum.N >= 3 {
		mom = ClassifyMomentum(dir, st.SlopeEarly, st.SlopeLate, a.th.MomentumTolerance)
	}

	regime, regMargin := ClassifyRegime(st, a.th)

	return models.Signal{
		Direction:  dir,
		Strength:   Strength(st.Net, st.Efficiency),
		Momentum:   mom,
		Regime:     regime,
		Confidence: Confidence(dirMargin, regMargin, st.Efficiency, st.Volatility, a.th.VolatileThreshold),
		Stats:      st,
	}
}

// stats normalizes the summary. Range and level are non-zero here.
func (a *Analyzer) stats(values []float64, sum features.Summary) models.Stats {
	rng := sum.Range()
	st := models.Stats{
		Points:     sum.N,
		Net:        sum.Net() / rng,
		Move:       sum.Net() / sum.Level,
		Efficiency: features.Efficiency(sum),
		Volatility: features.RealizedVolatility(values, sum.Level),
	}
	if early, late, ok := features.HalfSlopes(values); ok {
		// slope per step * steps in window / range = share of the range per window
		scale := float64(sum.N-1) / rng
		st.SlopeEarly = early * scale
		st.SlopeLate = late * scale
	}
	return st
}

// ResolveLabels returns labels unchanged when they match n, positional
// labels when none were given, and ErrLengthMismatch otherwise.
func ResolveLabels(n int, labels []string) ([]string, error) {
	if len(labels) == 0 {
		out := make([]string, n)
		for i := range out {
			out[i] = strconv.Itoa(i)
		}
		return out, nil
	}
	if len(labels) != n {
		return nil, fmt.Errorf("analyze: %d labels for %d values: %w", len(labels), n, models.ErrLengthMismatch)
	}
	return labels, nil
}

var _ domsvc.Analyzer = (*Analyzer)(nil)
