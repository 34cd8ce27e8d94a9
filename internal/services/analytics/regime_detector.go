package analytics

import (
	"math"

	"GlyphCore/internal/domain/models"
)

// bound is one "stat >= threshold" comparison.
type bound struct {
	stat      float64
	threshold float64
}

// criterion is a conjunction of bounds that selects a regime.
type criterion struct {
	regime models.Regime
	bounds []bound
}

// evaluate reports whether every bound holds and how decisively, in [0,1].
// When it holds the margin is the weakest bound's relative excess; when it
// fails it is the largest relative shortfall.
func (c criterion) evaluate() (bool, float64) {
	pass := true
	minExcess := math.Inf(1)
	maxShort := 0.0
	for _, b := range c.bounds {
		rel := (b.stat - b.threshold) / b.threshold
		if rel >= 0 {
			minExcess = math.Min(minExcess, rel)
			continue
		}
		pass = false
		maxShort = math.Max(maxShort, -rel)
	}
	if pass {
		return true, clamp01(minExcess)
	}
	return false, clamp01(maxShort)
}

// regimeBounds returns the bounds that select r. CALM has none: it is what
// remains when nothing else matches.
func regimeBounds(r models.Regime, st models.Stats, th Thresholds) []bound {
	switch r {
	case models.RegimeCrash:
		return []bound{{-st.Move, th.CrashDrop}, {st.Efficiency, th.TrendEfficiency}}
	case models.RegimeTrending:
		return []bound{{math.Abs(st.Move), th.TrendMove}, {st.Efficiency, th.TrendEfficiency}}
	case models.RegimeVolatile:
		return []bound{{st.Volatility, th.VolatileThreshold}}
	}
	return nil
}

func regimeCriteria(st models.Stats, th Thresholds) []criterion {
	prio := models.RegimePriority()
	out := make([]criterion, 0, len(prio))
	for _, r := range prio {
		if b := regimeBounds(r, st, th); len(b) > 0 {
			out = append(out, criterion{regime: r, bounds: b})
		}
	}
	return out
}

// ClassifyRegime walks the criteria in priority order and returns the first
// regime that matches, or CALM. The margin is the smallest decisiveness over
// every criterion that was evaluated, so a result close to any boundary it
// had to cross is reported as uncertain.
func ClassifyRegime(st models.Stats, th Thresholds) (models.Regime, float64) {
	margin := 1.0
	for _, c := range regimeCriteria(st, th) {
		ok, m := c.evaluate()
		margin = math.Min(margin, m)
		if ok {
			return c.regime, margin
		}
	}
	return models.RegimeCalm, margin
}
