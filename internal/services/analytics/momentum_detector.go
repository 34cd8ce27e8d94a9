package analytics

import (
	"math"

	"GlyphCore/internal/domain/models"
)

// ClassifyMomentum compares the normalized slope of the later half of the
// window against the earlier half. Slopes are projected on the direction, so
// for a DOWN series a steeper fall is acceleration. For FLAT series the
// magnitudes are compared. An early half that ran against the direction is a
// reversal rather than a speed-up, and stays STEADY.
func ClassifyMomentum(dir models.Direction, early, late, tol float64) models.Momentum {
	var delta float64
	if sign := dir.Sign(); sign != 0 {
		if sign*early < 0 {
			return models.MomentumSteady
		}
		delta = sign*late - sign*early
	} else {
		delta = math.Abs(late) - math.Abs(early)
	}
	switch {
	case delta > tol:
		return models.MomentumAccelerating
	case delta < -tol:
		return models.MomentumDecelerating
	default:
		return models.MomentumSteady
	}
}
