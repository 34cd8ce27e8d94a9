package analytics

import (
	"math"

	"GlyphCore/internal/domain/models"
)

// ClassifyDirection maps net/range to a direction. The second return value is
// how far net sits from the FLAT boundary, in [0,1]: 0 on the boundary, 1 at
// a perfectly flat end-to-end move or a move spanning the whole range.
func ClassifyDirection(net, eps float64) (models.Direction, float64) {
	a := math.Abs(net)
	if a < eps {
		return models.DirectionFlat, clamp01((eps - a) / eps)
	}
	margin := clamp01((a - eps) / (1 - eps))
	if net > 0 {
		return models.DirectionUp, margin
	}
	return models.DirectionDown, margin
}
