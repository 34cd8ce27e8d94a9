package features

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Summary holds the raw descriptive statistics of a series.
type Summary struct {
	N       int
	First   float64
	Last    float64
	Min     float64
	Max     float64
	Level   float64 // mean of |v|
	PathLen float64 // sum of |step|
}

// Range is max - min.
func (s Summary) Range() float64 { return s.Max - s.Min }

// Net is last - first.
func (s Summary) Net() float64 { return s.Last - s.First }

// Flat reports a series with no spread at all.
func (s Summary) Flat() bool { return s.N < 2 || s.Range() == 0 }

// Describe computes a Summary. values must be non-empty.
func Describe(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	s := Summary{N: n, First: values[0], Last: values[n-1]}
	s.Min, s.Max = Bounds(values)
	s.Level = Mean(Abs(values))
	s.PathLen = sumAbs(Steps(values))
	return s
}

// Steps returns v[i]-v[i-1], one shorter than values.
func Steps(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// Abs returns |v| element-wise.
func Abs(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}

// Mean is the simple average over the whole slice.
func Mean(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	return talib.Sma(values, n)[n-1]
}

// Bounds returns min and max over the whole slice.
func Bounds(values []float64) (float64, float64) {
	n := len(values)
	switch n {
	case 0:
		return 0, 0
	case 1:
		return values[0], values[0]
	}
	// talib's rolling Min/Max need a period of at least 2
	return talib.Min(values, n)[n-1], talib.Max(values, n)[n-1]
}

// Efficiency is |last-first| / sum|step|: 1 for a straight line, near 0 for
// a series that goes nowhere while moving a lot.
func Efficiency(s Summary) float64 {
	if s.PathLen == 0 {
		return 0
	}
	return math.Abs(s.Net()) / s.PathLen
}

// RealizedVolatility is the root mean square of steps scaled by level.
func RealizedVolatility(values []float64, level float64) float64 {
	steps := Steps(values)
	if len(steps) == 0 || level == 0 {
		return 0
	}
	sq := make([]float64, len(steps))
	for i, st := range steps {
		r := st / level
		sq[i] = r * r
	}
	return math.Sqrt(Mean(sq))
}

// LinRegSlope is the least squares slope of ys against their index.
func LinRegSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	var sx, sy, sxy, sxx float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}
	fn := float64(n)
	den := fn*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (fn*sxy - sx*sy) / den
}

// HalfSlopes splits values at the midpoint, sharing the middle point, and
// returns the regression slope of each half. Needs at least 3 points.
func HalfSlopes(values []float64) (early, late float64, ok bool) {
	n := len(values)
	if n < 3 {
		return 0, 0, false
	}
	h := (n - 1) / 2
	return LinRegSlope(values[:h+1]), LinRegSlope(values[h:]), true
}

// Normalize divides values by max|v|, leaving them in [-1, 1]. An all-zero
// series is returned as a copy.
func Normalize(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if peak == 0 {
			out[i] = v
			continue
		}
		out[i] = v / peak
	}
	return out
}

// Finite reports whether every value is a real number.
func Finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sumAbs(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += math.Abs(v)
	}
	return total
}
