package models

// Stats holds the normalized statistics a Signal was classified from.
// Every field is unitless, so a series and any positive multiple of it
// produce the same Stats.
type Stats struct {
	Points     int     `json:"points"`
	Net        float64 `json:"net"`         // (last-first) / (max-min)
	Move       float64 `json:"move"`        // (last-first) / mean(|v|)
	Efficiency float64 `json:"efficiency"`  // |last-first| / sum|step|
	Volatility float64 `json:"volatility"`  // rms of steps / mean(|v|)
	SlopeEarly float64 `json:"slope_early"` // first-half slope, in ranges per window
	SlopeLate  float64 `json:"slope_late"`  // second-half slope, in ranges per window
}

// Signal is the classification of one series. It carries a private copy of
// the series so it can be rendered without the caller keeping the input.
type Signal struct {
	Direction  Direction `json:"direction"`
	Strength   float64   `json:"strength"`
	Momentum   Momentum  `json:"momentum"`
	Regime     Regime    `json:"regime"`
	Confidence float64   `json:"confidence"`
	Stats      Stats     `json:"stats"`

	values []float64
	labels []string
}

// WithSeries returns a copy of s bound to copies of values and labels.
func (s Signal) WithSeries(values []float64, labels []string) Signal {
	s.values = append([]float64(nil), values...)
	s.labels = append([]string(nil), labels...)
	return s
}

// Values returns a copy of the analyzed series.
func (s Signal) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Labels returns a copy of the labels aligned with Values.
func (s Signal) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Len is the number of points the signal was computed from.
func (s Signal) Len() int { return len(s.values) }

// Valid reports whether all categorical fields are set and scores are in [0,1].
func (s Signal) Valid() bool {
	return s.Direction.IsValid() && s.Momentum.IsValid() && s.Regime.IsValid() &&
		s.Strength >= 0 && s.Strength <= 1 &&
		s.Confidence >= 0 && s.Confidence <= 1
}
