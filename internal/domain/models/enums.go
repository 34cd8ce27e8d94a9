package models

// Direction is the net movement class of a series.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = "FLAT"
)

// IsValid returns true if d is one of the known directions.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionFlat:
		return true
	default:
		return false
	}
}

// Sign is +1 for UP, -1 for DOWN and 0 otherwise.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionUp:
		return 1
	case DirectionDown:
		return -1
	default:
		return 0
	}
}

// Arrow is the glyph drawn next to the direction in chart headers.
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "▲"
	case DirectionDown:
		return "▼"
	default:
		return "▶"
	}
}

// Momentum describes whether movement speeds up or slows down over the window.
type Momentum string

const (
	MomentumAccelerating Momentum = "ACCELERATING"
	MomentumDecelerating Momentum = "DECELERATING"
	MomentumSteady       Momentum = "STEADY"
)

func (m Momentum) IsValid() bool {
	switch m {
	case MomentumAccelerating, MomentumDecelerating, MomentumSteady:
		return true
	default:
		return false
	}
}

// Regime is the behavioral state of a series.
type Regime string

const (
	RegimeCalm     Regime = "CALM"
	RegimeVolatile Regime = "VOLATILE"
	RegimeTrending Regime = "TRENDING"
	RegimeCrash    Regime = "CRASH"
)

func (r Regime) IsValid() bool {
	switch r {
	case RegimeCalm, RegimeVolatile, RegimeTrending, RegimeCrash:
		return true
	default:
		return false
	}
}

// RegimePriority lists regimes in the order they are tested. The first
// regime whose criterion holds wins; CALM is the fallback.
func RegimePriority() []Regime {
	return []Regime{RegimeCrash, RegimeTrending, RegimeVolatile, RegimeCalm}
}
