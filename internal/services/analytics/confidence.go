package analytics

const (
	weightDirection   = 0.4
	weightRegime      = 0.3
	weightConsistency = 0.3
)

// Confidence blends how far the direction and regime calls sit from their
// boundaries with how orderly the path was. Every input is continuous in the
// underlying statistics, so confidence never jumps at a threshold.
func Confidence(dirMargin, regimeMargin, efficiency, volatility, volThreshold float64) float64 {
	cDir := 0.5 + 0.5*clamp01(dirMargin)
	cReg := 0.5 + 0.5*clamp01(regimeMargin)

	noise := 0.0
	if volatility > 0 {
		noise = volatility / (volatility + volThreshold)
	}
	consistency := 1 - noise*(1-clamp01(efficiency))

	return clamp01(weightDirection*cDir + weightRegime*cReg + weightConsistency*consistency)
}

// Strength is half the share of the range covered end to end and half the
// efficiency of the path.
func Strength(net, efficiency float64) float64 {
	if net < 0 {
		net = -net
	}
	return clamp01(0.5*net + 0.5*efficiency)
}
