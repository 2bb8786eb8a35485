package risk

// PositionSize returns the fraction of account equity to commit under
// fixed-fractional sizing: riskFraction of equity is lost if the stop is
// hit. Invalid inputs size to zero rather than guessing.
//
// The result is capped at 1.0; leverage is out of scope here.
func PositionSize(riskFraction, entry, stop float64) float64 {
	if entry <= 0 || stop <= 0 {
		return 0
	}
	if riskFraction <= 0 || riskFraction > 1 {
		return 0
	}

	// A stop at or above entry makes the trade unboundable; refuse it.
	riskPerShare := entry - stop
	if riskPerShare <= 0 {
		return 0
	}

	fraction := riskFraction / (riskPerShare / entry)
	if fraction > 1 {
		fraction = 1
	}
	return fraction
}
