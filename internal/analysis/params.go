package analysis

// Params holds the tunable thresholds of the price-action analyzers.
// Zero values are never used directly; construct via DefaultParams and
// override from configuration.
type Params struct {
	// SwingDistance is the minimum bar distance on both sides for the
	// long-range swing points used by pullback and trendline detection.
	SwingDistance int
	// StructureWindow is the symmetric comparison window for the
	// short-range peaks/valleys used by structure and key levels.
	StructureWindow int
	// KeyLevelTolerance is the relative distance at which a price is
	// considered to be testing a level (0.005 = 0.5%).
	KeyLevelTolerance float64
	// PenetrationMin/Max bound a valid breakout penetration for the
	// failed-breakout detector.
	PenetrationMin float64
	PenetrationMax float64
	// ReversalBars is how many bars a failed breakout has to reverse in.
	ReversalBars int
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		SwingDistance:     5,
		StructureWindow:   2,
		KeyLevelTolerance: 0.005,
		PenetrationMin:    0.001,
		PenetrationMax:    0.02,
		ReversalBars:      3,
	}
}
