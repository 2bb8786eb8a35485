package analysis

import "PriceSentinel/internal/model"

// SwingHighs returns the local maxima of the high series. A bar is a
// swing high when its high is >= every high within distance bars on both
// sides, so the last distance bars can never qualify yet.
func SwingHighs(bars []model.Bar, distance int) []model.SwingPoint {
	var swings []model.SwingPoint
	for i := distance; i < len(bars)-distance; i++ {
		if isSwing(bars, i, distance, func(a, b model.Bar) bool { return a.High >= b.High }) {
			swings = append(swings, model.SwingPoint{Index: i, Price: bars[i].High})
		}
	}
	return swings
}

// SwingLows returns the local minima of the low series.
func SwingLows(bars []model.Bar, distance int) []model.SwingPoint {
	var swings []model.SwingPoint
	for i := distance; i < len(bars)-distance; i++ {
		if isSwing(bars, i, distance, func(a, b model.Bar) bool { return a.Low <= b.Low }) {
			swings = append(swings, model.SwingPoint{Index: i, Price: bars[i].Low})
		}
	}
	return swings
}

func isSwing(bars []model.Bar, i, distance int, cmp func(a, b model.Bar) bool) bool {
	for j := 1; j <= distance; j++ {
		if !cmp(bars[i], bars[i-j]) || !cmp(bars[i], bars[i+j]) {
			return false
		}
	}
	return true
}
