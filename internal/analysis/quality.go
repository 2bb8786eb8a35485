package analysis

import "PriceSentinel/internal/model"

// ClassifyBarQuality classifies the shape of the latest bar. The bars
// slice is the window snapshot including the current bar; the last three
// closes provide the trend context for reversal bars.
func ClassifyBarQuality(bars []model.Bar, current model.Bar) model.BarQuality {
	body := current.Body()
	totalRange := current.Range()

	if totalRange == 0 {
		return model.Doji
	}

	bodyRatio := body / totalRange
	if bodyRatio < 0.1 {
		return model.Doji
	}

	// Reversal bars outrank the plain strong/weak classes.
	if isReversalBar(bars, current) {
		return model.Reversal
	}

	var upperShadow, lowerShadow float64
	if current.Bullish() {
		upperShadow = current.High - current.Close
		lowerShadow = current.Open - current.Low
	} else {
		upperShadow = current.High - current.Open
		lowerShadow = current.Close - current.Low
	}

	if current.Bullish() {
		if bodyRatio > 0.7 && upperShadow/totalRange < 0.2 {
			return model.StrongBull
		}
		return model.WeakBull
	}
	if bodyRatio > 0.7 && lowerShadow/totalRange < 0.2 {
		return model.StrongBear
	}
	return model.WeakBear
}

// isReversalBar checks for a hammer in a falling context or a hanging
// man in a rising one: a long shadow (>2x body) opposing the move, with
// a small body.
func isReversalBar(bars []model.Bar, current model.Bar) bool {
	if len(bars) < 3 {
		return false
	}

	body := current.Body()
	totalRange := current.Range()
	if totalRange == 0 {
		return false
	}

	lowerShadow := minF(current.Open, current.Close) - current.Low
	if lowerShadow > body*2 && body/totalRange < 0.3 && closesFalling(bars) {
		return true
	}

	upperShadow := current.High - maxF(current.Open, current.Close)
	if upperShadow > body*2 && body/totalRange < 0.3 && closesRising(bars) {
		return true
	}

	return false
}

// closesRising reports whether the last 3 closes are strictly increasing.
func closesRising(bars []model.Bar) bool {
	n := len(bars)
	if n < 3 {
		return false
	}
	return bars[n-1].Close > bars[n-2].Close && bars[n-2].Close > bars[n-3].Close
}

// closesFalling reports whether the last 3 closes are strictly decreasing.
func closesFalling(bars []model.Bar) bool {
	n := len(bars)
	if n < 3 {
		return false
	}
	return bars[n-1].Close < bars[n-2].Close && bars[n-2].Close < bars[n-3].Close
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
