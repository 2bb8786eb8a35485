package analysis

import "PriceSentinel/internal/model"

const (
	structureLookback = 20  // bars scanned for peaks/valleys
	strongTrendMin    = 0.6 // strength above which a peak/valley trend is strong
	emaStrongMin      = 0.5 // strength above which an EMA-method trend is strong
	emaDeviation      = 0.001
	shortDeviation    = 0.002
)

// ClassifyStructure classifies the multi-bar trend state and returns the
// trend strength in [0,1]. It degrades gracefully on short history:
// below 5 bars it reports a flat trading range, below 10 a simplified
// mean-deviation check, below 20 the EMA method, and with a full lookback
// the peak/valley sequence with the EMA method as tiebreaker.
func ClassifyStructure(bars []model.Bar, p Params) (model.MarketStructure, float64) {
	n := len(bars)
	if n < 5 {
		return model.TradingRange, 0
	}
	if n < 10 {
		return shortHistoryStructure(bars)
	}
	if n < structureLookback {
		return emaStructure(bars)
	}

	recent := bars[n-structureLookback:]
	highs := make([]float64, structureLookback)
	lows := make([]float64, structureLookback)
	for i, b := range recent {
		highs[i] = b.High
		lows[i] = b.Low
	}

	peaks := localPeaks(highs, p.StructureWindow)
	valleys := localValleys(lows, p.StructureWindow)
	if len(peaks) < 2 || len(valleys) < 2 {
		return emaStructure(bars)
	}

	higherHighs := peaks[len(peaks)-1] > peaks[len(peaks)-2]
	higherLows := valleys[len(valleys)-1] > valleys[len(valleys)-2]
	lowerHighs := peaks[len(peaks)-1] < peaks[len(peaks)-2]
	lowerLows := valleys[len(valleys)-1] < valleys[len(valleys)-2]

	strength := trendStrength(bars)

	switch {
	case higherHighs && higherLows:
		if strength > strongTrendMin {
			return model.StrongTrendUp, strength
		}
		return model.WeakTrendUp, strength
	case lowerHighs && lowerLows:
		if strength > strongTrendMin {
			return model.StrongTrendDown, strength
		}
		return model.WeakTrendDown, strength
	default:
		return emaStructure(bars)
	}
}

// trendStrength measures the last-10-bar move against the 20-bar range.
func trendStrength(bars []model.Bar) float64 {
	n := len(bars)
	recent := bars[n-structureLookback:]

	high := recent[0].High
	low := recent[0].Low
	for _, b := range recent[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	priceRange := high - low
	if priceRange == 0 {
		return 0
	}

	move := bars[n-1].Close - bars[n-10].Close
	if move < 0 {
		move = -move
	}
	strength := move / priceRange
	if strength > 1 {
		strength = 1
	}
	return strength
}

// emaStructure is the fallback used when the peak/valley sequence is
// ambiguous or the history is between 10 and 19 bars: a 20-period EMA
// with crossing-count range detection.
func emaStructure(bars []model.Bar) (model.MarketStructure, float64) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	ema := ewmMean(closes, 20)

	// Three or more crossings of close-EMA over the last 10 bars means
	// price is oscillating around the average.
	n := len(closes)
	start := n - 10
	crossings := 0
	for i := start + 1; i < n; i++ {
		prev := closes[i-1] - ema[i-1]
		cur := closes[i] - ema[i]
		if (prev > 0 && cur < 0) || (prev < 0 && cur > 0) {
			crossings++
		}
	}

	dev := 0.0
	if ema[n-1] != 0 {
		dev = (closes[n-1] - ema[n-1]) / ema[n-1]
	}
	strength := scaledStrength(dev)

	if crossings >= 3 {
		return model.TradingRange, strength
	}

	switch {
	case dev > emaDeviation:
		if strength > emaStrongMin {
			return model.StrongTrendUp, strength
		}
		return model.WeakTrendUp, strength
	case dev < -emaDeviation:
		if strength > emaStrongMin {
			return model.StrongTrendDown, strength
		}
		return model.WeakTrendDown, strength
	default:
		return model.TradingRange, strength
	}
}

// shortHistoryStructure handles 5-9 bars: plain mean with wider 0.2%
// thresholds, weak classifications only.
func shortHistoryStructure(bars []model.Bar) (model.MarketStructure, float64) {
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	mean := sum / float64(len(bars))
	if mean == 0 {
		return model.TradingRange, 0
	}

	dev := (bars[len(bars)-1].Close - mean) / mean
	strength := scaledStrength(dev)

	switch {
	case dev > shortDeviation:
		return model.WeakTrendUp, strength
	case dev < -shortDeviation:
		return model.WeakTrendDown, strength
	default:
		return model.TradingRange, strength
	}
}

// scaledStrength maps a relative deviation to [0,1] (x10 scaling).
func scaledStrength(dev float64) float64 {
	if dev < 0 {
		dev = -dev
	}
	s := dev * 10
	if s > 1 {
		s = 1
	}
	return s
}

// ewmMean computes a pandas-style exponentially weighted mean
// (span=period, adjust=false). Unlike a classic SMA-seeded EMA it is
// defined from the very first element, which the degraded-history paths
// rely on.
func ewmMean(src []float64, period int) []float64 {
	out := make([]float64, len(src))
	if len(src) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = src[0]
	for i := 1; i < len(src); i++ {
		out[i] = alpha*src[i] + (1-alpha)*out[i-1]
	}
	return out
}

// localPeaks returns the values of points that are >= every point within
// window bars on both sides.
func localPeaks(data []float64, window int) []float64 {
	var peaks []float64
	for i := window; i < len(data)-window; i++ {
		if isExtreme(data, i, window, func(a, b float64) bool { return a >= b }) {
			peaks = append(peaks, data[i])
		}
	}
	return peaks
}

// localValleys returns the values of points that are <= every point
// within window bars on both sides.
func localValleys(data []float64, window int) []float64 {
	var valleys []float64
	for i := window; i < len(data)-window; i++ {
		if isExtreme(data, i, window, func(a, b float64) bool { return a <= b }) {
			valleys = append(valleys, data[i])
		}
	}
	return valleys
}

func isExtreme(data []float64, i, window int, cmp func(a, b float64) bool) bool {
	for j := 1; j <= window; j++ {
		if !cmp(data[i], data[i-j]) || !cmp(data[i], data[i+j]) {
			return false
		}
	}
	return true
}
