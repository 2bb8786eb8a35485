package analysis

import "PriceSentinel/internal/model"

const (
	pullbackMove       = 0.005 // rebound/decline beyond the second swing
	wedgeLookback      = 15
	wedgeConvergeFrac  = 0.010 // combined slope vs 15-bar range
	wedgeDivergeFrac   = 0.015
	trendlineBreakFrac = 0.005
	breakoutLookback   = 5 // bars a penetration may sit in the past
	reversalDropFrac   = 0.002
	levelLookback      = 20
)

// DetectTwoLegPullback looks for a two-leg retracement: a higher low with
// price rebounding at least 0.5% above it (bullish), or a lower high with
// price declining at least 0.5% below it (bearish).
func DetectTwoLegPullback(bars []model.Bar, current model.Bar, p Params) *model.TwoLegPullback {
	lows := SwingLows(bars, p.SwingDistance)
	if len(lows) >= 2 {
		first := lows[len(lows)-2].Price
		second := lows[len(lows)-1].Price
		if second > first && current.Close >= second*(1+pullbackMove) {
			return &model.TwoLegPullback{
				Direction: model.Bullish,
				Strength:  capped((current.Close - second) / second),
				Swing:     second,
			}
		}
	}

	highs := SwingHighs(bars, p.SwingDistance)
	if len(highs) >= 2 {
		first := highs[len(highs)-2].Price
		second := highs[len(highs)-1].Price
		if second < first && current.Close <= second*(1-pullbackMove) {
			return &model.TwoLegPullback{
				Direction: model.Bearish,
				Strength:  capped((second - current.Close) / second),
				Swing:     second,
			}
		}
	}

	return nil
}

// DetectWedge fits trendlines through the swing highs and lows of the
// last 15 bars. Converging: highs falling while lows rise, combined slope
// above 1% of the range. Diverging: the mirror shape above 1.5%.
func DetectWedge(bars []model.Bar, current model.Bar, p Params) *model.WedgePattern {
	if len(bars) < wedgeLookback {
		return nil
	}
	recent := bars[len(bars)-wedgeLookback:]

	highs := SwingHighs(recent, p.StructureWindow)
	lows := SwingLows(recent, p.StructureWindow)
	if len(highs) < 3 || len(lows) < 3 {
		return nil
	}

	highSlope := slopeOf(highs[len(highs)-2], highs[len(highs)-1])
	lowSlope := slopeOf(lows[len(lows)-2], lows[len(lows)-1])
	combined := absF(highSlope) + absF(lowSlope)

	rangeHigh, rangeLow := extremes(recent)
	priceRange := rangeHigh - rangeLow
	if priceRange == 0 {
		return nil
	}

	w := &model.WedgePattern{
		HighSlope: highSlope,
		LowSlope:  lowSlope,
		LastHigh:  highs[len(highs)-1].Price,
		LastLow:   lows[len(lows)-1].Price,
	}

	if highSlope < 0 && lowSlope > 0 && combined > priceRange*wedgeConvergeFrac {
		w.Kind = model.WedgeConverging
		return w
	}
	if highSlope > 0 && lowSlope < 0 && combined > priceRange*wedgeDivergeFrac {
		w.Kind = model.WedgeDiverging
		return w
	}
	return nil
}

// DetectKeyLevelTest counts how many swing levels of the last 20 bars sit
// within the tolerance band around the current price. Two hits make a
// test pattern, three a strong one.
func DetectKeyLevelTest(bars []model.Bar, current model.Bar, p Params) *model.KeyLevelTest {
	highs, lows := recentLevels(bars, p)
	if len(highs) == 0 && len(lows) == 0 {
		return nil
	}

	tolerance := current.Close * p.KeyLevelTolerance
	hits := 0
	nearest := 0.0
	nearestDist := -1.0
	nearestType := ""

	for _, s := range highs {
		d := absF(current.Close - s.Price)
		if d <= tolerance {
			hits++
			if nearestDist < 0 || d < nearestDist {
				nearest, nearestDist, nearestType = s.Price, d, "resistance"
			}
		}
	}
	for _, s := range lows {
		d := absF(current.Close - s.Price)
		if d <= tolerance {
			hits++
			if nearestDist < 0 || d < nearestDist {
				nearest, nearestDist, nearestType = s.Price, d, "support"
			}
		}
	}

	if hits < 2 {
		return nil
	}
	return &model.KeyLevelTest{
		LevelType: nearestType,
		Level:     nearest,
		Hits:      hits,
		Strong:    hits >= 3,
	}
}

// DetectTrendlineBreak projects the line through the last two swing lows
// (up-trendline) one step forward and flags a bearish break when price
// falls 0.5% below it. The mirror case through swing highs flags a
// bullish break above the down-trendline.
func DetectTrendlineBreak(bars []model.Bar, current model.Bar, p Params) *model.TrendlineBreak {
	n := len(bars)

	lows := SwingLows(bars, p.SwingDistance)
	if len(lows) >= 2 {
		a, b := lows[len(lows)-2], lows[len(lows)-1]
		if b.Price > a.Price { // rising lows form an up-trendline
			proj := projectLine(a, b, n-1)
			if proj > 0 && current.Close < proj*(1-trendlineBreakFrac) {
				return &model.TrendlineBreak{
					Direction: model.Bearish,
					Projected: proj,
					Strength:  (proj - current.Close) / proj,
				}
			}
		}
	}

	highs := SwingHighs(bars, p.SwingDistance)
	if len(highs) >= 2 {
		a, b := highs[len(highs)-2], highs[len(highs)-1]
		if b.Price < a.Price { // falling highs form a down-trendline
			proj := projectLine(a, b, n-1)
			if proj > 0 && current.Close > proj*(1+trendlineBreakFrac) {
				return &model.TrendlineBreak{
					Direction: model.Bullish,
					Projected: proj,
					Strength:  (current.Close - proj) / proj,
				}
			}
		}
	}

	return nil
}

// DetectFailedBreakout finds a false break: within the last 5 bars price
// penetrated a swing level by 0.1%-2% and the current bar, no more than
// 3 bars later, has reversed back through it by at least 0.2%.
func DetectFailedBreakout(bars []model.Bar, current model.Bar, p Params) *model.FailedBreakout {
	n := len(bars)
	if n < 2 {
		return nil
	}
	highs, lows := recentLevels(bars, p)

	scanStart := n - 1 - breakoutLookback
	if scanStart < 0 {
		scanStart = 0
	}

	// Break above resistance that fell back: bearish reversal.
	for _, s := range highs {
		level := s.Price
		if level <= 0 || current.Close > level*(1-reversalDropFrac) {
			continue
		}
		for j := scanStart; j < n-1; j++ {
			if j <= s.Index || n-1-j > p.ReversalBars {
				continue
			}
			pen := (bars[j].High - level) / level
			if pen >= p.PenetrationMin && pen <= p.PenetrationMax {
				return &model.FailedBreakout{Direction: model.Bearish, Level: level, Penetration: pen}
			}
		}
	}

	// Break below support that bounced back: bullish reversal.
	for _, s := range lows {
		level := s.Price
		if level <= 0 || current.Close < level*(1+reversalDropFrac) {
			continue
		}
		for j := scanStart; j < n-1; j++ {
			if j <= s.Index || n-1-j > p.ReversalBars {
				continue
			}
			pen := (level - bars[j].Low) / level
			if pen >= p.PenetrationMin && pen <= p.PenetrationMax {
				return &model.FailedBreakout{Direction: model.Bullish, Level: level, Penetration: pen}
			}
		}
	}

	return nil
}

// ConsecutivePattern reports a run of closes: a full 4-step run over the
// last 5 closes, or a 2-step run over the last 3.
func ConsecutivePattern(bars []model.Bar) string {
	n := len(bars)
	if n < 5 {
		return ""
	}

	rising, falling := true, true
	for i := n - 4; i < n; i++ {
		if bars[i].Close <= bars[i-1].Close {
			rising = false
		}
		if bars[i].Close >= bars[i-1].Close {
			falling = false
		}
	}
	if rising {
		return "consecutive_bull"
	}
	if falling {
		return "consecutive_bear"
	}

	if bars[n-1].Close > bars[n-2].Close && bars[n-2].Close > bars[n-3].Close {
		return "three_bull"
	}
	if bars[n-1].Close < bars[n-2].Close && bars[n-2].Close < bars[n-3].Close {
		return "three_bear"
	}
	return ""
}

// AtKeyLevel reports whether the current price is within tolerance of a
// swing level of the last 20 bars. The tolerance here is relative to the
// 20-bar range, so flat markets keep a tight band.
func AtKeyLevel(bars []model.Bar, current model.Bar, p Params) (bool, string) {
	n := len(bars)
	if n < levelLookback {
		return false, ""
	}
	highs, lows := recentLevels(bars, p)

	rangeHigh, rangeLow := extremes(bars[n-levelLookback:])
	tolerance := (rangeHigh - rangeLow) * p.KeyLevelTolerance

	for _, s := range highs {
		if absF(current.Close-s.Price) <= tolerance {
			return true, "resistance"
		}
	}
	for _, s := range lows {
		if absF(current.Close-s.Price) <= tolerance {
			return true, "support"
		}
	}
	return false, ""
}

// recentLevels returns the swing highs and lows falling inside the last
// 20 bars, with indices relative to the full bars slice.
func recentLevels(bars []model.Bar, p Params) (highs, lows []model.SwingPoint) {
	cutoff := len(bars) - levelLookback
	if cutoff < 0 {
		cutoff = 0
	}
	for _, s := range SwingHighs(bars, p.StructureWindow) {
		if s.Index >= cutoff {
			highs = append(highs, s)
		}
	}
	for _, s := range SwingLows(bars, p.StructureWindow) {
		if s.Index >= cutoff {
			lows = append(lows, s)
		}
	}
	return highs, lows
}

// projectLine extends the line through two swing points to index x.
func projectLine(a, b model.SwingPoint, x int) float64 {
	if b.Index == a.Index {
		return b.Price
	}
	slope := (b.Price - a.Price) / float64(b.Index-a.Index)
	return b.Price + slope*float64(x-b.Index)
}

func slopeOf(a, b model.SwingPoint) float64 {
	if b.Index == a.Index {
		return 0
	}
	return (b.Price - a.Price) / float64(b.Index-a.Index)
}

func extremes(bars []model.Bar) (high, low float64) {
	high, low = bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}

func capped(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
