package analysis

import (
	"testing"

	"PriceSentinel/internal/model"
)

// twoLegBars builds a bullish two-leg shape: a low at 95 (bar 8), a
// higher low near 97.1 (bar 20), then a rebound.
func twoLegBars() []model.Bar {
	lows := make([]float64, 30)
	for i := 0; i <= 8; i++ {
		lows[i] = 101 - 0.75*float64(i)
	}
	for i := 9; i <= 14; i++ {
		lows[i] = 95 + 0.8*float64(i-8)
	}
	for i := 15; i <= 20; i++ {
		lows[i] = 99.8 - 0.45*float64(i-14)
	}
	for i := 21; i < 30; i++ {
		lows[i] = 97.1 + 0.5*float64(i-20)
	}

	bars := make([]model.Bar, 30)
	for i, lo := range lows {
		bars[i] = model.Bar{Open: lo + 0.3, High: lo + 1.2, Low: lo, Close: lo + 0.5, Volume: 1000}
	}
	return bars
}

func TestDetectTwoLegPullback_Bullish(t *testing.T) {
	bars := twoLegBars()
	current := bars[len(bars)-1]

	pb := DetectTwoLegPullback(bars, current, DefaultParams())
	if pb == nil {
		t.Fatal("expected a pullback")
	}
	if pb.Direction != model.Bullish {
		t.Errorf("expected bullish, got %s", pb.Direction)
	}
	if pb.Swing != 97.1 {
		t.Errorf("expected swing at 97.1, got %.2f", pb.Swing)
	}
	if pb.Strength <= 0 || pb.Strength > 1 {
		t.Errorf("strength out of range: %.3f", pb.Strength)
	}
}

func TestDetectTwoLegPullback_NoReboundNoPattern(t *testing.T) {
	bars := twoLegBars()
	// Price sitting on the second low: below the 0.5% rebound bar.
	current := bars[len(bars)-1]
	current.Close = 97.3

	if pb := DetectTwoLegPullback(bars, current, DefaultParams()); pb != nil {
		t.Errorf("expected nil without a rebound, got %+v", pb)
	}
}

func TestDetectWedge_Converging(t *testing.T) {
	highs := []float64{108, 109, 110, 109, 108, 107, 108.5, 107, 106, 105, 106.5, 105, 104.5, 104, 104.8}
	lows := []float64{103, 102, 101.5, 101, 100, 100.5, 101.2, 101, 100.8, 101.4, 102, 101.6, 101.2, 101.8, 102.5}

	bars := make([]model.Bar, 15)
	for i := range bars {
		mid := (highs[i] + lows[i]) / 2
		bars[i] = model.Bar{Open: mid - 0.1, High: highs[i], Low: lows[i], Close: mid, Volume: 1000}
	}
	current := bars[len(bars)-1]

	w := DetectWedge(bars, current, DefaultParams())
	if w == nil {
		t.Fatal("expected a wedge")
	}
	if w.Kind != model.WedgeConverging {
		t.Errorf("expected converging, got %s", w.Kind)
	}
	if w.HighSlope >= 0 || w.LowSlope <= 0 {
		t.Errorf("expected falling highs and rising lows, got %.3f/%.3f", w.HighSlope, w.LowSlope)
	}
}

func TestDetectWedge_Diverging(t *testing.T) {
	// Rising swing highs at 107/108.5/110 against falling swing lows at
	// 99/97.5/95: the range expands on both sides.
	highs := []float64{105, 106, 107, 106, 105, 106, 108.5, 106, 105.5, 107, 110, 107, 106, 106.5, 107}
	lows := []float64{101, 100, 99, 100, 101, 100, 97.5, 100, 100.5, 99, 95, 99, 100, 99.5, 99}

	bars := make([]model.Bar, 15)
	for i := range bars {
		mid := (highs[i] + lows[i]) / 2
		bars[i] = model.Bar{Open: mid - 0.1, High: highs[i], Low: lows[i], Close: mid, Volume: 1000}
	}
	current := bars[len(bars)-1]

	w := DetectWedge(bars, current, DefaultParams())
	if w == nil {
		t.Fatal("expected a wedge")
	}
	if w.Kind != model.WedgeDiverging {
		t.Errorf("expected diverging, got %s", w.Kind)
	}
	if w.HighSlope <= 0 || w.LowSlope >= 0 {
		t.Errorf("expected rising highs and falling lows, got %.3f/%.3f", w.HighSlope, w.LowSlope)
	}
}

func TestDetectWedge_FlatIsNotAWedge(t *testing.T) {
	bars := flatBars(15, 100)
	if w := DetectWedge(bars, bars[14], DefaultParams()); w != nil {
		t.Errorf("expected nil for flat market, got %+v", w)
	}
}

func TestDetectKeyLevelTest_TightRangeHits(t *testing.T) {
	// Swing highs at 100.3 and swing lows at 99.8, price at 100:
	// both sides inside the 0.5% band.
	bars := make([]model.Bar, 25)
	for i := range bars {
		bars[i] = model.Bar{Open: 100, High: 100.3, Low: 99.8, Close: 100, Volume: 1000}
	}
	current := bars[len(bars)-1]

	kt := DetectKeyLevelTest(bars, current, DefaultParams())
	if kt == nil {
		t.Fatal("expected a key level test")
	}
	if !kt.Strong {
		t.Error("expected a strong test with many hits")
	}
	if kt.LevelType != "support" {
		t.Errorf("nearest level should be support, got %s", kt.LevelType)
	}
}

func TestDetectKeyLevelTest_WideRangeNoHits(t *testing.T) {
	bars := flatBars(25, 100) // levels 101/99, 1% away from price
	if kt := DetectKeyLevelTest(bars, bars[24], DefaultParams()); kt != nil {
		t.Errorf("expected nil outside tolerance, got %+v", kt)
	}
}

func TestDetectTrendlineBreak_Bearish(t *testing.T) {
	bars := twoLegBars()
	// Lows at (8, 95) and (20, 97.1) project to ~98.7 at the last
	// bar; a close below the 0.5% band breaks the up-trendline.
	current := bars[len(bars)-1]
	current.Close = 98.0
	current.Low = 97.8
	bars[len(bars)-1] = current

	tb := DetectTrendlineBreak(bars, current, DefaultParams())
	if tb == nil {
		t.Fatal("expected a trendline break")
	}
	if tb.Direction != model.Bearish {
		t.Errorf("expected bearish, got %s", tb.Direction)
	}
	if tb.Projected <= current.Close {
		t.Errorf("projection should sit above the close, got %.2f", tb.Projected)
	}
	if tb.Strength <= 0 {
		t.Errorf("expected positive strength, got %.3f", tb.Strength)
	}
}

func TestDetectTrendlineBreak_HoldingTrendNoBreak(t *testing.T) {
	bars := twoLegBars()
	if tb := DetectTrendlineBreak(bars, bars[len(bars)-1], DefaultParams()); tb != nil {
		t.Errorf("expected nil while the trendline holds, got %+v", tb)
	}
}

func TestDetectFailedBreakout_Bearish(t *testing.T) {
	bars := flatBars(26, 100) // resistance at 101
	// One bar ago price poked 0.5% above the level, current bar is
	// back below it.
	bars[24].High = 101.505
	bars[24].Close = 100.5
	bars[25].Close = 100
	current := bars[25]

	fb := DetectFailedBreakout(bars, current, DefaultParams())
	if fb == nil {
		t.Fatal("expected a failed breakout")
	}
	if fb.Direction != model.Bearish {
		t.Errorf("expected bearish, got %s", fb.Direction)
	}
	if fb.Level != 101 {
		t.Errorf("expected level 101, got %.2f", fb.Level)
	}
}

func TestDetectFailedBreakout_Bullish(t *testing.T) {
	bars := flatBars(26, 100) // support at 99
	// One bar ago price dipped 0.5% below the level, current bar has
	// bounced back above it.
	bars[24].Low = 98.505
	bars[24].Close = 99.5
	bars[25].Close = 100
	current := bars[25]

	fb := DetectFailedBreakout(bars, current, DefaultParams())
	if fb == nil {
		t.Fatal("expected a failed breakout")
	}
	if fb.Direction != model.Bullish {
		t.Errorf("expected bullish, got %s", fb.Direction)
	}
	if fb.Level != 99 {
		t.Errorf("expected level 99, got %.2f", fb.Level)
	}
	if fb.Penetration < 0.001 || fb.Penetration > 0.02 {
		t.Errorf("penetration out of bounds: %.4f", fb.Penetration)
	}
}

func TestDetectFailedBreakout_TooDeepIsNoFailure(t *testing.T) {
	bars := flatBars(26, 100)
	// 3% beyond the level: a real breakout, not a poke.
	bars[24].High = 104.03
	bars[24].Close = 103
	bars[25].Close = 100
	current := bars[25]

	if fb := DetectFailedBreakout(bars, current, DefaultParams()); fb != nil {
		t.Errorf("expected nil for deep penetration, got %+v", fb)
	}
}

func TestConsecutivePattern(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   string
	}{
		{"four rising", []float64{100, 101, 102, 103, 104}, "consecutive_bull"},
		{"four falling", []float64{104, 103, 102, 101, 100}, "consecutive_bear"},
		{"three rising", []float64{100, 99, 100, 101, 102}, "three_bull"},
		{"three falling", []float64{100, 103, 102, 101, 100.5}, "three_bear"},
		{"choppy", []float64{100, 101, 100, 101, 100}, ""},
		{"too short", []float64{100, 101}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsecutivePattern(barsWithCloses(tt.closes...)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAtKeyLevel(t *testing.T) {
	bars := make([]model.Bar, 25)
	for i := range bars {
		bars[i] = model.Bar{Open: 100, High: 100.3, Low: 99.8, Close: 100, Volume: 1000}
	}

	// Exactly on the resistance level.
	current := bars[24]
	current.Close = 100.3
	at, levelType := AtKeyLevel(bars, current, DefaultParams())
	if !at || levelType != "resistance" {
		t.Errorf("expected resistance hit, got %v/%s", at, levelType)
	}

	// Mid-range: the tolerance is relative to the 0.5 range, so 100
	// is nowhere near either level.
	current.Close = 100
	at, _ = AtKeyLevel(bars, current, DefaultParams())
	if at {
		t.Error("expected no key level at mid-range")
	}
}
