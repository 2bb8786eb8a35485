package analysis

import (
	"testing"

	"PriceSentinel/internal/model"
)

func barsWithCloses(closes ...float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Open: c - 0.1, High: c + 0.2, Low: c - 0.3, Close: c, Volume: 1000}
	}
	return bars
}

func TestClassifyBarQuality_StrongBull(t *testing.T) {
	bars := barsWithCloses(100, 100.5, 101)
	current := model.Bar{Open: 100, High: 101.05, Low: 99.95, Close: 101, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got != model.StrongBull {
		t.Errorf("expected strong_bull, got %s", got)
	}
}

func TestClassifyBarQuality_WeakBull(t *testing.T) {
	// Long upper shadow keeps the body ratio below the strong threshold.
	bars := barsWithCloses(100, 100.5, 101)
	current := model.Bar{Open: 100, High: 102, Low: 99.8, Close: 100.8, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got != model.WeakBull {
		t.Errorf("expected weak_bull, got %s", got)
	}
}

func TestClassifyBarQuality_StrongBear(t *testing.T) {
	bars := barsWithCloses(101, 100.5, 100)
	current := model.Bar{Open: 101, High: 101.05, Low: 99.95, Close: 100, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got != model.StrongBear {
		t.Errorf("expected strong_bear, got %s", got)
	}
}

func TestClassifyBarQuality_Doji(t *testing.T) {
	// Range 1.0 with body 0.05: body ratio 5%, well under the 10% cutoff.
	bars := barsWithCloses(100, 100, 100)
	current := model.Bar{Open: 100.00, High: 100.55, Low: 99.55, Close: 100.05, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got != model.Doji {
		t.Errorf("expected doji, got %s", got)
	}
}

func TestClassifyBarQuality_ZeroRangeIsDoji(t *testing.T) {
	bars := barsWithCloses(100, 100, 100)
	current := model.Bar{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000}

	if got := ClassifyBarQuality(bars, current); got != model.Doji {
		t.Errorf("expected doji for zero-range bar, got %s", got)
	}
}

func TestClassifyBarQuality_HammerReversal(t *testing.T) {
	// Falling closes, then a small body with a long lower shadow.
	bars := barsWithCloses(102, 101, 100)
	bars = append(bars, model.Bar{Open: 100.1, High: 100.25, Low: 99.0, Close: 99.9})
	current := model.Bar{Open: 100.1, High: 100.25, Low: 99.0, Close: 99.9, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got != model.Reversal {
		t.Errorf("expected reversal, got %s", got)
	}
}

func TestClassifyBarQuality_HangingManReversal(t *testing.T) {
	bars := barsWithCloses(100, 101, 102)
	bars = append(bars, model.Bar{Open: 102, High: 103.3, Low: 101.9, Close: 102.2})
	current := model.Bar{Open: 102, High: 103.3, Low: 101.9, Close: 102.2, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got != model.Reversal {
		t.Errorf("expected reversal, got %s", got)
	}
}

func TestClassifyBarQuality_NoReversalWithoutTrend(t *testing.T) {
	// Same hammer shape but flat closes: stays a weak bar.
	bars := barsWithCloses(100, 100, 100)
	current := model.Bar{Open: 100.1, High: 100.25, Low: 99.0, Close: 99.9, Volume: 1000}

	got := ClassifyBarQuality(bars, current)
	if got == model.Reversal {
		t.Error("reversal should require a directional close sequence")
	}
}
