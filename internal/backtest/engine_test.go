package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/pipeline"
)

func trendBars(n int) []model.Bar {
	t0 := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.5*float64(i)
		o := c - 0.4
		bars[i] = model.Bar{
			Symbol:    "SPY",
			Timestamp: t0.Add(time.Duration(i) * 6 * time.Minute),
			Open:      o,
			High:      c + 0.05,
			Low:       o - 0.05,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestRun_UptrendIsProfitable(t *testing.T) {
	bars := trendBars(40)
	res := Run("SPY", bars, pipeline.Options{}, execution.DefaultParams())

	if res.Bars != 40 {
		t.Errorf("bars %d, want 40", res.Bars)
	}
	if res.Signals == 0 {
		t.Fatal("expected signals in a steady uptrend")
	}
	if len(res.Orders) == 0 {
		t.Fatal("expected at least one order")
	}
	if res.Orders[0].Side != model.SignalBuy {
		t.Errorf("first order should be a buy, got %s", res.Orders[0].Side)
	}
	if res.Return <= 0 {
		t.Errorf("buying a rising market should profit, return %.4f", res.Return)
	}
}

func TestWinRate(t *testing.T) {
	if got := (Result{}).WinRate(); got != 0 {
		t.Errorf("no closed lots should give 0, got %.2f", got)
	}
	if got := (Result{Wins: 3, Losses: 1}).WinRate(); got != 0.75 {
		t.Errorf("win rate %.2f, want 0.75", got)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	res := Run("SPY", nil, pipeline.Options{}, execution.DefaultParams())
	if res.Bars != 0 || res.Signals != 0 || len(res.Orders) != 0 {
		t.Errorf("expected an empty result, got %+v", res)
	}
}

func TestLoadCSV(t *testing.T) {
	content := "timestamp,open,high,low,close,volume\n" +
		"2025-06-02T14:30:00Z,100,101,99.5,100.5,1200\n" +
		"1748874600,100.5,101.5,100,101,1300\n" +
		"2025-06-02T14:32:00Z,bad,101,100,101,1300\n" +
		"2025-06-02T14:33:00Z,101,102,100.5,101.5,900\n"

	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	bars, err := LoadCSV(path, "SPY")
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	// The malformed row is skipped, not fatal.
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Symbol != "SPY" || bars[0].Close != 100.5 {
		t.Errorf("unexpected first bar: %+v", bars[0])
	}
	if bars[1].Timestamp.Unix() != 1748874600 {
		t.Errorf("unix timestamp not parsed: %v", bars[1].Timestamp)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	if _, err := LoadCSV("no/such/file.csv", "SPY"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
