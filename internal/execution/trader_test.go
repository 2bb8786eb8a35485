package execution

import (
	"testing"
	"time"

	"PriceSentinel/internal/model"
)

func trendBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.5*float64(i)
		bars[i] = model.Bar{Symbol: "SPY", Open: c - 0.4, High: c + 0.05, Low: c - 0.45, Close: c, Volume: 1000}
	}
	return bars
}

func buySignal(price float64) *model.TradingSignal {
	return &model.TradingSignal{
		Symbol:     "SPY",
		SignalType: model.SignalBuy,
		Confidence: 0.80,
		Price:      price,
		Timestamp:  time.Now(),
		Reason:     "breakout + uptrend",
	}
}

func TestHandleSignal_BuyThenFlatten(t *testing.T) {
	tr := NewTrader(DefaultParams())
	bars := trendBars(30)
	price := bars[29].Close

	order := tr.HandleSignal(buySignal(price), bars)
	if order == nil {
		t.Fatal("expected a buy order")
	}
	if order.Side != model.SignalBuy {
		t.Errorf("expected BUY, got %s", order.Side)
	}
	if order.Fraction <= 0 || order.Fraction > 1 {
		t.Fatalf("fraction out of range: %.4f", order.Fraction)
	}
	if order.Stop <= 0 || order.Stop >= price {
		t.Errorf("stop %.2f should sit below entry %.2f", order.Stop, price)
	}
	if got := tr.Position("SPY"); got != order.Fraction {
		t.Errorf("position %.4f, want %.4f", got, order.Fraction)
	}

	sell := buySignal(price + 1)
	sell.SignalType = model.SignalSell
	flat := tr.HandleSignal(sell, bars)
	if flat == nil {
		t.Fatal("expected a sell order")
	}
	if flat.Fraction != order.Fraction {
		t.Errorf("sell fraction %.4f, want the full position %.4f", flat.Fraction, order.Fraction)
	}
	if tr.Position("SPY") != 0 {
		t.Errorf("position should be flat, got %.4f", tr.Position("SPY"))
	}
}

func TestHandleSignal_RepeatBuyAddsNothing(t *testing.T) {
	tr := NewTrader(DefaultParams())
	bars := trendBars(30)
	sig := buySignal(bars[29].Close)

	if tr.HandleSignal(sig, bars) == nil {
		t.Fatal("expected the first buy order")
	}
	if order := tr.HandleSignal(sig, bars); order != nil {
		t.Errorf("already at target size, expected nil, got %+v", order)
	}
}

func TestHandleSignal_SellWithoutPosition(t *testing.T) {
	tr := NewTrader(DefaultParams())
	sell := buySignal(100)
	sell.SignalType = model.SignalSell

	if order := tr.HandleSignal(sell, trendBars(30)); order != nil {
		t.Errorf("nothing to flatten, expected nil, got %+v", order)
	}
}

func TestHandleSignal_ConfidenceGate(t *testing.T) {
	tr := NewTrader(DefaultParams())
	sig := buySignal(100)
	sig.Confidence = 0.55

	if order := tr.HandleSignal(sig, trendBars(30)); order != nil {
		t.Errorf("expected nil below the confidence gate, got %+v", order)
	}
	if order := tr.HandleSignal(nil, trendBars(30)); order != nil {
		t.Errorf("expected nil for nil signal, got %+v", order)
	}
}

func TestHandleSignal_FallbackStopOnShortHistory(t *testing.T) {
	tr := NewTrader(DefaultParams())
	order := tr.HandleSignal(buySignal(100), trendBars(5))
	if order == nil {
		t.Fatal("expected an order with the fallback stop")
	}
	want := 100 * 0.99
	if diff := order.Stop - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("fallback stop %.4f, want %.4f", order.Stop, want)
	}
}

func TestPositions_CopyOnly(t *testing.T) {
	tr := NewTrader(DefaultParams())
	tr.HandleSignal(buySignal(trendBars(30)[29].Close), trendBars(30))

	snap := tr.Positions()
	if len(snap) != 1 {
		t.Fatalf("expected one position, got %d", len(snap))
	}
	snap["SPY"] = 99
	if tr.Position("SPY") == 99 {
		t.Error("mutating the snapshot must not touch the trader state")
	}
}
