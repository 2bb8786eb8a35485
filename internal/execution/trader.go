package execution

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markcheno/go-talib"

	"PriceSentinel/internal/model"
	"PriceSentinel/internal/risk"
)

// Params tunes order generation.
type Params struct {
	// RiskFraction is the per-trade fraction of equity at risk.
	RiskFraction float64
	// MinConfidence gates execution; weaker signals are observed only.
	MinConfidence float64
	// ATRPeriod/ATRMultiple derive the protective stop distance.
	ATRPeriod   int
	ATRMultiple float64
	// FallbackStopPct is the stop distance when ATR has too little history.
	FallbackStopPct float64
}

// DefaultParams returns the stock execution settings.
func DefaultParams() Params {
	return Params{
		RiskFraction:    0.01,
		MinConfidence:   0.6,
		ATRPeriod:       14,
		ATRMultiple:     2.0,
		FallbackStopPct: 0.01,
	}
}

// Order is an executable instruction derived from an accepted signal.
// Fraction is relative to account equity, not a share count.
type Order struct {
	ID        uuid.UUID
	Symbol    string
	Side      model.SignalType
	Fraction  float64
	Price     float64
	Stop      float64 // 0 on sells
	Timestamp time.Time
	Reason    string
}

// Trader converts accepted signals into orders with delta position
// semantics: buys only add the shortfall up to the target size, sells
// flatten the whole position. Position state is per symbol.
type Trader struct {
	p Params

	mu        sync.Mutex
	positions map[string]float64
}

// NewTrader creates a Trader with empty positions.
func NewTrader(p Params) *Trader {
	return &Trader{p: p, positions: make(map[string]float64)}
}

// HandleSignal turns a signal into an order, or nil when nothing should
// trade: confidence below the gate, a buy already at target size, or a
// sell with no position. The bars slice provides the ATR history.
func (t *Trader) HandleSignal(sig *model.TradingSignal, bars []model.Bar) *Order {
	if sig == nil || sig.Confidence < t.p.MinConfidence {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch sig.SignalType {
	case model.SignalBuy:
		return t.buyOrder(sig, bars)
	case model.SignalSell:
		return t.sellOrder(sig)
	default:
		log.Printf("[WARN] 未知信号类型 %s, 忽略", sig.SignalType)
		return nil
	}
}

func (t *Trader) buyOrder(sig *model.TradingSignal, bars []model.Bar) *Order {
	stop := t.stopPrice(sig.Price, bars)
	target := risk.PositionSize(t.p.RiskFraction, sig.Price, stop)
	if target <= 0 {
		return nil
	}

	held := t.positions[sig.Symbol]
	delta := target - held
	if delta <= 0 {
		log.Printf("[INFO] %s 已持有目标仓位 %.4f, 跳过加仓", sig.Symbol, held)
		return nil
	}

	t.positions[sig.Symbol] = target
	return &Order{
		ID:        uuid.New(),
		Symbol:    sig.Symbol,
		Side:      model.SignalBuy,
		Fraction:  delta,
		Price:     sig.Price,
		Stop:      stop,
		Timestamp: sig.Timestamp,
		Reason:    sig.Reason,
	}
}

func (t *Trader) sellOrder(sig *model.TradingSignal) *Order {
	held := t.positions[sig.Symbol]
	if held <= 0 {
		return nil
	}

	t.positions[sig.Symbol] = 0
	return &Order{
		ID:        uuid.New(),
		Symbol:    sig.Symbol,
		Side:      model.SignalSell,
		Fraction:  held,
		Price:     sig.Price,
		Timestamp: sig.Timestamp,
		Reason:    sig.Reason,
	}
}

// stopPrice places the stop an ATR multiple below entry, falling back to
// a fixed percentage when the history cannot seed the ATR.
func (t *Trader) stopPrice(entry float64, bars []model.Bar) float64 {
	if len(bars) > t.p.ATRPeriod {
		highs := make([]float64, len(bars))
		lows := make([]float64, len(bars))
		closes := make([]float64, len(bars))
		for i, b := range bars {
			highs[i] = b.High
			lows[i] = b.Low
			closes[i] = b.Close
		}
		atr := talib.Atr(highs, lows, closes, t.p.ATRPeriod)
		if last := atr[len(atr)-1]; last > 0 {
			stop := entry - last*t.p.ATRMultiple
			if stop > 0 {
				return stop
			}
		}
	}
	return entry * (1 - t.p.FallbackStopPct)
}

// Position returns the held fraction for a symbol.
func (t *Trader) Position(symbol string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positions[symbol]
}

// Positions returns a copy of all open positions.
func (t *Trader) Positions() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, len(t.positions))
	for k, v := range t.positions {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}
