package risk

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"PriceSentinel/internal/model"
)

// lowVolumeMark is appended to a signal's reason when its confidence was
// discounted for thin volume.
const lowVolumeMark = " (成交量偏低)"

// FilterParams tunes the risk filter.
type FilterParams struct {
	// VolatilityLimit rejects signals outright above this market volatility.
	VolatilityLimit float64
	// VolumeDiscount scales confidence down on low-volume bars.
	VolumeDiscount float64
	// Cooldown throttles repeated same-direction signals per symbol.
	Cooldown time.Duration
}

// DefaultFilterParams returns the stock limits.
func DefaultFilterParams() FilterParams {
	return FilterParams{
		VolatilityLimit: 5.0,
		VolumeDiscount:  0.7,
		Cooldown:        5 * time.Minute,
	}
}

type lastEmit struct {
	signalType model.SignalType
	at         time.Time
}

// Filter applies the risk checks in a fixed order: volatility rejection,
// low-volume discount, then same-direction throttling. It keeps the
// per-symbol emission history and is safe for concurrent use.
type Filter struct {
	p FilterParams

	mu   sync.Mutex
	last map[string]lastEmit
}

// NewFilter builds a Filter with the given limits.
func NewFilter(p FilterParams) *Filter {
	return &Filter{p: p, last: make(map[string]lastEmit)}
}

// Check runs the signal through the filter chain. The returned decision
// carries a nil Signal on rejection, with Reason explaining why. The
// input signal is never mutated; discounts produce a copy.
func (f *Filter) Check(sig *model.TradingSignal, mctx model.MarketContext) model.RiskDecision {
	if sig == nil {
		return model.RiskDecision{}
	}

	if mctx.Volatility > f.p.VolatilityLimit {
		return model.RiskDecision{
			Reason: fmt.Sprintf("市场波动率过高: %.2f > %.2f", mctx.Volatility, f.p.VolatilityLimit),
		}
	}

	out := *sig
	adjusted := false
	if mctx.VolumeProfile == model.VolumeLow {
		out.Confidence *= f.p.VolumeDiscount
		if !strings.HasSuffix(out.Reason, lowVolumeMark) {
			out.Reason += lowVolumeMark
		}
		adjusted = true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.last[out.Symbol]; ok {
		if prev.signalType == out.SignalType && out.Timestamp.Sub(prev.at) < f.p.Cooldown {
			return model.RiskDecision{
				Reason: fmt.Sprintf("信号节流: %s 方向 %s 信号间隔不足 %s", out.Symbol, out.SignalType, f.p.Cooldown),
			}
		}
	}
	f.last[out.Symbol] = lastEmit{signalType: out.SignalType, at: out.Timestamp}

	return model.RiskDecision{Signal: &out, Adjusted: adjusted}
}

// Reset clears the throttle history, for backtests reusing one filter.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = make(map[string]lastEmit)
}
