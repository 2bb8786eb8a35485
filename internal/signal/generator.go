package signal

import (
	"strings"
	"time"

	"PriceSentinel/internal/analysis"
	"PriceSentinel/internal/model"
)

const (
	breakoutLookback = 5

	confBreakoutTrend = 0.80
	confBreakoutRange = 0.60
	confPullback      = 0.75
	confWedge         = 0.72
	confTrendline     = 0.70
	confFailedBreak   = 0.68
	confKeyLevel      = 0.65
	confKeyLevelHard  = 0.70
	confReversalBar   = 0.70

	minBreakoutVolatility = 1.0
)

// Generator turns a price-action context into at most one trading
// signal per bar. Setups are checked in a fixed precedence order;
// the first match wins.
type Generator struct {
	p analysis.Params
}

// NewGenerator builds a Generator sharing the analyzer's thresholds.
func NewGenerator(p analysis.Params) *Generator {
	return &Generator{p: p}
}

// Generate evaluates the setups against the current bar. The bars slice
// is the oldest-first window snapshot including current; it returns nil
// when no setup fires.
func (g *Generator) Generate(bars []model.Bar, current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	if sig := g.breakoutSignal(bars, current, mctx); sig != nil {
		return sig
	}
	if sig := g.pullbackSignal(current, ctx, mctx); sig != nil {
		return sig
	}
	if sig := g.wedgeSignal(current, ctx, mctx); sig != nil {
		return sig
	}
	if sig := g.trendlineSignal(current, ctx, mctx); sig != nil {
		return sig
	}
	if sig := g.failedBreakoutSignal(current, ctx, mctx); sig != nil {
		return sig
	}
	if sig := g.keyLevelSignal(current, ctx, mctx); sig != nil {
		return sig
	}
	return g.reversalBarSignal(current, ctx, mctx)
}

// breakoutSignal fires when the close clears the extreme of the 5 bars
// preceding the current one, with trend alignment, decent volume, and
// enough volatility to carry the move.
func (g *Generator) breakoutSignal(bars []model.Bar, current model.Bar, mctx model.MarketContext) *model.TradingSignal {
	n := len(bars)
	if n < breakoutLookback+1 {
		return nil
	}
	if mctx.Volatility <= minBreakoutVolatility {
		return nil
	}
	if mctx.VolumeProfile != model.VolumeHigh && mctx.VolumeProfile != model.VolumeNormal {
		return nil
	}

	prior := bars[n-1-breakoutLookback : n-1]
	maxHigh, minLow := prior[0].High, prior[0].Low
	for _, b := range prior[1:] {
		if b.High > maxHigh {
			maxHigh = b.High
		}
		if b.Low < minLow {
			minLow = b.Low
		}
	}

	confidence := confBreakoutRange
	if mctx.Trend == "UPTREND" || mctx.Trend == "DOWNTREND" {
		confidence = confBreakoutTrend
	}

	if current.Close > maxHigh && mctx.Trend != "DOWNTREND" {
		return g.signal(current, model.SignalBuy, confidence, "breakout", mctx)
	}
	if current.Close < minLow && mctx.Trend != "UPTREND" {
		return g.signal(current, model.SignalSell, confidence, "breakout", mctx)
	}
	return nil
}

// pullbackSignal trades a two-leg pullback only with the trend.
func (g *Generator) pullbackSignal(current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	pb := ctx.TwoLegPullback
	if pb == nil {
		return nil
	}
	if pb.Direction == model.Bullish && mctx.Trend == "UPTREND" {
		return g.signal(current, model.SignalBuy, confPullback, "two-leg pullback", mctx)
	}
	if pb.Direction == model.Bearish && mctx.Trend == "DOWNTREND" {
		return g.signal(current, model.SignalSell, confPullback, "two-leg pullback", mctx)
	}
	return nil
}

// wedgeSignal trades the break out of a converging wedge.
func (g *Generator) wedgeSignal(current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	w := ctx.Wedge
	if w == nil || w.Kind != model.WedgeConverging {
		return nil
	}
	if current.Close > w.LastHigh {
		return g.signal(current, model.SignalBuy, confWedge, "wedge breakout", mctx)
	}
	if current.Close < w.LastLow {
		return g.signal(current, model.SignalSell, confWedge, "wedge breakout", mctx)
	}
	return nil
}

func (g *Generator) trendlineSignal(current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	tb := ctx.TrendlineBreak
	if tb == nil {
		return nil
	}
	if tb.Direction == model.Bullish {
		return g.signal(current, model.SignalBuy, confTrendline, "trendline break", mctx)
	}
	return g.signal(current, model.SignalSell, confTrendline, "trendline break", mctx)
}

func (g *Generator) failedBreakoutSignal(current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	fb := ctx.FailedBreakout
	if fb == nil {
		return nil
	}
	if fb.Direction == model.Bullish {
		return g.signal(current, model.SignalBuy, confFailedBreak, "failed breakout", mctx)
	}
	return g.signal(current, model.SignalSell, confFailedBreak, "failed breakout", mctx)
}

// keyLevelSignal trades a tested level when the current bar agrees with
// the bounce direction. Strong tests (3+ hits) earn a higher confidence.
func (g *Generator) keyLevelSignal(current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	t := ctx.Test
	if t == nil {
		return nil
	}
	confidence := confKeyLevel
	if t.Strong {
		confidence = confKeyLevelHard
	}

	bullishBar := ctx.BarQuality == model.StrongBull || ctx.BarQuality == model.WeakBull
	bearishBar := ctx.BarQuality == model.StrongBear || ctx.BarQuality == model.WeakBear

	if t.LevelType == "support" && bullishBar {
		return g.signal(current, model.SignalBuy, confidence, "key level test", mctx)
	}
	if t.LevelType == "resistance" && bearishBar {
		return g.signal(current, model.SignalSell, confidence, "key level test", mctx)
	}
	return nil
}

// reversalBarSignal fades a strong trend on a reversal bar. It never
// fires in weak trends or ranges; those reversals are noise.
func (g *Generator) reversalBarSignal(current model.Bar, ctx *model.PriceActionContext, mctx model.MarketContext) *model.TradingSignal {
	if ctx.BarQuality != model.Reversal {
		return nil
	}
	switch ctx.MarketStructure {
	case model.StrongTrendDown:
		return g.signal(current, model.SignalBuy, confReversalBar, "reversal bar", mctx)
	case model.StrongTrendUp:
		return g.signal(current, model.SignalSell, confReversalBar, "reversal bar", mctx)
	}
	return nil
}

func (g *Generator) signal(current model.Bar, t model.SignalType, confidence float64, setup string, mctx model.MarketContext) *model.TradingSignal {
	return &model.TradingSignal{
		Symbol:     current.Symbol,
		SignalType: t,
		Confidence: confidence,
		Price:      current.Close,
		Timestamp:  currentTime(current),
		Reason:     setup + " + " + strings.ToLower(mctx.Trend),
	}
}

// currentTime prefers the bar's own timestamp so backtests stay on the
// historical clock.
func currentTime(b model.Bar) time.Time {
	if !b.Timestamp.IsZero() {
		return b.Timestamp
	}
	return time.Now()
}
