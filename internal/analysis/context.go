package analysis

import (
	"github.com/markcheno/go-talib"

	"PriceSentinel/internal/model"
)

const (
	minAnalysisBars = 10
	volumeLookback  = 10
	volatilityCap   = 10.0
	volumeHighRatio = 1.5
	volumeLowRatio  = 0.5
	volatilityBase  = 3.0 // trend strength to volatility proxy scaling
	strongBarFactor = 1.2
	dojiFactor      = 0.7
	reversalFactor  = 1.5
	keyLevelFactor  = 1.3
)

// Analyzer runs the per-bar price-action read. It holds only thresholds
// and is safe for concurrent use across symbols.
type Analyzer struct {
	p Params
}

// NewAnalyzer builds an Analyzer with the given thresholds.
func NewAnalyzer(p Params) *Analyzer {
	return &Analyzer{p: p}
}

// Analyze produces a fresh context from the window snapshot. The bars
// slice is oldest-first and includes current as its last element. With
// fewer than 10 bars it returns a neutral context so downstream stages
// stay quiet during warm-up.
func (a *Analyzer) Analyze(bars []model.Bar, current model.Bar) *model.PriceActionContext {
	ctx := &model.PriceActionContext{
		Symbol:          current.Symbol,
		CurrentPrice:    current.Close,
		BarQuality:      model.Doji,
		MarketStructure: model.TradingRange,
	}
	if len(bars) < minAnalysisBars {
		return ctx
	}

	ctx.BarQuality = ClassifyBarQuality(bars, current)
	ctx.MarketStructure, ctx.TrendStrength = ClassifyStructure(bars, a.p)
	ctx.AtKeyLevel, ctx.KeyLevelType = AtKeyLevel(bars, current, a.p)
	ctx.ConsecutivePattern = ConsecutivePattern(bars)

	ctx.TwoLegPullback = DetectTwoLegPullback(bars, current, a.p)
	ctx.Wedge = DetectWedge(bars, current, a.p)
	ctx.Test = DetectKeyLevelTest(bars, current, a.p)
	ctx.TrendlineBreak = DetectTrendlineBreak(bars, current, a.p)
	ctx.FailedBreakout = DetectFailedBreakout(bars, current, a.p)

	return ctx
}

// MarketContext condenses a price-action context into the view the risk
// filter consumes: coarse trend, a volatility proxy, and the volume
// profile of the latest bar.
func (a *Analyzer) MarketContext(ctx *model.PriceActionContext, bars []model.Bar) model.MarketContext {
	return model.MarketContext{
		Symbol:        ctx.Symbol,
		CurrentPrice:  ctx.CurrentPrice,
		Trend:         ctx.MarketStructure.Trend(),
		Volatility:    volatilityProxy(ctx),
		VolumeProfile: VolumeProfileOf(bars),
	}
}

// volatilityProxy derives an activity score from trend strength and bar
// shape. Not a statistical volatility; it only has to be comparable
// against the risk filter's limit.
func volatilityProxy(ctx *model.PriceActionContext) float64 {
	v := ctx.TrendStrength * volatilityBase

	switch ctx.BarQuality {
	case model.StrongBull, model.StrongBear:
		v *= strongBarFactor
	case model.Doji:
		v *= dojiFactor
	case model.Reversal:
		v *= reversalFactor
	}

	if ctx.AtKeyLevel {
		v *= keyLevelFactor
	}

	if v > volatilityCap {
		v = volatilityCap
	}
	return v
}

// VolumeProfileOf compares the latest bar's volume against its 10-bar
// simple average. Unknown until enough history has accumulated.
func VolumeProfileOf(bars []model.Bar) model.VolumeProfile {
	if len(bars) < volumeLookback {
		return model.VolumeUnknown
	}

	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}
	sma := talib.Sma(volumes, volumeLookback)
	avg := sma[len(sma)-1]
	if avg <= 0 {
		return model.VolumeUnknown
	}

	ratio := volumes[len(volumes)-1] / avg
	switch {
	case ratio > volumeHighRatio:
		return model.VolumeHigh
	case ratio < volumeLowRatio:
		return model.VolumeLow
	default:
		return model.VolumeNormal
	}
}
