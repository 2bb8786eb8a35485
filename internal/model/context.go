package model

// BarQuality classifies the shape of a single candlestick.
type BarQuality string

const (
	StrongBull BarQuality = "strong_bull"
	WeakBull   BarQuality = "weak_bull"
	StrongBear BarQuality = "strong_bear"
	WeakBear   BarQuality = "weak_bear"
	Doji       BarQuality = "doji"
	Reversal   BarQuality = "reversal"
)

// MarketStructure classifies the multi-bar trend/range state.
type MarketStructure string

const (
	StrongTrendUp   MarketStructure = "strong_trend_up"
	WeakTrendUp     MarketStructure = "weak_trend_up"
	StrongTrendDown MarketStructure = "strong_trend_down"
	WeakTrendDown   MarketStructure = "weak_trend_down"
	TradingRange    MarketStructure = "trading_range"
	// BreakoutAttempt is reserved; the structure classifier never produces it.
	BreakoutAttempt MarketStructure = "breakout_attempt"
)

// Trend collapses the structure into the coarse trend word used in
// signal reasons and risk context.
func (s MarketStructure) Trend() string {
	switch s {
	case StrongTrendUp, WeakTrendUp:
		return "UPTREND"
	case StrongTrendDown, WeakTrendDown:
		return "DOWNTREND"
	case TradingRange:
		return "SIDEWAYS"
	case BreakoutAttempt:
		return "BREAKOUT"
	default:
		return "UNKNOWN"
	}
}

// VolumeProfile classifies the latest bar's volume against its recent average.
type VolumeProfile string

const (
	VolumeHigh    VolumeProfile = "HIGH"
	VolumeNormal  VolumeProfile = "NORMAL"
	VolumeLow     VolumeProfile = "LOW"
	VolumeUnknown VolumeProfile = "UNKNOWN"
)

// PatternDirection orients a detected pattern.
type PatternDirection string

const (
	Bullish PatternDirection = "bullish"
	Bearish PatternDirection = "bearish"
)

// SwingPoint is a local extreme of the high or low series.
type SwingPoint struct {
	Index int // offset within the scanned window, oldest bar = 0
	Price float64
}

// TwoLegPullback describes a two-leg retracement against the prevailing trend.
type TwoLegPullback struct {
	Direction PatternDirection
	Strength  float64 // relative rebound/decline size, capped at 1.0
	Swing     float64 // the higher-low (bullish) or lower-high (bearish) price
}

// WedgeKind distinguishes converging from diverging wedges.
type WedgeKind string

const (
	WedgeConverging WedgeKind = "converging"
	WedgeDiverging  WedgeKind = "diverging"
)

// WedgePattern describes a wedge formed by trendlines through recent swings.
type WedgePattern struct {
	Kind      WedgeKind
	HighSlope float64
	LowSlope  float64
	LastHigh  float64 // most recent swing high inside the wedge
	LastLow   float64 // most recent swing low inside the wedge
}

// KeyLevelTest describes price probing a prior swing level.
type KeyLevelTest struct {
	LevelType string // "support" or "resistance"
	Level     float64
	Hits      int
	Strong    bool
}

// TrendlineBreak describes price breaking a projected two-point trendline.
type TrendlineBreak struct {
	Direction PatternDirection // bullish = break above down-trendline
	Projected float64
	Strength  float64 // relative distance from the projected line
}

// FailedBreakout describes a false break of a swing level that reversed.
type FailedBreakout struct {
	Direction   PatternDirection // bullish = failed break below support
	Level       float64
	Penetration float64 // relative penetration beyond the level
}

// PriceActionContext is the full per-bar read of the market, recomputed
// fresh on every bar and never mutated after construction.
type PriceActionContext struct {
	Symbol             string
	CurrentPrice       float64
	BarQuality         BarQuality
	MarketStructure    MarketStructure
	TrendStrength      float64 // 0..1
	AtKeyLevel         bool
	KeyLevelType       string // "support", "resistance" or ""
	ConsecutivePattern string // "consecutive_bull", "three_bear", ... or ""
	TwoLegPullback     *TwoLegPullback
	Wedge              *WedgePattern
	Test               *KeyLevelTest
	TrendlineBreak     *TrendlineBreak
	FailedBreakout     *FailedBreakout
}

// MarketContext is the condensed view the risk filter operates on.
type MarketContext struct {
	Symbol        string
	CurrentPrice  float64
	Trend         string // "UPTREND", "DOWNTREND", "SIDEWAYS", "UNKNOWN"
	Volatility    float64
	VolumeProfile VolumeProfile
}
