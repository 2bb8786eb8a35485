package model

import "time"

// Bar represents a single OHLCV candlestick for one symbol.
// Bars are immutable once created and ordered by strictly increasing
// timestamps per symbol.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	VWAP       float64 // 0 when the feed does not supply it
	TradeCount int64   // 0 when the feed does not supply it
}

// Body returns the absolute size of the bar body.
func (b Bar) Body() float64 {
	body := b.Close - b.Open
	if body < 0 {
		return -body
	}
	return body
}

// Range returns the full high-low extent of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }
