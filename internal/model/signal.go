package model

import "time"

// SignalType indicates the direction of a trading signal.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// TradingSignal is the final output of the signal generator. Immutable;
// risk adjustments produce a new value.
type TradingSignal struct {
	Symbol     string
	SignalType SignalType
	Confidence float64 // 0.0 ~ 1.0
	Price      float64
	Timestamp  time.Time
	Reason     string
}

// RiskDecision wraps the outcome of risk filtering. A nil Signal means
// "no action"; Reason explains rejections; Adjusted marks confidence
// discounts.
type RiskDecision struct {
	Signal   *TradingSignal
	Reason   string
	Adjusted bool
}
