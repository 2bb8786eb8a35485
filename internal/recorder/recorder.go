package recorder

import (
	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/model"
)

// Recorder persists signal history for later analysis.
type Recorder interface {
	RecordSignal(sig *model.TradingSignal, ctx *model.PriceActionContext) error
	RecordRejection(symbol, reason string, sig *model.TradingSignal) error
	RecordOrder(o *execution.Order) error
	Close() error
}
