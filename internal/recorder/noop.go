package recorder

import (
	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *model.TradingSignal, _ *model.PriceActionContext) error {
	return nil
}
func (n *NoopRecorder) RecordRejection(_, _ string, _ *model.TradingSignal) error { return nil }
func (n *NoopRecorder) RecordOrder(_ *execution.Order) error                      { return nil }
func (n *NoopRecorder) Close() error                                              { return nil }
