package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType names the pipeline events published on the outbound channel.
type EventType string

const (
	EventAnalysisUpdated EventType = "market_analysis_updated"
	EventSignalGenerated EventType = "signal_generated"
	EventSignalRejected  EventType = "signal_rejected"
)

// PipelineEvent is the typed message a pipeline writes to its outbound
// channel. Consumers (monitor, recorder, execution) subscribe externally;
// the pipeline itself has no ambient side effects.
type PipelineEvent struct {
	ID        uuid.UUID
	Type      EventType
	Symbol    string
	Timestamp time.Time

	// Populated per event type.
	Signal  *TradingSignal      // signal_generated, signal_rejected
	Context *PriceActionContext // market_analysis_updated, signal_generated
	Market  *MarketContext      // market_analysis_updated
	Reason  string              // signal_rejected
}

// NewPipelineEvent stamps a fresh event with an ID and timestamp.
func NewPipelineEvent(t EventType, symbol string) PipelineEvent {
	return PipelineEvent{
		ID:        uuid.New(),
		Type:      t,
		Symbol:    symbol,
		Timestamp: time.Now(),
	}
}
