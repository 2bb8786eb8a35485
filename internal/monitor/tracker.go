package monitor

import (
	"sort"
	"sync"
	"time"

	"PriceSentinel/internal/model"
)

// SymbolStatus is the latest known state of one tracked symbol.
type SymbolStatus struct {
	Symbol        string
	Price         float64
	Structure     model.MarketStructure
	BarQuality    model.BarQuality
	TrendStrength float64
	Volatility    float64
	VolumeProfile model.VolumeProfile

	LastSignal   *model.TradingSignal
	SignalCount  int
	RejectCount  int
	LastRejected string
	UpdatedAt    time.Time
}

// Tracker accumulates pipeline events into per-symbol status for the
// periodic report. It only reads events; pipelines stay the source of
// truth.
type Tracker struct {
	mu     sync.Mutex
	status map[string]*SymbolStatus
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{status: make(map[string]*SymbolStatus)}
}

// Handle folds one event into the tracked state.
func (t *Tracker) Handle(evt model.PipelineEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.status[evt.Symbol]
	if !ok {
		s = &SymbolStatus{Symbol: evt.Symbol}
		t.status[evt.Symbol] = s
	}
	s.UpdatedAt = evt.Timestamp

	switch evt.Type {
	case model.EventAnalysisUpdated:
		if evt.Context != nil {
			s.Price = evt.Context.CurrentPrice
			s.Structure = evt.Context.MarketStructure
			s.BarQuality = evt.Context.BarQuality
			s.TrendStrength = evt.Context.TrendStrength
		}
		if evt.Market != nil {
			s.Volatility = evt.Market.Volatility
			s.VolumeProfile = evt.Market.VolumeProfile
		}
	case model.EventSignalGenerated:
		s.LastSignal = evt.Signal
		s.SignalCount++
	case model.EventSignalRejected:
		s.RejectCount++
		s.LastRejected = evt.Reason
	}
}

// Snapshot returns a copy of all statuses, sorted by symbol.
func (t *Tracker) Snapshot() []SymbolStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SymbolStatus, 0, len(t.status))
	for _, s := range t.status {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
