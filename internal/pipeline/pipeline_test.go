package pipeline

import (
	"testing"
	"time"

	"PriceSentinel/internal/model"
)

func risingBar(i int, at time.Time) model.Bar {
	c := 100 + 0.5*float64(i)
	o := c - 0.4
	return model.Bar{
		Symbol:    "SPY",
		Timestamp: at,
		Open:      o,
		High:      c + 0.05,
		Low:       o - 0.05,
		Close:     c,
		Volume:    1000,
	}
}

func TestProcessBar_WarmupReturnsNil(t *testing.T) {
	p := New("SPY", Options{})
	t0 := time.Now()

	for i := 0; i < 19; i++ {
		if d := p.ProcessBar(risingBar(i, t0.Add(time.Duration(i)*time.Minute))); d != nil {
			t.Fatalf("expected nil during warm-up, got decision at bar %d", i)
		}
	}
	if p.LastSignal() != nil {
		t.Error("no signal expected during warm-up")
	}
}

func TestProcessBar_UptrendProducesBuy(t *testing.T) {
	events := make(chan model.PipelineEvent, 128)
	p := New("SPY", Options{Events: events})
	t0 := time.Now()

	accepted := 0
	for i := 0; i < 25; i++ {
		d := p.ProcessBar(risingBar(i, t0.Add(time.Duration(i)*time.Minute)))
		if d != nil && d.Signal != nil {
			accepted++
			if d.Signal.SignalType != model.SignalBuy {
				t.Errorf("expected BUY, got %s", d.Signal.SignalType)
			}
		}
	}
	if accepted == 0 {
		t.Fatal("expected at least one accepted signal in a steady uptrend")
	}

	sig := p.LastSignal()
	if sig == nil || sig.Symbol != "SPY" {
		t.Fatalf("last signal missing or mislabeled: %+v", sig)
	}

	var analysisSeen, signalSeen bool
	for len(events) > 0 {
		evt := <-events
		switch evt.Type {
		case model.EventAnalysisUpdated:
			analysisSeen = true
			if evt.Context == nil || evt.Market == nil {
				t.Error("analysis event missing context")
			}
		case model.EventSignalGenerated:
			signalSeen = true
			if evt.Signal == nil {
				t.Error("signal event missing signal")
			}
		}
		if evt.ID == (model.PipelineEvent{}).ID {
			t.Error("event missing ID")
		}
	}
	if !analysisSeen || !signalSeen {
		t.Errorf("expected analysis and signal events, got %v/%v", analysisSeen, signalSeen)
	}
}

func TestProcessBar_ThrottleRejectsRepeats(t *testing.T) {
	p := New("SPY", Options{})
	t0 := time.Now()

	var acceptedAt []int
	rejected := 0
	// One-minute bars: repeated breakout buys fall inside the
	// five-minute cooldown.
	for i := 0; i < 30; i++ {
		d := p.ProcessBar(risingBar(i, t0.Add(time.Duration(i)*time.Minute)))
		if d == nil {
			continue
		}
		if d.Signal != nil {
			acceptedAt = append(acceptedAt, i)
		} else {
			rejected++
		}
	}
	if len(acceptedAt) == 0 {
		t.Fatal("expected accepted signals")
	}
	if rejected == 0 {
		t.Error("expected throttled repeats")
	}
	for j := 1; j < len(acceptedAt); j++ {
		if acceptedAt[j]-acceptedAt[j-1] < 5 {
			t.Errorf("accepted signals %d and %d are inside the cooldown",
				acceptedAt[j-1], acceptedAt[j])
		}
	}
}

func TestRecentBarsAndCurrentPrice(t *testing.T) {
	p := New("SPY", Options{})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		p.ProcessBar(risingBar(i, t0.Add(time.Duration(i)*time.Minute)))
	}

	bars := p.RecentBars(5)
	if len(bars) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(bars))
	}
	if bars[4].Close != 104.5 {
		t.Errorf("latest close %.2f, want 104.50", bars[4].Close)
	}
	if p.CurrentPrice() != 104.5 {
		t.Errorf("current price %.2f, want 104.50", p.CurrentPrice())
	}
}

func TestProcessBar_FullChannelDoesNotBlock(t *testing.T) {
	events := make(chan model.PipelineEvent, 1)
	p := New("SPY", Options{Events: events})
	t0 := time.Now()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 25; i++ {
			p.ProcessBar(risingBar(i, t0.Add(time.Duration(i)*time.Minute)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ProcessBar blocked on a full event channel")
	}
}
