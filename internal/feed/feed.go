package feed

import (
	"context"
	"math"
	"time"

	"PriceSentinel/internal/model"
)

// Feed streams bars for one or more symbols into a channel. Run blocks
// until the context is canceled or the feed fails permanently.
type Feed interface {
	Name() string
	Run(ctx context.Context, out chan<- model.Bar) error
}

// MockFeed emits synthetic bars on a fixed interval for development and
// testing. Price follows a slow sine drift around BasePrice.
type MockFeed struct {
	Symbol    string
	BasePrice float64
	Interval  time.Duration

	tick int
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) Run(ctx context.Context, out chan<- model.Bar) error {
	interval := m.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			bar := m.nextBar(now)
			select {
			case out <- bar:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (m *MockFeed) nextBar(now time.Time) model.Bar {
	m.tick++
	drift := 1 + 0.002*math.Sin(float64(m.tick)/8)
	c := m.BasePrice * drift
	o := c * 0.999
	return model.Bar{
		Symbol:    m.Symbol,
		Timestamp: now,
		Open:      o,
		High:      c * 1.001,
		Low:       o * 0.999,
		Close:     c,
		Volume:    1000,
	}
}
