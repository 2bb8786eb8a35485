package window

import (
	"sync"

	"PriceSentinel/internal/model"
)

// RollingWindow is a bounded FIFO of bars for one symbol. Push reuses a
// fixed ring, so steady-state appends allocate nothing. A single producer
// writes; reporting readers take the read lock.
type RollingWindow struct {
	mu     sync.RWMutex
	buf    []model.Bar
	start  int
	length int
	cap    int
}

// New creates a RollingWindow with the given capacity (minimum 1).
func New(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &RollingWindow{
		buf: make([]model.Bar, capacity),
		cap: capacity,
	}
}

// Push appends a bar, evicting the oldest entry when full.
func (w *RollingWindow) Push(bar model.Bar) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.length < w.cap {
		w.buf[(w.start+w.length)%w.cap] = bar
		w.length++
		return
	}
	w.buf[w.start] = bar
	w.start = (w.start + 1) % w.cap
}

// Snapshot returns the last count bars ordered oldest-first, fewer if the
// window holds less, empty if none. The returned slice is a copy.
func (w *RollingWindow) Snapshot(count int) []model.Bar {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if count > w.length {
		count = w.length
	}
	if count <= 0 {
		return nil
	}
	out := make([]model.Bar, count)
	first := w.length - count
	for i := 0; i < count; i++ {
		out[i] = w.buf[(w.start+first+i)%w.cap]
	}
	return out
}

// Len returns the number of bars currently held.
func (w *RollingWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.length
}

// Latest returns the most recent bar, or false when the window is empty.
func (w *RollingWindow) Latest() (model.Bar, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.length == 0 {
		return model.Bar{}, false
	}
	return w.buf[(w.start+w.length-1)%w.cap], true
}
