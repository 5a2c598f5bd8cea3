package filter

import (
	"time"

	"jobfeed/internal/model"
)

// Freshness keeps only postings whose timestamp falls inside a rolling
// window ending at the injected clock's "now". Both provider adapters share
// one instance so they apply the identical cutoff within a batch cycle.
type Freshness struct {
	clock  model.Clock
	window time.Duration
}

// NewFreshness returns a freshness filter over the given window.
func NewFreshness(clock model.Clock, window time.Duration) *Freshness {
	return &Freshness{clock: clock, window: window}
}

// Keep reports whether a posting timestamped at t is still inside the
// window. The boundary is inclusive: a posting exactly window old is kept.
func (f *Freshness) Keep(t time.Time) bool {
	cutoff := f.clock.Now().Add(-f.window)
	return !t.Before(cutoff)
}
