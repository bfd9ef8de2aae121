package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// AdvanceToNextDay moves to the same wall time on the next calendar day.
// Day-keyed behavior (repeat eligibility, time buckets) rolls over on
// calendar days, not 24h spans, so tests cross the boundary this way.
func (c *FakeClock) AdvanceToNextDay() {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, 1)
	c.mu.Unlock()
}
