package timer

import "sync"

// ManualClock is a driver advanced explicitly, used for simulation and tests.
type ManualClock struct {
	mu      sync.Mutex
	now     Instant
	compare Instant
	armed   bool
	pend    func()
}

// NewManualClock creates a clock reading start.
func NewManualClock(start Instant) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() Instant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Attach(pend func()) {
	c.mu.Lock()
	c.pend = pend
	c.mu.Unlock()
}

func (c *ManualClock) SetCompare(at Instant) {
	c.mu.Lock()
	c.compare, c.armed = at, true
	pend := c.check()
	c.mu.Unlock()
	if pend != nil {
		pend()
	}
}

func (c *ManualClock) ClearCompare() {
	c.mu.Lock()
	c.armed = false
	c.mu.Unlock()
}

// Armed returns the armed compare value.
func (c *ManualClock) Armed() (Instant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compare, c.armed
}

// Advance moves the counter forward by d ticks.
func (c *ManualClock) Advance(d Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	pend := c.check()
	c.mu.Unlock()
	if pend != nil {
		pend()
	}
}

// check disarms and returns the pend function when the compare matched.
func (c *ManualClock) check() func() {
	if !c.armed || !c.compare.Reached(c.now) {
		return nil
	}
	c.armed = false
	return c.pend
}
