package timer

import (
	"sync"
	"time"

	"github.com/viant/rtsched/internal/clock"
)

// HostClock derives ticks from the host wall clock and fires compares with
// host timers. Offset lets the counter start close to wraparound.
type HostClock struct {
	mu         sync.Mutex
	start      time.Time
	resolution time.Duration
	offset     Instant
	timer      *time.Timer
	pend       func()
}

// NewHostClock creates a host driver ticking every resolution.
func NewHostClock(resolution time.Duration, offset Instant) *HostClock {
	if resolution <= 0 {
		resolution = time.Millisecond
	}
	return &HostClock{start: clock.Now(), resolution: resolution, offset: offset}
}

// Resolution returns the duration of one tick.
func (c *HostClock) Resolution() time.Duration { return c.resolution }

// Ticks converts a host duration to ticks, rounding up.
func (c *HostClock) Ticks(d time.Duration) Duration {
	return Duration((d + c.resolution - 1) / c.resolution)
}

func (c *HostClock) Now() Instant {
	elapsed := clock.Since(c.start)
	return c.offset + Instant(uint64(elapsed/c.resolution))
}

func (c *HostClock) Attach(pend func()) {
	c.mu.Lock()
	c.pend = pend
	c.mu.Unlock()
}

func (c *HostClock) SetCompare(at Instant) {
	c.mu.Lock()
	c.stop()
	pend := c.pend
	remaining := at.Sub(c.Now())
	if remaining > 0 && pend != nil {
		c.timer = time.AfterFunc(time.Duration(remaining)*c.resolution, pend)
		pend = nil
	}
	c.mu.Unlock()
	if pend != nil {
		pend()
	}
}

func (c *HostClock) ClearCompare() {
	c.mu.Lock()
	c.stop()
	c.mu.Unlock()
}

// Close releases the host timer.
func (c *HostClock) Close() error {
	c.ClearCompare()
	return nil
}

func (c *HostClock) stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
