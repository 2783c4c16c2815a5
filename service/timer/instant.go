package timer

import "fmt"

// Instant is a reading of a free-running 32-bit tick counter. Instants are
// compared with modular arithmetic so ordering stays correct across
// counter wraparound, provided the compared values lie within 2^31 ticks of
// each other.
type Instant uint32

// Duration is a number of ticks.
type Duration uint32

// Add returns i advanced by d, wrapping around the counter range.
func (i Instant) Add(d Duration) Instant { return i + Instant(d) }

// Sub returns the signed distance i - o.
func (i Instant) Sub(o Instant) int32 { return int32(i - o) }

// Before reports whether i is strictly earlier than o.
func (i Instant) Before(o Instant) bool { return int32(i-o) < 0 }

// After reports whether i is strictly later than o.
func (i Instant) After(o Instant) bool { return int32(i-o) > 0 }

// Reached reports whether the clock reading now has reached or passed i.
func (i Instant) Reached(now Instant) bool { return !now.Before(i) }

func (i Instant) String() string { return fmt.Sprintf("t%d", uint32(i)) }
