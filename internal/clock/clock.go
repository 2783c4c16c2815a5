// Package clock is the host time source of the scheduler. Tests replace
// NowFunc to drive the host timer driver deterministically.
package clock

import "time"

// NowFunc returns the current host time.
var NowFunc = time.Now

// Now returns NowFunc().
func Now() time.Time { return NowFunc() }

// Since returns the host time elapsed since start.
func Since(start time.Time) time.Duration { return NowFunc().Sub(start) }
