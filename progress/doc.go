// Package progress defines the scheduling counters reported by a running
// dispatcher. Counters are updated from the scheduler core and can be read
// from any goroutine.
package progress
