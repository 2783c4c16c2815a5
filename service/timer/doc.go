// Package timer provides the monotonic time base of the scheduler: wrap-safe
// 32-bit instants, the deadline queue that orders pending delays, and the
// drivers that arm the hardware compare interrupt.
package timer
