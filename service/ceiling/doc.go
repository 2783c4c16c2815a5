// Package ceiling implements the stack/priority ceiling protocol.
//
// Every shared resource carries a static ceiling, the highest priority of any
// task that accesses it. Locking raises the current ceiling register to the
// resource ceiling for the duration of the critical section, which keeps every
// task at or below the ceiling from being dispatched. Locking never waits:
// the body runs immediately and the register is restored on every exit path.
package ceiling
