package spawn

import "fmt"

// Handle identifies one spawned invocation. The zero value is invalid.
type Handle struct {
	priority uint8
	slot     uint16
	gen      uint32
}

// Valid reports whether the handle was returned by a successful spawn.
func (h Handle) Valid() bool { return h.gen != 0 }

// Priority returns the bucket priority.
func (h Handle) Priority() int { return int(h.priority) }

// Slot returns the slot index within the bucket.
func (h Handle) Slot() int { return int(h.slot) }

func (h Handle) String() string {
	if !h.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("p%d/s%d#%d", h.priority, h.slot, h.gen)
}

// State is the life-cycle state of a slot.
type State uint8

const (
	// Free slots hold no invocation.
	Free State = iota
	// Pending invocations are queued and have not started.
	Pending
	// Ready invocations have started and are queued for resumption.
	Ready
	// Running invocations are being dispatched.
	Running
	// Suspended invocations wait at an await point.
	Suspended
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Slot carries one invocation.
type Slot[T any] struct {
	// Task is the registry index of the spawned task.
	Task int
	// Args is the immutable payload supplied at spawn.
	Args any
	// Value holds per-invocation state owned by the dispatcher.
	Value T

	state State
	gen   uint32
	woken bool
}

// State returns the slot state.
func (s *Slot[T]) State() State { return s.state }

// Event is one dispatch event popped from a bucket.
type Event[T any] struct {
	Handle Handle
	Slot   *Slot[T]
	// Fresh is true for the first dispatch of an invocation.
	Fresh bool
}
