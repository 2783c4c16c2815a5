package spawn

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when a bucket holds capacity pending requests
	// or has no slot left for a new invocation.
	ErrQueueFull = errors.New("spawn: queue full")
	// ErrAlreadyPending is returned when a singleton task already has a live invocation.
	ErrAlreadyPending = errors.New("spawn: already pending")
	// ErrNoBucket is returned for a priority without a software bucket.
	ErrNoBucket = errors.New("spawn: no bucket for priority")
)

// MaxCapacity is the largest bucket capacity; slot indexes are 16-bit.
const MaxCapacity = 1 << 15

// Queue is the set of per-priority buckets. It is not safe for concurrent
// use; the dispatcher core is its only user.
type Queue[T any] struct {
	buckets []*bucket[T]
}

// New creates buckets for the supplied priority -> capacity map.
func New[T any](capacities map[int]int) (*Queue[T], error) {
	maxPriority := 0
	for priority, capacity := range capacities {
		if priority < 1 || priority > 255 {
			return nil, fmt.Errorf("invalid bucket priority %d", priority)
		}
		if capacity < 1 || capacity > MaxCapacity {
			return nil, fmt.Errorf("invalid capacity %d for bucket %d", capacity, priority)
		}
		if priority > maxPriority {
			maxPriority = priority
		}
	}
	q := &Queue[T]{buckets: make([]*bucket[T], maxPriority+1)}
	for priority, capacity := range capacities {
		q.buckets[priority] = newBucket[T](priority, capacity)
	}
	return q, nil
}

func (q *Queue[T]) bucket(priority int) *bucket[T] {
	if priority < 0 || priority >= len(q.buckets) {
		return nil
	}
	return q.buckets[priority]
}

func (q *Queue[T]) slot(h Handle) (*bucket[T], *Slot[T]) {
	if !h.Valid() {
		return nil, nil
	}
	b := q.bucket(int(h.priority))
	if b == nil || int(h.slot) >= len(b.slots) {
		return nil, nil
	}
	s := &b.slots[h.slot]
	if s.gen != h.gen || s.state == Free {
		return nil, nil
	}
	return b, s
}

// Push enqueues a new invocation of task at the tail of its bucket.
func (q *Queue[T]) Push(priority, task int, args any, singleton bool) (Handle, error) {
	b := q.bucket(priority)
	if b == nil {
		return Handle{}, fmt.Errorf("%w %d", ErrNoBucket, priority)
	}
	if singleton {
		for i := range b.slots {
			if b.slots[i].state != Free && b.slots[i].Task == task {
				return Handle{}, ErrAlreadyPending
			}
		}
	}
	if b.pending >= b.capacity {
		return Handle{}, ErrQueueFull
	}
	index, ok := b.free()
	if !ok {
		return Handle{}, fmt.Errorf("%w: %d started invocations", ErrQueueFull, b.live)
	}
	s := &b.slots[index]
	s.Task = task
	s.Args = args
	s.state = Pending
	b.live++
	b.pending++
	b.push(index)
	return b.handle(index), nil
}

// Pop removes the next dispatch event of the bucket. The invocation becomes
// Running.
func (q *Queue[T]) Pop(priority int) (Event[T], bool) {
	b := q.bucket(priority)
	if b == nil {
		return Event[T]{}, false
	}
	index, ok := b.pop()
	if !ok {
		return Event[T]{}, false
	}
	s := &b.slots[index]
	fresh := s.state == Pending
	if fresh {
		b.pending--
	}
	s.state = Running
	return Event[T]{Handle: b.handle(index), Slot: s, Fresh: fresh}, true
}

// Cancel removes an invocation that has not started yet.
func (q *Queue[T]) Cancel(h Handle) bool {
	b, s := q.slot(h)
	if s == nil || s.state != Pending {
		return false
	}
	b.remove(h.slot)
	b.release(h.slot)
	return true
}

// Suspend parks a running invocation at an await point. A wake that arrived
// while it was still running requeues it immediately.
func (q *Queue[T]) Suspend(h Handle) bool {
	b, s := q.slot(h)
	if s == nil || s.state != Running {
		return false
	}
	if s.woken {
		s.woken = false
		s.state = Ready
		b.push(h.slot)
		return true
	}
	s.state = Suspended
	return true
}

// Yield requeues a running invocation at the tail of its bucket.
func (q *Queue[T]) Yield(h Handle) bool {
	b, s := q.slot(h)
	if s == nil || s.state != Running {
		return false
	}
	s.woken = false
	s.state = Ready
	b.push(h.slot)
	return true
}

// Wake resumes a suspended invocation. Waking a running invocation is
// remembered until it suspends.
func (q *Queue[T]) Wake(h Handle) bool {
	b, s := q.slot(h)
	if s == nil {
		return false
	}
	switch s.state {
	case Suspended:
		s.state = Ready
		b.push(h.slot)
		return true
	case Running:
		s.woken = true
		return true
	}
	return false
}

// Complete releases the slot of a finished invocation.
func (q *Queue[T]) Complete(h Handle) bool {
	b, s := q.slot(h)
	if s == nil || s.state != Running {
		return false
	}
	b.release(h.slot)
	return true
}

// Lookup returns the slot of a live invocation.
func (q *Queue[T]) Lookup(h Handle) (*Slot[T], bool) {
	_, s := q.slot(h)
	return s, s != nil
}

// Len returns the number of queued dispatch events of a bucket.
func (q *Queue[T]) Len(priority int) int {
	if b := q.bucket(priority); b != nil {
		return b.count
	}
	return 0
}

// Pending returns the number of not yet started requests of a bucket.
func (q *Queue[T]) Pending(priority int) int {
	if b := q.bucket(priority); b != nil {
		return b.pending
	}
	return 0
}

// Live returns the number of occupied slots of a bucket.
func (q *Queue[T]) Live(priority int) int {
	if b := q.bucket(priority); b != nil {
		return b.live
	}
	return 0
}

// Capacity returns the number of pending requests a bucket accepts.
func (q *Queue[T]) Capacity(priority int) int {
	if b := q.bucket(priority); b != nil {
		return b.capacity
	}
	return 0
}

// Empty reports whether no bucket has a queued dispatch event.
func (q *Queue[T]) Empty() bool {
	for _, b := range q.buckets {
		if b != nil && b.count > 0 {
			return false
		}
	}
	return true
}

// Reset drops every invocation, used on full system reset only.
func (q *Queue[T]) Reset() {
	for _, b := range q.buckets {
		if b == nil {
			continue
		}
		for i := range b.slots {
			if b.slots[i].state != Free {
				b.release(uint16(i))
			}
		}
		b.head, b.count, b.pending = 0, 0, 0
	}
}
