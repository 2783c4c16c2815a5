package timer

import "container/heap"

type entry[W any] struct {
	deadline Instant
	seq      uint64
	waker    W
}

type entries[W any] []entry[W]

func (e entries[W]) Len() int { return len(e) }
func (e entries[W]) Less(i, j int) bool {
	if e[i].deadline != e[j].deadline {
		return e[i].deadline.Before(e[j].deadline)
	}
	return e[i].seq < e[j].seq
}
func (e entries[W]) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *entries[W]) Push(x any)   { *e = append(*e, x.(entry[W])) }
func (e *entries[W]) Pop() any {
	old := *e
	n := len(old)
	x := old[n-1]
	*e = old[:n-1]
	return x
}

// Queue orders pending deadlines; equal deadlines keep insertion order.
type Queue[W any] struct {
	items entries[W]
	seq   uint64
}

// NewQueue creates a queue with room for capacity entries before growing.
func NewQueue[W any](capacity int) *Queue[W] {
	return &Queue[W]{items: make(entries[W], 0, capacity)}
}

// Push adds a deadline and reports whether it became the nearest one.
func (q *Queue[W]) Push(deadline Instant, waker W) bool {
	q.seq++
	heap.Push(&q.items, entry[W]{deadline: deadline, seq: q.seq, waker: waker})
	return q.items[0].seq == q.seq
}

// Peek returns the nearest deadline.
func (q *Queue[W]) Peek() (Instant, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].deadline, true
}

// PopExpired removes the nearest entry if its deadline was reached at now.
func (q *Queue[W]) PopExpired(now Instant) (W, bool) {
	var zero W
	if len(q.items) == 0 || !q.items[0].deadline.Reached(now) {
		return zero, false
	}
	e := heap.Pop(&q.items).(entry[W])
	return e.waker, true
}

// Reset drops every pending deadline.
func (q *Queue[W]) Reset() {
	q.items = q.items[:0]
}

// Len returns the number of pending deadlines.
func (q *Queue[W]) Len() int { return len(q.items) }
