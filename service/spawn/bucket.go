package spawn

// bucket bounds not yet started requests by capacity. Started invocations
// keep their slot until they complete, drawing from a second capacity-sized
// table, so a task may spawn capacity requests into its own bucket.
type bucket[T any] struct {
	priority int
	capacity int
	slots    []Slot[T]
	ring     []uint16
	head     int
	count    int
	live     int
	pending  int
}

func newBucket[T any](priority, capacity int) *bucket[T] {
	b := &bucket[T]{
		priority: priority,
		capacity: capacity,
		slots:    make([]Slot[T], 2*capacity),
		ring:     make([]uint16, 2*capacity),
	}
	for i := range b.slots {
		b.slots[i].gen = 1
	}
	return b
}

func (b *bucket[T]) push(slot uint16) {
	b.ring[(b.head+b.count)%len(b.ring)] = slot
	b.count++
}

func (b *bucket[T]) pop() (uint16, bool) {
	if b.count == 0 {
		return 0, false
	}
	slot := b.ring[b.head]
	b.head = (b.head + 1) % len(b.ring)
	b.count--
	return slot, true
}

// remove deletes slot from the ring, preserving the order of the rest.
func (b *bucket[T]) remove(slot uint16) bool {
	size := len(b.ring)
	for i := 0; i < b.count; i++ {
		if b.ring[(b.head+i)%size] != slot {
			continue
		}
		for j := i; j < b.count-1; j++ {
			b.ring[(b.head+j)%size] = b.ring[(b.head+j+1)%size]
		}
		b.count--
		return true
	}
	return false
}

func (b *bucket[T]) free() (uint16, bool) {
	for i := range b.slots {
		if b.slots[i].state == Free {
			return uint16(i), true
		}
	}
	return 0, false
}

func (b *bucket[T]) release(slot uint16) {
	s := &b.slots[slot]
	if s.state == Pending {
		b.pending--
	}
	var zero T
	s.Args = nil
	s.Value = zero
	s.state = Free
	s.woken = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	b.live--
}

func (b *bucket[T]) handle(slot uint16) Handle {
	return Handle{priority: uint8(b.priority), slot: slot, gen: b.slots[slot].gen}
}
