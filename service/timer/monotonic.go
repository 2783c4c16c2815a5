package timer

// Monotonic is the hardware timer driver. The driver calls the attached pend
// function, which latches the timer interrupt, when the counter reaches the
// armed compare value; arming a value that has already been reached fires
// immediately.
type Monotonic interface {
	Now() Instant
	SetCompare(at Instant)
	ClearCompare()
	Attach(pend func())
}

// Service couples the deadline queue with a driver.
type Service[W any] struct {
	clock Monotonic
	queue *Queue[W]
}

// NewService creates a timer service.
func NewService[W any](clock Monotonic, capacity int) *Service[W] {
	return &Service[W]{clock: clock, queue: NewQueue[W](capacity)}
}

// Now returns the current instant.
func (s *Service[W]) Now() Instant { return s.clock.Now() }

// Pending returns the number of scheduled deadlines.
func (s *Service[W]) Pending() int { return s.queue.Len() }

// Schedule registers waker to fire at deadline, re-arming the compare when
// deadline becomes the nearest one.
func (s *Service[W]) Schedule(deadline Instant, waker W) {
	if s.queue.Push(deadline, waker) {
		s.clock.SetCompare(deadline)
	}
}

// Expire hands every reached deadline to wake, in deadline order, and arms
// the compare with the next one. It loops when that deadline passes while
// being armed.
func (s *Service[W]) Expire(wake func(W)) int {
	count := 0
	for {
		now := s.clock.Now()
		for {
			waker, ok := s.queue.PopExpired(now)
			if !ok {
				break
			}
			wake(waker)
			count++
		}
		next, ok := s.queue.Peek()
		if !ok {
			s.clock.ClearCompare()
			return count
		}
		s.clock.SetCompare(next)
		if !next.Reached(s.clock.Now()) {
			return count
		}
	}
}

// Reset drops every scheduled deadline and disarms the compare.
func (s *Service[W]) Reset() {
	s.queue.Reset()
	s.clock.ClearCompare()
}
