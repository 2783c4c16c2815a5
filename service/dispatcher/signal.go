package dispatcher

import (
	"sync"

	"github.com/viant/rtsched/service/spawn"
)

// Signal is an event source external to the core. Software tasks wait on it
// with Context.Await; Raise may be called from any goroutine.
type Signal struct {
	mu      sync.Mutex
	core    *Core
	waiters []spawn.Handle
	fired   []spawn.Handle
	raised  bool
}

// NewSignal creates a signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Raise resumes every waiting invocation. Without waiters the signal stays
// raised until the next Await consumes it.
func (s *Signal) Raise() {
	s.mu.Lock()
	if len(s.waiters) == 0 || s.core == nil {
		s.raised = true
		s.mu.Unlock()
		return
	}
	s.fired = append(s.fired, s.waiters...)
	s.waiters = s.waiters[:0]
	core := s.core
	s.mu.Unlock()
	core.post(s)
}

// Waiting returns the number of suspended waiters.
func (s *Signal) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

func (s *Signal) await(core *Core, h spawn.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core = core
	if s.raised {
		s.raised = false
		return true
	}
	s.waiters = append(s.waiters, h)
	return false
}

func (s *Signal) take() []spawn.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	fired := s.fired
	s.fired = nil
	return fired
}
