package progress

import (
	"sync"
	"time"

	"github.com/viant/rtsched/internal/clock"
)

// Delta represents an incremental counter change emitted by the dispatcher.
type Delta struct {
	Spawned    int
	Rejected   int
	Cancelled  int
	Dispatched int
	Completed  int
	Suspended  int
	Preempted  int
	Expired    int
	IdleWaits  int
}

// Counters is a point-in-time copy of the scheduling counters.
type Counters struct {
	// Identification – informative only, filled when the dispatcher starts.
	BootID    string
	App       string
	StartedAt time.Time

	Spawned    int
	Rejected   int
	Cancelled  int
	Dispatched int
	Completed  int
	Suspended  int
	Preempted  int
	Expired    int
	IdleWaits  int
}

// Progress keeps aggregated scheduling counters. It is safe for concurrent use.
type Progress struct {
	Counters
	mux      sync.Mutex
	onChange func(Counters)
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it is invoked with a copy of the updated counters
// outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mux.Lock()

	p.Spawned += d.Spawned
	p.Rejected += d.Rejected
	p.Cancelled += d.Cancelled
	p.Dispatched += d.Dispatched
	p.Completed += d.Completed
	p.Suspended += d.Suspended
	p.Preempted += d.Preempted
	p.Expired += d.Expired
	p.IdleWaits += d.IdleWaits

	snapshot := p.Counters
	cb := p.onChange

	p.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Start records the identification of a dispatcher run.
func (p *Progress) Start(bootID, app string) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.BootID, p.App, p.StartedAt = bootID, app, clock.Now()
	p.mux.Unlock()
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Counters {
	if p == nil {
		return Counters{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.Counters
}

// OnChange registers a callback that is invoked after every Update. Passing
// nil disables the callback.
func (p *Progress) OnChange(cb func(Counters)) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.onChange = cb
	p.mux.Unlock()
}
