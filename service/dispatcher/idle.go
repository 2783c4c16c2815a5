package dispatcher

import (
	"github.com/go-logr/logr"
	"github.com/viant/rtsched/progress"
	"github.com/viant/rtsched/service/registry"
	"github.com/viant/rtsched/service/spawn"
	"github.com/viant/rtsched/service/timer"
)

// IdleContext is handed to the idle entry point. Idle runs at priority 0
// and is preempted by every pending request.
type IdleContext struct {
	core *Core
	task *registry.Task
}

// TaskID returns the idle task id.
func (cx *IdleContext) TaskID() string { return registry.IdleID }

// Logger returns the diagnostic sink scoped to idle.
func (cx *IdleContext) Logger() logr.Logger {
	return cx.core.logger.WithValues("task", registry.IdleID)
}

// Wait services pending requests, then blocks until a new request arrives
// and services it. It returns false once the run context is done.
func (cx *IdleContext) Wait() bool {
	c := cx.core
	c.preempt()
	if c.ctx.Err() != nil {
		return false
	}
	c.progress.Update(progress.Delta{IdleWaits: 1})
	select {
	case <-c.ctx.Done():
		return false
	case <-c.wakeCh:
	}
	c.preempt()
	return true
}

// Poll services pending requests without blocking. It returns false once
// the run context is done.
func (cx *IdleContext) Poll() bool {
	c := cx.core
	c.preempt()
	return c.ctx.Err() == nil
}

// Spawn enqueues an invocation; it runs before Spawn returns.
func (cx *IdleContext) Spawn(id string, args any) (spawn.Handle, error) {
	h, err := cx.core.spawn(id, args)
	if err == nil {
		cx.core.preempt()
	}
	return h, err
}

// Cancel removes a not yet started invocation.
func (cx *IdleContext) Cancel(h spawn.Handle) bool { return cx.core.cancel(h) }

// Pend marks a hardware vector pending.
func (cx *IdleContext) Pend(vector string) error { return cx.core.pend(vector) }

// Now reads the monotonic clock.
func (cx *IdleContext) Now() timer.Instant { return cx.core.now() }

// Lock runs body as a critical section of a resource declared by idle.
func (cx *IdleContext) Lock(resource string, ceiling int, body func() error) error {
	return cx.core.lock(cx.task, resource, ceiling, body)
}

// Abort halts scheduling with a protocol violation.
func (cx *IdleContext) Abort(err error) { cx.core.abort(err) }
