package dispatcher

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/viant/rtsched/service/registry"
	"github.com/viant/rtsched/service/spawn"
	"github.com/viant/rtsched/service/timer"
)

// Context is handed to a task for one dispatch. It is only valid until the
// handler or Resume call returns.
type Context struct {
	core     *Core
	task     *registry.Task
	handle   spawn.Handle
	args     any
	awaiting bool
}

// TaskID returns the id of the running task.
func (cx *Context) TaskID() string { return cx.task.ID }

// Priority returns the static priority of the running task.
func (cx *Context) Priority() int { return cx.task.Priority }

// Args returns the spawn payload of a software invocation.
func (cx *Context) Args() any { return cx.args }

// Handle returns the handle of a software invocation.
func (cx *Context) Handle() spawn.Handle { return cx.handle }

// Logger returns the diagnostic sink scoped to the task.
func (cx *Context) Logger() logr.Logger {
	return cx.core.logger.WithValues("task", cx.task.ID)
}

// Spawn enqueues an invocation of a software task. A strictly higher
// priority task runs before Spawn returns.
func (cx *Context) Spawn(id string, args any) (spawn.Handle, error) {
	h, err := cx.core.spawn(id, args)
	if err == nil {
		cx.core.preempt()
	}
	return h, err
}

// Cancel removes a not yet started invocation and reports whether it was found.
func (cx *Context) Cancel(h spawn.Handle) bool { return cx.core.cancel(h) }

// Pend marks a hardware vector pending.
func (cx *Context) Pend(vector string) error { return cx.core.pend(vector) }

// Now reads the monotonic clock.
func (cx *Context) Now() timer.Instant { return cx.core.now() }

// DelayUntil suspends the invocation until the clock reaches at. The
// routine must return Pending after the call.
func (cx *Context) DelayUntil(at timer.Instant) {
	c := cx.core
	cx.suspendable("DelayUntil")
	if c.timer == nil {
		cx.Abort(fmt.Errorf("%w: timer service is disabled", ErrProtocol))
	}
	cx.awaiting = true
	_ = c.locks.Lock(c.timerVector.Priority, func() error {
		c.timer.Schedule(at, cx.handle)
		return nil
	})
}

// Delay suspends the invocation for d ticks.
func (cx *Context) Delay(d timer.Duration) {
	cx.DelayUntil(cx.Now().Add(d))
}

// Await suspends the invocation until signal is raised.
func (cx *Context) Await(signal *Signal) {
	cx.suspendable("Await")
	cx.awaiting = true
	if signal.await(cx.core, cx.handle) {
		cx.core.queue.Wake(cx.handle)
	}
}

// Lock runs body as a critical section of a shared resource.
func (cx *Context) Lock(resource string, ceiling int, body func() error) error {
	return cx.core.lock(cx.task, resource, ceiling, body)
}

// Abort halts scheduling with a protocol violation.
func (cx *Context) Abort(err error) { cx.core.abort(err) }

func (cx *Context) suspendable(op string) {
	if cx.task.Kind != registry.KindSoftware {
		cx.Abort(fmt.Errorf("%w: %s called by %s task %s", ErrProtocol, op, cx.task.Kind, cx.task.ID))
	}
	if cx.awaiting {
		cx.Abort(fmt.Errorf("%w: %s called twice in one segment of %s", ErrProtocol, op, cx.task.ID))
	}
}
