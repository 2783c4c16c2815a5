package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/viant/rtsched/internal/idgen"
	"github.com/viant/rtsched/progress"
	"github.com/viant/rtsched/service/ceiling"
	"github.com/viant/rtsched/service/registry"
	"github.com/viant/rtsched/service/spawn"
	"github.com/viant/rtsched/service/timer"
	"github.com/viant/rtsched/tracing"
)

type phase uint8

const (
	phaseNew phase = iota
	phaseInit
	phaseRunning
	phaseHalted
)

// Core is the scheduler context object. It owns the pending latch, the
// running priority, the ceiling register, the spawn buckets and the timer
// queue. Everything but Pend and Signal.Raise must be called from the
// goroutine running Run or from task bodies it dispatches.
type Core struct {
	registry *registry.Registry
	tasks    []*registry.Task
	vectors  []*registry.Vector
	hardware []func(cx *Context)
	software []Factory
	init     func(cx *InitContext) error
	idle     func(cx *IdleContext)

	pending atomic.Uint64
	wakeCh  chan struct{}
	inbox   []*Signal
	inboxMu sync.Mutex
	posted  atomic.Bool
	started atomic.Bool

	phase    phase
	running  int
	current  string
	register *ceiling.Register
	locks    *ceiling.Manager
	queue    *spawn.Queue[instance]
	declared map[string]bool

	clock       timer.Monotonic
	timer       *timer.Service[spawn.Handle]
	timerVector *registry.Vector

	ctx      context.Context
	spanCtx  context.Context
	logger   logr.Logger
	fault    func(err error)
	progress *progress.Progress
	tracing  bool
	device   any
	bootID   string
}

// New creates a core for a validated registry.
func New(reg *registry.Registry, options ...Option) (*Core, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	c := &Core{
		registry: reg,
		tasks:    reg.Tasks(),
		vectors:  reg.Vectors(),
		wakeCh:   make(chan struct{}, 1),
		register: &ceiling.Register{},
		declared: map[string]bool{},
		logger:   logr.Discard(),
		fault:    func(error) {},
	}
	for _, opt := range options {
		opt(c)
	}
	if len(c.vectors) > registry.MaxVectors {
		return nil, fmt.Errorf("%d vectors exceed the pending latch", len(c.vectors))
	}
	if c.progress == nil {
		c.progress = &progress.Progress{}
	}
	if c.bootID == "" {
		c.bootID = idgen.Short()
	}
	c.hardware = make([]func(cx *Context), len(c.tasks))
	c.software = make([]Factory, len(c.tasks))
	c.locks = ceiling.NewManager(c.register, c.preempt)

	capacities := map[int]int{}
	total := 0
	for _, bucket := range reg.Buckets() {
		capacities[bucket.Priority] = bucket.Capacity
		total += 2 * bucket.Capacity
	}
	queue, err := spawn.New[instance](capacities)
	if err != nil {
		return nil, err
	}
	c.queue = queue

	if vector, ok := reg.Timer(); ok {
		if c.clock == nil {
			c.clock = timer.NewHostClock(time.Millisecond, 0)
		}
		c.timerVector = vector
		c.timer = timer.NewService[spawn.Handle](c.clock, total)
	}
	return c, nil
}

// Registry returns the static tables.
func (c *Core) Registry() *registry.Registry { return c.registry }

// BootID returns the identifier of this core.
func (c *Core) BootID() string { return c.bootID }

// Progress returns the counters tracker.
func (c *Core) Progress() *progress.Progress { return c.progress }

// Ceiling returns the ceiling register value.
func (c *Core) Ceiling() int { return c.register.Load() }

// Running returns the priority of the running context, 0 for idle.
func (c *Core) Running() int { return c.running }

// Clock returns the timer driver, nil when the timer service is disabled.
func (c *Core) Clock() timer.Monotonic { return c.clock }

// BindHardware binds the run-to-completion handler of a hardware task.
func (c *Core) BindHardware(id string, handler func(cx *Context)) error {
	task, err := c.bindable(id)
	if err != nil {
		return err
	}
	if task.Kind != registry.KindHardware {
		return fmt.Errorf("%w: %s", ErrNotHardware, id)
	}
	c.hardware[task.Index] = handler
	return nil
}

// BindSoftware binds the routine factory of a software task.
func (c *Core) BindSoftware(id string, factory Factory) error {
	task, err := c.bindable(id)
	if err != nil {
		return err
	}
	if task.Kind != registry.KindSoftware {
		return fmt.Errorf("%w: %s", ErrNotSoftware, id)
	}
	c.software[task.Index] = factory
	return nil
}

// BindInit sets the init entry point.
func (c *Core) BindInit(init func(cx *InitContext) error) error {
	if c.started.Load() {
		return ErrStarted
	}
	c.init = init
	return nil
}

// BindIdle sets the idle entry point; the default waits for work forever.
func (c *Core) BindIdle(idle func(cx *IdleContext)) error {
	if c.started.Load() {
		return ErrStarted
	}
	c.idle = idle
	return nil
}

func (c *Core) bindable(id string) (*registry.Task, error) {
	if c.started.Load() {
		return nil, ErrStarted
	}
	task, ok := c.registry.Task(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return task, nil
}

// Pend marks a hardware vector pending. It is safe to call from any
// goroutine; the request is serviced at the next preemption point.
func (c *Core) Pend(vector string) error {
	v, err := c.hardwareVector(vector)
	if err != nil {
		return err
	}
	c.raise(v.Index)
	return nil
}

// Run initialises the application and schedules tasks until the idle
// entry point returns or ctx is done. A fault halts scheduling: the fault
// collaborator is invoked and Run returns its error.
func (c *Core) Run(ctx context.Context) (err error) {
	if !c.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	if err := c.checkBindings(); err != nil {
		c.logger.Error(err, "scheduler refused to start", "app", c.registry.Name())
		c.fault(err)
		return err
	}
	c.ctx, c.spanCtx = ctx, ctx
	stop := context.AfterFunc(ctx, c.notify)
	defer stop()
	defer func() {
		if r := recover(); r != nil {
			err = c.recovered(r)
		}
		c.phase = phaseHalted
		if c.clock != nil {
			c.clock.ClearCompare()
		}
	}()

	c.progress.Start(c.bootID, c.registry.Name())
	if c.clock != nil {
		index := c.timerVector.Index
		c.clock.Attach(func() { c.raise(index) })
	}

	c.phase = phaseInit
	if c.init != nil {
		if err := c.init(&InitContext{core: c}); err != nil {
			c.halt(fmt.Errorf("%w: %w", ErrInit, err))
		}
	}
	if err := c.checkInitialized(); err != nil {
		c.halt(err)
	}

	c.phase = phaseRunning
	c.logger.Info("scheduler started", "app", c.registry.Name(), "boot", c.bootID, "vectors", len(c.vectors))
	c.preempt()
	idle := c.idle
	if idle == nil {
		idle = waitForever
	}
	idle(&IdleContext{core: c, task: c.registry.Idle()})
	c.logger.Info("scheduler stopped", "app", c.registry.Name(), "boot", c.bootID)
	return ctx.Err()
}

// Reset returns the core to its power-on state: pending vectors, queued
// and started invocations, deadlines and the ceiling register are dropped.
// Bindings are kept so Run may be called again. Reset must not be called
// while Run is executing.
func (c *Core) Reset() error {
	if c.phase != phaseNew && c.phase != phaseHalted {
		return ErrStarted
	}
	c.pending.Store(0)
	c.inboxMu.Lock()
	c.inbox = nil
	c.posted.Store(false)
	c.inboxMu.Unlock()
	select {
	case <-c.wakeCh:
	default:
	}
	c.queue.Reset()
	if c.timer != nil {
		c.timer.Reset()
	}
	c.register.Reset()
	c.declared = map[string]bool{}
	c.running, c.current = registry.IdlePriority, ""
	c.phase = phaseNew
	c.started.Store(false)
	c.logger.Info("scheduler reset", "app", c.registry.Name(), "boot", c.bootID)
	return nil
}

func waitForever(cx *IdleContext) {
	for cx.Wait() {
	}
}

func (c *Core) checkBindings() error {
	var issues []error
	for _, task := range c.tasks {
		switch task.Kind {
		case registry.KindHardware:
			if c.hardware[task.Index] == nil {
				issues = append(issues, registry.Issuef(registry.ErrUnbound, task.ID, "no handler bound to vector %s", task.Vector))
			}
		case registry.KindSoftware:
			if c.software[task.Index] == nil {
				issues = append(issues, registry.Issuef(registry.ErrUnbound, task.ID, "no routine factory bound"))
			}
		}
	}
	return errors.Join(issues...)
}

// checkInitialized verifies init created every resource some task uses.
func (c *Core) checkInitialized() error {
	var issues []error
	seen := map[string]bool{}
	check := func(task *registry.Task) {
		for _, names := range [][]string{task.Shared, task.Local} {
			for _, name := range names {
				if seen[name] || c.declared[name] {
					continue
				}
				seen[name] = true
				issues = append(issues, fmt.Errorf("%w: %s used by %s", ErrUninitialized, name, task.ID))
			}
		}
	}
	for _, task := range c.tasks {
		check(task)
	}
	check(c.registry.Idle())
	return errors.Join(issues...)
}

func (c *Core) hardwareVector(name string) (*registry.Vector, error) {
	v, ok := c.registry.Vector(name)
	if !ok || v.Kind != registry.VectorHardware {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVector, name)
	}
	return v, nil
}

// latch marks a vector pending without waking the idle wait.
func (c *Core) latch(index int) {
	c.pending.Or(uint64(1) << index)
}

// raise latches a vector from any goroutine and wakes the idle wait.
func (c *Core) raise(index int) {
	c.latch(index)
	c.notify()
}

func (c *Core) notify() {
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

func (c *Core) post(s *Signal) {
	c.inboxMu.Lock()
	c.inbox = append(c.inbox, s)
	c.inboxMu.Unlock()
	c.posted.Store(true)
	c.notify()
}

// collect wakes the waiters of signals raised since the last call.
func (c *Core) collect() {
	if !c.posted.Load() {
		return
	}
	c.inboxMu.Lock()
	signals := c.inbox
	c.inbox = nil
	c.posted.Store(false)
	c.inboxMu.Unlock()
	for _, s := range signals {
		for _, h := range s.take() {
			c.resumeHandle(h)
		}
	}
}

func (c *Core) threshold() int {
	if ceiling := c.register.Load(); ceiling > c.running {
		return ceiling
	}
	return c.running
}

// preempt runs pending vectors above the threshold, highest first. Vectors
// are ordered by priority descending, so the lowest pending bit is the most
// urgent request.
func (c *Core) preempt() {
	if c.phase != phaseRunning {
		return
	}
	c.collect()
	for {
		pending := c.pending.Load()
		if pending == 0 {
			return
		}
		index := bits.TrailingZeros64(pending)
		vector := c.vectors[index]
		if vector.Priority <= c.threshold() {
			return
		}
		c.pending.And(^(uint64(1) << index))
		c.dispatch(vector)
		c.collect()
	}
}

func (c *Core) dispatch(vector *registry.Vector) {
	prevPriority, prevTask := c.running, c.current
	if prevPriority > registry.IdlePriority {
		c.progress.Update(progress.Delta{Preempted: 1})
	}
	c.running = vector.Priority
	switch vector.Kind {
	case registry.VectorHardware:
		task := c.tasks[vector.Task]
		c.current = task.ID
		c.traced(task.ID, vector, func() {
			c.hardware[task.Index](&Context{core: c, task: task})
		})
		c.progress.Update(progress.Delta{Dispatched: 1, Completed: 1})
	case registry.VectorTimer:
		c.current = vector.Name
		c.traced("timer", vector, c.expire)
	case registry.VectorDispatcher:
		c.drain(vector)
	}
	c.running, c.current = prevPriority, prevTask
}

func (c *Core) traced(name string, vector *registry.Vector, fn func()) {
	if !c.tracing {
		fn()
		return
	}
	ctx, span := tracing.StartSpan(c.spanCtx, "dispatch "+name)
	span.WithAttributes(map[string]string{"vector": vector.Name, "boot": c.bootID}).WithInt("priority", vector.Priority)
	prev := c.spanCtx
	c.spanCtx = ctx
	defer func() {
		c.spanCtx = prev
		if r := recover(); r != nil {
			tracing.EndSpan(span, c.cause(r))
			panic(r)
		}
		tracing.EndSpan(span, nil)
	}()
	fn()
}

// drain runs the dispatch events of a bucket in FIFO order.
func (c *Core) drain(vector *registry.Vector) {
	for {
		event, ok := c.queue.Pop(vector.Priority)
		if !ok {
			return
		}
		c.resume(vector, event)
		c.preempt()
	}
}

func (c *Core) resume(vector *registry.Vector, event spawn.Event[instance]) {
	slot := event.Slot
	task := c.tasks[slot.Task]
	c.current = task.ID
	if event.Fresh {
		routine := c.software[task.Index](slot.Args)
		if routine == nil {
			c.halt(fmt.Errorf("%w: factory of %s returned no routine", ErrProtocol, task.ID))
		}
		slot.Value = instance{routine: routine}
	}
	cx := &Context{core: c, task: task, handle: event.Handle, args: slot.Args}
	var poll Poll
	c.traced(task.ID, vector, func() {
		poll = slot.Value.routine.Resume(cx)
	})
	switch {
	case poll == Done:
		slot.Value = instance{}
		c.queue.Complete(event.Handle)
		c.progress.Update(progress.Delta{Dispatched: 1, Completed: 1})
	case cx.awaiting:
		c.queue.Suspend(event.Handle)
		c.progress.Update(progress.Delta{Dispatched: 1, Suspended: 1})
	default:
		c.queue.Yield(event.Handle)
		c.progress.Update(progress.Delta{Dispatched: 1})
	}
	c.logger.V(1).Info("dispatched", "task", task.ID, "handle", event.Handle.String(), "poll", poll.String())
}

// expire is the timer vector handler.
func (c *Core) expire() {
	count := c.timer.Expire(c.resumeHandle)
	if count > 0 {
		c.progress.Update(progress.Delta{Expired: count})
	}
}

// resumeHandle queues a suspended invocation for resumption.
func (c *Core) resumeHandle(h spawn.Handle) {
	if !c.queue.Wake(h) {
		return
	}
	if bucket, ok := c.registry.Bucket(h.Priority()); ok {
		c.latch(bucket.Vector)
	}
	c.logger.V(1).Info("woken", "handle", h.String())
}

func (c *Core) spawn(id string, args any) (spawn.Handle, error) {
	task, ok := c.registry.Task(id)
	if !ok {
		return spawn.Handle{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	if task.Kind != registry.KindSoftware {
		return spawn.Handle{}, fmt.Errorf("%w: %s", ErrNotSoftware, id)
	}
	h, err := c.queue.Push(task.Priority, task.Index, args, task.Singleton)
	if err != nil {
		c.progress.Update(progress.Delta{Rejected: 1})
		c.logger.V(1).Info("spawn rejected", "task", id, "error", err.Error())
		return h, fmt.Errorf("%w: %s", err, id)
	}
	c.progress.Update(progress.Delta{Spawned: 1})
	if bucket, ok := c.registry.Bucket(task.Priority); ok {
		c.latch(bucket.Vector)
	}
	c.logger.V(1).Info("spawned", "task", id, "handle", h.String())
	return h, nil
}

func (c *Core) cancel(h spawn.Handle) bool {
	if !c.queue.Cancel(h) {
		return false
	}
	c.progress.Update(progress.Delta{Cancelled: 1})
	return true
}

func (c *Core) pend(vector string) error {
	v, err := c.hardwareVector(vector)
	if err != nil {
		return err
	}
	c.latch(v.Index)
	c.preempt()
	return nil
}

func (c *Core) now() timer.Instant {
	if c.clock == nil {
		c.abort(fmt.Errorf("%w: timer service is disabled", ErrProtocol))
	}
	return c.clock.Now()
}

func (c *Core) lock(task *registry.Task, resource string, ceiling int, body func() error) error {
	if !task.Uses(resource) {
		c.abort(fmt.Errorf("%w: %s locked undeclared resource %s", ErrProtocol, task.ID, resource))
	}
	if registered, _ := c.registry.Ceiling(resource); registered != ceiling {
		c.abort(fmt.Errorf("%w: %s locked %s with ceiling %d, want %d", ErrProtocol, task.ID, resource, ceiling, registered))
	}
	return c.locks.Lock(ceiling, body)
}

// abort halts on a protocol violation.
func (c *Core) abort(err error) {
	if !errors.Is(err, ErrProtocol) {
		err = fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	c.halt(err)
}

// halt reports err to the fault collaborator and unwinds to Run.
func (c *Core) halt(err error) {
	c.logger.Error(err, "scheduler halted", "boot", c.bootID, "task", c.current)
	c.fault(err)
	panic(halt{err: err})
}

// cause converts a recovered value to the error Run reports.
func (c *Core) cause(r any) error {
	if h, ok := r.(halt); ok {
		return h.err
	}
	return fmt.Errorf("%w: %s: %v", ErrPanic, c.current, r)
}

func (c *Core) recovered(r any) error {
	err := c.cause(r)
	if _, ok := r.(halt); ok {
		return err
	}
	c.logger.Error(err, "scheduler halted", "boot", c.bootID, "task", c.current)
	c.fault(err)
	return err
}
