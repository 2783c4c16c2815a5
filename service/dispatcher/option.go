package dispatcher

import (
	"github.com/go-logr/logr"
	"github.com/viant/rtsched/progress"
	"github.com/viant/rtsched/service/timer"
)

// Option configures the core.
type Option func(c *Core)

// WithLogger sets the diagnostic sink.
func WithLogger(logger logr.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// WithFault sets the collaborator invoked before scheduling halts.
func WithFault(fault func(err error)) Option {
	return func(c *Core) {
		c.fault = fault
	}
}

// WithMonotonic sets the timer driver.
func WithMonotonic(clock timer.Monotonic) Option {
	return func(c *Core) {
		c.clock = clock
	}
}

// WithDevice sets the peripheral handle passed to init.
func WithDevice(device any) Option {
	return func(c *Core) {
		c.device = device
	}
}

// WithProgress sets the counters tracker.
func WithProgress(p *progress.Progress) Option {
	return func(c *Core) {
		c.progress = p
	}
}

// WithTracing records a span per dispatch.
func WithTracing(enabled bool) Option {
	return func(c *Core) {
		c.tracing = enabled
	}
}

// WithBootID sets the identifier attached to logs and spans.
func WithBootID(id string) Option {
	return func(c *Core) {
		c.bootID = id
	}
}
