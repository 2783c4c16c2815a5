package dispatcher

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/viant/rtsched/service/ceiling"
	"github.com/viant/rtsched/service/spawn"
	"github.com/viant/rtsched/service/timer"
)

// InitContext is handed to the init entry point, which runs once before any
// vector is serviced. It creates resources and may spawn initial tasks.
type InitContext struct {
	core *Core
}

// Device returns the peripheral handle supplied by the platform.
func (cx *InitContext) Device() any { return cx.core.device }

// Logger returns the diagnostic sink.
func (cx *InitContext) Logger() logr.Logger {
	return cx.core.logger.WithValues("task", "init")
}

// Declare marks a resource created and resolves its ceiling or owner.
func (cx *InitContext) Declare(resource string, local bool) (int, string, error) {
	c := cx.core
	if c.phase != phaseInit {
		return 0, "", fmt.Errorf("%w: %s created outside init", ErrProtocol, resource)
	}
	if c.declared[resource] {
		return 0, "", fmt.Errorf("%w: %s", ceiling.ErrInitialized, resource)
	}
	if local {
		owner, ok := c.registry.Owner(resource)
		if !ok {
			return 0, "", fmt.Errorf("%w: local %s", ceiling.ErrUndeclared, resource)
		}
		c.declared[resource] = true
		return 0, owner, nil
	}
	value, ok := c.registry.Ceiling(resource)
	if !ok {
		return 0, "", fmt.Errorf("%w: shared %s", ceiling.ErrUndeclared, resource)
	}
	c.declared[resource] = true
	return value, "", nil
}

// Spawn enqueues an initial invocation; it starts once init returns.
func (cx *InitContext) Spawn(id string, args any) (spawn.Handle, error) {
	return cx.core.spawn(id, args)
}

// Now reads the monotonic clock.
func (cx *InitContext) Now() timer.Instant { return cx.core.now() }

// Cancel removes an initial invocation before scheduling starts.
func (cx *InitContext) Cancel(h spawn.Handle) bool { return cx.core.cancel(h) }
