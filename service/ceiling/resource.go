package ceiling

import (
	"errors"
	"fmt"
)

var (
	// ErrUndeclared is returned when a resource is not part of the declaration.
	ErrUndeclared = errors.New("ceiling: undeclared resource")
	// ErrInitialized is returned when a resource is created twice.
	ErrInitialized = errors.New("ceiling: resource already initialized")
	// ErrNotOwner reports a local resource accessed by a task that does not own it.
	ErrNotOwner = errors.New("ceiling: local resource accessed by non-owner")
)

// Declarer resolves resource declarations while the application initialises.
type Declarer interface {
	// Declare marks the resource initialized and returns its ceiling (shared)
	// or owner task id (local).
	Declare(resource string, local bool) (ceiling int, owner string, err error)
}

// Accessor is implemented by every task context.
type Accessor interface {
	// TaskID returns the id of the running task.
	TaskID() string
	// Lock runs body as a critical section of the named resource.
	Lock(resource string, ceiling int, body func() error) error
	// Abort reports a protocol violation; it does not return.
	Abort(err error)
}

// Shared is a resource arbitrated by the ceiling protocol. The value is only
// reachable inside Lock.
type Shared[T any] struct {
	name    string
	ceiling int
	value   T
}

// NewShared creates the shared resource name with its initial value.
func NewShared[T any](d Declarer, name string, value T) (*Shared[T], error) {
	ceiling, _, err := d.Declare(name, false)
	if err != nil {
		return nil, err
	}
	return &Shared[T]{name: name, ceiling: ceiling, value: value}, nil
}

// Name returns the resource name.
func (s *Shared[T]) Name() string { return s.name }

// Ceiling returns the static ceiling.
func (s *Shared[T]) Ceiling() int { return s.ceiling }

// Lock runs fn with exclusive access to the value.
func (s *Shared[T]) Lock(cx Accessor, fn func(v *T) error) error {
	return cx.Lock(s.name, s.ceiling, func() error {
		return fn(&s.value)
	})
}

// Local is a resource owned by exactly one task; no arbitration is needed.
type Local[T any] struct {
	name  string
	owner string
	value T
}

// NewLocal creates the local resource name with its initial value.
func NewLocal[T any](d Declarer, name string, value T) (*Local[T], error) {
	_, owner, err := d.Declare(name, true)
	if err != nil {
		return nil, err
	}
	return &Local[T]{name: name, owner: owner, value: value}, nil
}

// Name returns the resource name.
func (l *Local[T]) Name() string { return l.name }

// Owner returns the owning task id.
func (l *Local[T]) Owner() string { return l.owner }

// Get returns the value to its owner.
func (l *Local[T]) Get(cx Accessor) *T {
	if id := cx.TaskID(); id != l.owner {
		cx.Abort(fmt.Errorf("%w: %s owned by %s, used by %s", ErrNotOwner, l.name, l.owner, id))
	}
	return &l.value
}
