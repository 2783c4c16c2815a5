package dispatcher

import "errors"

var (
	// ErrUnknownTask is returned when a task id is not registered.
	ErrUnknownTask = errors.New("dispatcher: unknown task")
	// ErrNotSoftware is returned when spawning or binding a routine for a hardware task.
	ErrNotSoftware = errors.New("dispatcher: not a software task")
	// ErrNotHardware is returned when binding a handler to a software task.
	ErrNotHardware = errors.New("dispatcher: not a hardware task")
	// ErrUnknownVector is returned when pending a vector that is not bound to a hardware task.
	ErrUnknownVector = errors.New("dispatcher: unknown hardware vector")
	// ErrStarted is returned when binding or running after Run was called.
	ErrStarted = errors.New("dispatcher: already started")
	// ErrProtocol reports a caller contract violation; it halts scheduling.
	ErrProtocol = errors.New("dispatcher: protocol violation")
	// ErrUninitialized reports a used resource that init did not create.
	ErrUninitialized = errors.New("dispatcher: resource not initialized")
	// ErrInit wraps the error returned by the init entry point.
	ErrInit = errors.New("dispatcher: init failed")
	// ErrPanic wraps a panic raised by a task body.
	ErrPanic = errors.New("dispatcher: task panicked")
)

// halt carries the fault error up to Run.
type halt struct {
	err error
}
