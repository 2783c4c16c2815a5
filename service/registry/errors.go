package registry

import (
	"errors"
	"fmt"
)

// ErrConfig is the root of every configuration error.
var ErrConfig = errors.New("invalid configuration")

var (
	ErrUndeclaredResource = fmt.Errorf("%w: undeclared resource", ErrConfig)
	ErrPriorityRange      = fmt.Errorf("%w: priority out of range", ErrConfig)
	ErrLocalConflict      = fmt.Errorf("%w: local resource conflict", ErrConfig)
	ErrDispatchers        = fmt.Errorf("%w: insufficient dispatchers", ErrConfig)
	ErrDuplicate          = fmt.Errorf("%w: duplicate declaration", ErrConfig)
	ErrVector             = fmt.Errorf("%w: invalid vector", ErrConfig)
	ErrSingleton          = fmt.Errorf("%w: invalid singleton", ErrConfig)
	ErrUnbound            = fmt.Errorf("%w: task without handler", ErrConfig)
)

// Error describes a single validation issue.
type Error struct {
	Kind error
	Task string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Task != "" {
		msg += ": task " + e.Task
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Issuef creates a validation issue of the supplied kind.
func Issuef(kind error, task string, format string, args ...any) error {
	return &Error{Kind: kind, Task: task, Msg: fmt.Sprintf(format, args...)}
}
