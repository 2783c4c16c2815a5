package dispatcher

// Poll is the result of resuming a routine.
type Poll uint8

const (
	// Pending means the routine stopped at an await point, or yielded when
	// no await was registered.
	Pending Poll = iota
	// Done means the invocation completed.
	Done
)

func (p Poll) String() string {
	if p == Done {
		return "done"
	}
	return "pending"
}

// Routine is a resumable software task invocation. Each Resume runs one
// segment at the task priority.
type Routine interface {
	Resume(cx *Context) Poll
}

// RoutineFunc adapts a function to Routine.
type RoutineFunc func(cx *Context) Poll

// Resume calls f.
func (f RoutineFunc) Resume(cx *Context) Poll { return f(cx) }

// Factory creates the routine of one spawned invocation from its arguments.
type Factory func(args any) Routine

// RunToCompletion adapts a plain function that never suspends.
func RunToCompletion(fn func(cx *Context)) Routine {
	return RoutineFunc(func(cx *Context) Poll {
		fn(cx)
		return Done
	})
}

// Func returns a factory of run-to-completion routines.
func Func(fn func(cx *Context)) Factory {
	return func(any) Routine { return RunToCompletion(fn) }
}

type steps struct {
	segments []func(cx *Context)
	next     int
}

// Steps returns a routine running one segment per dispatch. A segment
// normally ends by registering an await; the next segment runs once it
// completes.
func Steps(segments ...func(cx *Context)) Routine {
	return &steps{segments: segments}
}

func (s *steps) Resume(cx *Context) Poll {
	if s.next >= len(s.segments) {
		return Done
	}
	s.segments[s.next](cx)
	s.next++
	if s.next == len(s.segments) {
		return Done
	}
	return Pending
}

// instance is the per-slot state of a started invocation.
type instance struct {
	routine Routine
}
