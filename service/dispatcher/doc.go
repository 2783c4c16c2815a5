// Package dispatcher emulates an interrupt-priority controller on a single
// goroutine, the core. Hardware tasks are bound to vectors and run to
// completion; software tasks are resumable routines spawned into per-priority
// buckets, each drained by a reserved dispatcher vector.
//
// A pending vector runs as soon as its priority is strictly above both the
// running priority and the ceiling register. The check happens at preemption
// points: a spawn, pend or wake performed on the core, the release of a lock,
// the completion of a task and the idle Wait/Poll calls. Requests raised from
// other goroutines are latched and serviced at the next preemption point.
package dispatcher
