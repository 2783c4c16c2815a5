// Package rtsched provides a real-time, interrupt-driven task scheduler
// emulated on the host.
//
// Tasks, shared and local resources are declared statically (for example in
// YAML). The scheduler validates the declaration, computes priority ceilings
// and runs tasks in response to emulated interrupt vectors. The service
// layers are:
//
//   - registry   – validation and static tables
//   - dispatcher – vector dispatch, preemption and task contexts
//   - ceiling    – immediate priority ceiling locks
//   - spawn      – fixed capacity software task queues
//   - timer      – wrap-safe monotonic time and deadlines
//
// End-users typically interact with the scheduler via the Service façade
// exposed by the root package:
//
//	srv, _ := rtsched.Load(ctx, "blinky.yaml")
//	_ = srv.BindHardware("button", onButton)
//	_ = srv.BindSoftware("blink", dispatcher.Func(blink))
//	err := srv.Run(ctx)
package rtsched
