package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	tty "github.com/mattn/go-tty"
	"github.com/viant/rtsched"
	"github.com/viant/rtsched/progress"
	"github.com/viant/rtsched/service/ceiling"
	"github.com/viant/rtsched/service/dispatcher"
	"github.com/viant/rtsched/service/registry"
)

// runSimulate binds a logging handler to every task and pends hardware
// vectors from the keyboard: '1'..'9' pend the n-th hardware task, 's'
// prints counters, 'q' quits. Hardware handlers spawn every software task.
func runSimulate(ctx context.Context, args []string) error {
	f := newFlags("simulate")
	location, err := f.parse(args)
	if err != nil {
		return err
	}
	logger := f.logger()
	options, err := f.options(ctx, logger)
	if err != nil {
		return err
	}
	tracker := &progress.Progress{}
	options = append(options, rtsched.WithProgress(tracker))
	srv, err := rtsched.Load(ctx, location, options...)
	if err != nil {
		return err
	}
	sim := newSimulation(srv)
	tracker.OnChange(sim.observe)
	if err = sim.bind(); err != nil {
		return err
	}

	term, err := tty.Open()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer term.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sim.readKeys(ctx, term, cancel)
	fmt.Fprintf(term.Output(), "keys: 1..%d pend hardware tasks, s stats, q quit\r\n", len(sim.hardware))
	err = srv.Run(ctx)
	if err == context.Canceled {
		err = nil
	}
	sim.printStats(term.Output())
	return err
}

type simulation struct {
	srv      *rtsched.Service
	hardware []*registry.Task
	software []*registry.Task
	shared   map[string]*ceiling.Shared[int]
	local    map[string]*ceiling.Local[int]
	latest   atomic.Pointer[progress.Counters]
}

func newSimulation(srv *rtsched.Service) *simulation {
	s := &simulation{
		srv:    srv,
		shared: map[string]*ceiling.Shared[int]{},
		local:  map[string]*ceiling.Local[int]{},
	}
	for _, task := range srv.Registry().Tasks() {
		if task.Kind == registry.KindHardware {
			s.hardware = append(s.hardware, task)
		} else {
			s.software = append(s.software, task)
		}
	}
	return s
}

func (s *simulation) bind() error {
	reg := s.srv.Registry()
	if err := s.srv.BindInit(func(cx *dispatcher.InitContext) error {
		for name := range reg.Ceilings() {
			resource, err := ceiling.NewShared(cx, name, 0)
			if err != nil {
				return err
			}
			s.shared[name] = resource
		}
		owners := append([]*registry.Task{reg.Idle()}, reg.Tasks()...)
		for _, task := range owners {
			for _, name := range task.Local {
				resource, err := ceiling.NewLocal(cx, name, 0)
				if err != nil {
					return err
				}
				s.local[name] = resource
			}
		}
		return nil
	}); err != nil {
		return err
	}
	for _, task := range s.hardware {
		task := task
		if err := s.srv.BindHardware(task.ID, func(cx *dispatcher.Context) {
			s.touch(cx, task)
			for _, target := range s.software {
				if _, err := cx.Spawn(target.ID, task.ID); err != nil {
					cx.Logger().Info("spawn rejected", "target", target.ID, "err", err.Error())
				}
			}
		}); err != nil {
			return err
		}
	}
	for _, task := range s.software {
		task := task
		if err := s.srv.BindSoftware(task.ID, dispatcher.Func(func(cx *dispatcher.Context) {
			s.touch(cx, task)
		})); err != nil {
			return err
		}
	}
	return nil
}

// touch increments every resource the task declared.
func (s *simulation) touch(cx *dispatcher.Context, task *registry.Task) {
	for _, name := range task.Shared {
		_ = s.shared[name].Lock(cx, func(v *int) error {
			*v++
			return nil
		})
	}
	for _, name := range task.Local {
		*s.local[name].Get(cx)++
	}
	cx.Logger().Info("dispatched", "priority", task.Priority, "from", cx.Args())
}

func (s *simulation) readKeys(ctx context.Context, term *tty.TTY, cancel context.CancelFunc) {
	for ctx.Err() == nil {
		r, err := term.ReadRune()
		if err != nil {
			cancel()
			return
		}
		switch {
		case r == 'q':
			cancel()
			return
		case r == 's':
			s.printStats(term.Output())
		case r >= '1' && r <= '9':
			index := int(r - '1')
			if index >= len(s.hardware) {
				continue
			}
			if err := s.srv.Pend(s.hardware[index].Vector); err != nil {
				fmt.Fprintf(term.Output(), "%v\r\n", err)
			}
		}
	}
}

// observe stores the counters of the last dispatcher update.
func (s *simulation) observe(counters progress.Counters) {
	s.latest.Store(&counters)
}

func (s *simulation) printStats(out io.Writer) {
	stats := s.srv.Stats()
	if latest := s.latest.Load(); latest != nil {
		stats = *latest
	}
	fmt.Fprintf(out, "spawned=%d rejected=%d dispatched=%d completed=%d preempted=%d expired=%d\r\n",
		stats.Spawned, stats.Rejected, stats.Dispatched, stats.Completed, stats.Preempted, stats.Expired)
}
