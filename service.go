package rtsched

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/rtsched/internal/idgen"
	"github.com/viant/rtsched/model"
	"github.com/viant/rtsched/progress"
	"github.com/viant/rtsched/service/dao/app"
	"github.com/viant/rtsched/service/dispatcher"
	"github.com/viant/rtsched/service/meta"
	"github.com/viant/rtsched/service/registry"
	"github.com/viant/rtsched/service/timer"
)

// Service represents a scheduler built for one application declaration.
type Service struct {
	config        *Config
	logger        logr.Logger
	fault         func(err error)
	clock         timer.Monotonic
	device        any
	progress      *progress.Progress
	tracing       bool
	metaBaseURL   string
	metaFsOptions []storage.Option
	metaService   *meta.Service
	appService    *app.Service

	bootID   string
	registry *registry.Registry
	core     *dispatcher.Core
}

// New validates the declaration and creates a scheduler for it.
func New(decl *model.App, options ...Option) (*Service, error) {
	s := newService(options)
	if err := s.build(decl); err != nil {
		return nil, err
	}
	return s, nil
}

func newService(options []Option) *Service {
	s := &Service{logger: logr.Discard(), bootID: idgen.Short()}
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	return s
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.applyDefaults()
	if s.progress == nil {
		s.progress = &progress.Progress{}
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.appService == nil {
		s.appService = app.New(app.WithMetaService(s.metaService))
	}
}

func (s *Service) build(decl *model.App) error {
	if err := s.config.Validate(); err != nil {
		return s.reject(fmt.Errorf("invalid config: %w", err))
	}
	platform := registry.Platform{
		MaxPriority:     s.config.MaxPriority(),
		TimerVector:     s.config.Timer.Vector,
		TimerPriority:   s.config.Timer.Priority,
		DefaultCapacity: s.config.Dispatcher.QueueCapacity,
	}
	reg, err := registry.Build(decl, platform)
	if err != nil {
		return s.reject(err)
	}
	if unused := reg.Unused(); len(unused) > 0 {
		s.logger.Info("unused shared resources", "app", reg.Name(), "resources", unused)
	}
	clock := s.clock
	if clock == nil && s.config.Timer.Vector != "" {
		clock = timer.NewHostClock(s.config.Timer.Resolution, 0)
	}
	options := []dispatcher.Option{
		dispatcher.WithLogger(s.logger),
		dispatcher.WithProgress(s.progress),
		dispatcher.WithTracing(s.tracing),
		dispatcher.WithBootID(s.bootID),
		dispatcher.WithDevice(s.device),
	}
	if s.fault != nil {
		options = append(options, dispatcher.WithFault(s.fault))
	}
	if clock != nil {
		options = append(options, dispatcher.WithMonotonic(clock))
	}
	core, err := dispatcher.New(reg, options...)
	if err != nil {
		return s.reject(err)
	}
	s.clock = clock
	s.registry = reg
	s.core = core
	return nil
}

// reject reports a configuration failure to the fault collaborator.
func (s *Service) reject(err error) error {
	s.logger.Error(err, "scheduler configuration rejected", "boot", s.bootID)
	if s.fault != nil {
		s.fault(err)
	}
	return err
}

// Registry returns the validated static tables.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Core returns the dispatcher.
func (s *Service) Core() *dispatcher.Core { return s.core }

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }

// BootID returns the identifier attached to logs and spans.
func (s *Service) BootID() string { return s.bootID }

// Clock returns the timer driver, nil when the timer is disabled.
func (s *Service) Clock() timer.Monotonic { return s.clock }

// BindHardware binds the handler of a hardware task.
func (s *Service) BindHardware(id string, handler func(cx *dispatcher.Context)) error {
	return s.core.BindHardware(id, handler)
}

// BindSoftware binds the routine factory of a software task.
func (s *Service) BindSoftware(id string, factory dispatcher.Factory) error {
	return s.core.BindSoftware(id, factory)
}

// BindInit sets the routine run once before interrupts are enabled.
func (s *Service) BindInit(init func(cx *dispatcher.InitContext) error) error {
	return s.core.BindInit(init)
}

// BindIdle sets the idle routine.
func (s *Service) BindIdle(idle func(cx *dispatcher.IdleContext)) error {
	return s.core.BindIdle(idle)
}

// Pend raises a hardware vector; safe from any goroutine.
func (s *Service) Pend(vector string) error {
	return s.core.Pend(vector)
}

// Run runs init, then dispatches until ctx is done or a fault halts scheduling.
func (s *Service) Run(ctx context.Context) error {
	err := s.core.Run(ctx)
	if closer, ok := s.clock.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	return err
}

// Reset returns the scheduler to its power-on state so Run can be called
// again. Bindings and counters are kept.
func (s *Service) Reset() error {
	return s.core.Reset()
}

// Stats returns a snapshot of the scheduling counters.
func (s *Service) Stats() progress.Counters {
	return s.progress.Snapshot()
}
