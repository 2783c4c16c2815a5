package rtsched

import (
	"errors"
	"fmt"
	"time"

	"github.com/viant/rtsched/service/spawn"
)

// Config is a serialisable representation of the scheduler configuration. It
// can be populated from JSON or YAML. The zero-value is useful – zero fields
// inherit DefaultConfig values.
type Config struct {
	Platform   PlatformConfig   `json:"platform" yaml:"platform"`
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher"`
	Timer      TimerConfig      `json:"timer" yaml:"timer"`
}

type PlatformConfig struct {
	// PriorityBits sets the number of priority levels to 1<<PriorityBits.
	PriorityBits int `json:"priorityBits" yaml:"priorityBits"`
}

type DispatcherConfig struct {
	QueueCapacity int `json:"queueCapacity" yaml:"queueCapacity"`
}

type TimerConfig struct {
	// Vector names the timer interrupt; empty disables the timer service.
	Vector string `json:"vector" yaml:"vector"`
	// Priority of the timer vector, 0 selects the highest level.
	Priority   int           `json:"priority" yaml:"priority"`
	Resolution time.Duration `json:"resolution" yaml:"resolution"`
}

// DefaultConfig returns a Config populated with the defaults used by New.
func DefaultConfig() *Config {
	return &Config{
		Platform:   PlatformConfig{PriorityBits: 3},
		Dispatcher: DispatcherConfig{QueueCapacity: 8},
		Timer:      TimerConfig{Vector: "SysTick", Resolution: time.Millisecond},
	}
}

// MaxPriority returns the number of priority levels.
func (c *Config) MaxPriority() int {
	return 1 << c.Platform.PriorityBits
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Platform.PriorityBits == 0 {
		c.Platform.PriorityBits = defaults.Platform.PriorityBits
	}
	if c.Dispatcher.QueueCapacity == 0 {
		c.Dispatcher.QueueCapacity = defaults.Dispatcher.QueueCapacity
	}
	if c.Timer.Resolution == 0 {
		c.Timer.Resolution = defaults.Timer.Resolution
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Platform.PriorityBits < 1 || c.Platform.PriorityBits > 6 {
		errs = append(errs, fmt.Errorf("platform.priorityBits must be in 1..6"))
	}
	if c.Dispatcher.QueueCapacity <= 0 || c.Dispatcher.QueueCapacity > spawn.MaxCapacity {
		errs = append(errs, fmt.Errorf("dispatcher.queueCapacity must be in 1..%d", spawn.MaxCapacity))
	}
	if c.Timer.Priority < 0 {
		errs = append(errs, fmt.Errorf("timer.priority must be >= 0"))
	}
	if c.Timer.Resolution < 0 {
		errs = append(errs, fmt.Errorf("timer.resolution must be > 0"))
	}
	return errors.Join(errs...)
}
