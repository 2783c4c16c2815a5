package model

import "sort"

// Binding describes how a task is triggered.
type Binding uint8

const (
	// BindingSoftware tasks are started by spawn through a dispatcher vector.
	BindingSoftware Binding = iota
	// BindingHardware tasks are bound to a real interrupt vector.
	BindingHardware
)

func (b Binding) String() string {
	switch b {
	case BindingHardware:
		return "hardware"
	case BindingSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// App is the closed declaration of tasks and resources.
type App struct {
	// Name identifies the application in logs and traces
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Dispatchers lists otherwise unused vectors reserved for software tasks,
	// one per distinct software priority in use.
	Dispatchers []*Dispatcher `json:"dispatchers,omitempty" yaml:"dispatchers,omitempty"`

	// Shared lists resources arbitrated by the ceiling protocol
	Shared []string `json:"shared,omitempty" yaml:"shared,omitempty"`

	// Local lists resources owned by exactly one task
	Local []string `json:"local,omitempty" yaml:"local,omitempty"`

	// Idle declares resources used by the idle task
	Idle *Idle `json:"idle,omitempty" yaml:"idle,omitempty"`

	Tasks []*Task `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Dispatcher reserves a vector for a software priority level.
type Dispatcher struct {
	Vector string `json:"vector" yaml:"vector"`
	// Capacity overrides the default bucket capacity when positive
	Capacity int `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// Idle declares the resource usage of the idle task.
type Idle struct {
	Shared []string `json:"shared,omitempty" yaml:"shared,omitempty"`
	Local  []string `json:"local,omitempty" yaml:"local,omitempty"`
}

// Task declares a single task.
type Task struct {
	ID       string `json:"id" yaml:"id"`
	Priority int    `json:"priority" yaml:"priority"`
	// Vector binds the task to a hardware interrupt; empty means software task.
	Vector string   `json:"vector,omitempty" yaml:"vector,omitempty"`
	Shared []string `json:"shared,omitempty" yaml:"shared,omitempty"`
	Local  []string `json:"local,omitempty" yaml:"local,omitempty"`
	// Singleton rejects a spawn while another invocation of the task is live.
	Singleton bool `json:"singleton,omitempty" yaml:"singleton,omitempty"`
}

// Binding returns how the task is triggered.
func (t *Task) Binding() Binding {
	if t.Vector != "" {
		return BindingHardware
	}
	return BindingSoftware
}

// IsHardware reports whether the task is bound to an interrupt vector.
func (t *Task) IsHardware() bool { return t.Binding() == BindingHardware }

// SoftwarePriorities returns the distinct software priorities in ascending order.
func (a *App) SoftwarePriorities() []int {
	var result []int
	seen := map[int]bool{}
	for _, task := range a.Tasks {
		if task == nil || task.IsHardware() || seen[task.Priority] {
			continue
		}
		seen[task.Priority] = true
		result = append(result, task.Priority)
	}
	sort.Ints(result)
	return result
}
