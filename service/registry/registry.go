package registry

import "sort"

const (
	// IdleID identifies the idle task.
	IdleID = "idle"
	// IdlePriority is the priority the idle task runs at.
	IdlePriority = 0
	// MaxVectors is the number of vectors the pending latch can represent.
	MaxVectors = 64
)

// Kind classifies a registered task.
type Kind uint8

const (
	KindSoftware Kind = iota
	KindHardware
	KindIdle
)

func (k Kind) String() string {
	switch k {
	case KindSoftware:
		return "software"
	case KindHardware:
		return "hardware"
	case KindIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Task is the immutable, validated descriptor of a task.
type Task struct {
	Index     int
	ID        string
	Priority  int
	Kind      Kind
	Vector    string
	Singleton bool
	Shared    []string
	Local     []string

	shared map[string]bool
	local  map[string]bool
}

// Uses reports whether the task declared the shared resource.
func (t *Task) Uses(resource string) bool { return t.shared[resource] }

// Owns reports whether the task declared the local resource.
func (t *Task) Owns(resource string) bool { return t.local[resource] }

// VectorKind classifies a vector.
type VectorKind uint8

const (
	VectorHardware VectorKind = iota
	VectorDispatcher
	VectorTimer
)

func (k VectorKind) String() string {
	switch k {
	case VectorHardware:
		return "hardware"
	case VectorDispatcher:
		return "dispatcher"
	case VectorTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Vector is one entry of the emulated interrupt table. Index is the bit
// position in the pending latch; vectors are ordered by priority descending,
// then by declaration order, so a lower index never has a lower priority.
type Vector struct {
	Index    int
	Name     string
	Priority int
	Kind     VectorKind
	// Task is the bound hardware task index, -1 for dispatcher and timer vectors.
	Task int
}

// Bucket is the ready queue of one software priority level.
type Bucket struct {
	Priority int
	Vector   int
	Capacity int
	Tasks    []int
}

// Platform describes what the target supports.
type Platform struct {
	// MaxPriority is the highest task priority the interrupt hardware supports.
	MaxPriority int
	// TimerVector reserves a vector for the monotonic timer; empty disables it.
	TimerVector string
	// TimerPriority of the timer vector, 0 selects MaxPriority.
	TimerPriority int
	// DefaultCapacity is used for dispatchers without an explicit capacity.
	DefaultCapacity int
}

// Registry holds the derived static tables.
type Registry struct {
	name       string
	platform   Platform
	tasks      []*Task
	byID       map[string]*Task
	byPriority map[int][]*Task
	idle       *Task
	ceilings   map[string]int
	owners     map[string]string
	vectors    []*Vector
	byVector   map[string]*Vector
	buckets    map[int]*Bucket
	timer      *Vector
}

// Name returns the application name.
func (r *Registry) Name() string { return r.name }

// MaxPriority returns the highest supported priority.
func (r *Registry) MaxPriority() int { return r.platform.MaxPriority }

// Tasks returns all registered tasks, indexed by Task.Index.
func (r *Registry) Tasks() []*Task { return r.tasks }

// Task returns the task with the supplied id.
func (r *Registry) Task(id string) (*Task, bool) {
	task, ok := r.byID[id]
	return task, ok
}

// Idle returns the idle task descriptor.
func (r *Registry) Idle() *Task { return r.idle }

// ByPriority returns the tasks sharing a priority level.
func (r *Registry) ByPriority(priority int) []*Task { return r.byPriority[priority] }

// Priorities returns the priority levels in use, ascending.
func (r *Registry) Priorities() []int {
	result := make([]int, 0, len(r.byPriority))
	for p := range r.byPriority {
		result = append(result, p)
	}
	sort.Ints(result)
	return result
}

// Ceiling returns the ceiling of a shared resource.
func (r *Registry) Ceiling(resource string) (int, bool) {
	c, ok := r.ceilings[resource]
	return c, ok
}

// Ceilings returns a copy of all shared resource ceilings.
func (r *Registry) Ceilings() map[string]int {
	result := make(map[string]int, len(r.ceilings))
	for k, v := range r.ceilings {
		result[k] = v
	}
	return result
}

// Owner returns the task owning a local resource.
func (r *Registry) Owner(resource string) (string, bool) {
	owner, ok := r.owners[resource]
	return owner, ok
}

// Unused returns declared resources no task accesses.
func (r *Registry) Unused() []string {
	var result []string
	for name := range r.ceilings {
		used := false
		for _, task := range r.tasks {
			if task.Uses(name) {
				used = true
				break
			}
		}
		if !used && !r.idle.Uses(name) {
			result = append(result, name)
		}
	}
	for name, owner := range r.owners {
		if owner == "" {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// Vectors returns the vector table ordered by pending-latch bit.
func (r *Registry) Vectors() []*Vector { return r.vectors }

// Vector returns a vector by name.
func (r *Registry) Vector(name string) (*Vector, bool) {
	v, ok := r.byVector[name]
	return v, ok
}

// Bucket returns the software bucket of a priority level.
func (r *Registry) Bucket(priority int) (*Bucket, bool) {
	b, ok := r.buckets[priority]
	return b, ok
}

// Buckets returns software buckets ordered by priority ascending.
func (r *Registry) Buckets() []*Bucket {
	result := make([]*Bucket, 0, len(r.buckets))
	for _, b := range r.buckets {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority < result[j].Priority })
	return result
}

// Timer returns the timer vector, if the timer service is enabled.
func (r *Registry) Timer() (*Vector, bool) {
	return r.timer, r.timer != nil
}

func newTask(index int, id string, priority int, kind Kind, shared, local []string) *Task {
	task := &Task{
		Index:    index,
		ID:       id,
		Priority: priority,
		Kind:     kind,
		Shared:   append([]string(nil), shared...),
		Local:    append([]string(nil), local...),
		shared:   make(map[string]bool, len(shared)),
		local:    make(map[string]bool, len(local)),
	}
	for _, name := range shared {
		task.shared[name] = true
	}
	for _, name := range local {
		task.local[name] = true
	}
	return task
}
