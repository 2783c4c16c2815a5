package registry

import (
	"errors"
	"sort"

	"github.com/viant/rtsched/model"
)

// DefaultCapacity is the bucket capacity used when neither the dispatcher
// nor the platform sets one.
const DefaultCapacity = 8

// Build validates the declaration and derives the static tables. Every issue
// found is reported; the returned error wraps ErrConfig.
func Build(app *model.App, platform Platform) (*Registry, error) {
	if app == nil {
		return nil, Issuef(ErrConfig, "", "application declaration is nil")
	}
	if platform.MaxPriority <= 0 {
		return nil, Issuef(ErrPriorityRange, "", "platform supports no priority levels")
	}
	if platform.DefaultCapacity <= 0 {
		platform.DefaultCapacity = DefaultCapacity
	}
	b := &builder{
		app: app,
		registry: &Registry{
			name:       app.Name,
			platform:   platform,
			byID:       map[string]*Task{},
			byPriority: map[int][]*Task{},
			ceilings:   map[string]int{},
			owners:     map[string]string{},
			byVector:   map[string]*Vector{},
			buckets:    map[int]*Bucket{},
		},
		vectorOwner: map[string]string{},
	}
	b.resources()
	b.idle()
	b.tasks()
	b.vectors()
	if len(b.issues) > 0 {
		return nil, errors.Join(b.issues...)
	}
	return b.registry, nil
}

type builder struct {
	app         *model.App
	registry    *Registry
	issues      []error
	vectorOwner map[string]string
	pending     []*Vector
}

func (b *builder) issue(kind error, task string, format string, args ...any) {
	b.issues = append(b.issues, Issuef(kind, task, format, args...))
}

func (b *builder) resources() {
	r := b.registry
	for _, name := range b.app.Shared {
		if name == "" {
			b.issue(ErrConfig, "", "empty shared resource name")
			continue
		}
		if _, ok := r.ceilings[name]; ok {
			b.issue(ErrDuplicate, "", "shared resource %q declared twice", name)
			continue
		}
		r.ceilings[name] = IdlePriority
	}
	for _, name := range b.app.Local {
		if name == "" {
			b.issue(ErrConfig, "", "empty local resource name")
			continue
		}
		if _, ok := r.owners[name]; ok {
			b.issue(ErrDuplicate, "", "local resource %q declared twice", name)
			continue
		}
		if _, ok := r.ceilings[name]; ok {
			b.issue(ErrDuplicate, "", "resource %q declared both shared and local", name)
			continue
		}
		r.owners[name] = ""
	}
}

func (b *builder) idle() {
	var shared, local []string
	if b.app.Idle != nil {
		shared, local = b.app.Idle.Shared, b.app.Idle.Local
	}
	b.registry.idle = newTask(-1, IdleID, IdlePriority, KindIdle, shared, local)
	b.access(b.registry.idle)
}

// access validates resource references and records ownership and ceilings.
func (b *builder) access(task *Task) {
	r := b.registry
	for _, name := range task.Shared {
		ceiling, ok := r.ceilings[name]
		if !ok {
			if _, local := r.owners[name]; local {
				b.issue(ErrUndeclaredResource, task.ID, "%q is a local resource, not shared", name)
			} else {
				b.issue(ErrUndeclaredResource, task.ID, "shared resource %q", name)
			}
			continue
		}
		if task.Priority > ceiling {
			r.ceilings[name] = task.Priority
		}
	}
	for _, name := range task.Local {
		owner, ok := r.owners[name]
		if !ok {
			b.issue(ErrUndeclaredResource, task.ID, "local resource %q", name)
			continue
		}
		if owner != "" && owner != task.ID {
			b.issue(ErrLocalConflict, task.ID, "local resource %q already owned by %s", name, owner)
			continue
		}
		r.owners[name] = task.ID
	}
}

func (b *builder) tasks() {
	r := b.registry
	maxPriority := r.platform.MaxPriority
	for i, decl := range b.app.Tasks {
		if decl == nil {
			b.issue(ErrConfig, "", "task #%d is nil", i)
			continue
		}
		if decl.ID == "" {
			b.issue(ErrConfig, "", "task #%d has no id", i)
			continue
		}
		if decl.ID == IdleID {
			b.issue(ErrDuplicate, decl.ID, "id is reserved for the idle task")
			continue
		}
		if _, ok := r.byID[decl.ID]; ok {
			b.issue(ErrDuplicate, decl.ID, "task declared twice")
			continue
		}
		if decl.Priority < 1 || decl.Priority > maxPriority {
			b.issue(ErrPriorityRange, decl.ID, "priority %d outside 1..%d", decl.Priority, maxPriority)
			continue
		}
		kind := KindSoftware
		if decl.IsHardware() {
			kind = KindHardware
			if decl.Singleton {
				b.issue(ErrSingleton, decl.ID, "hardware tasks cannot be singleton")
			}
		}
		task := newTask(len(r.tasks), decl.ID, decl.Priority, kind, decl.Shared, decl.Local)
		task.Vector = decl.Vector
		task.Singleton = decl.Singleton
		b.access(task)
		r.tasks = append(r.tasks, task)
		r.byID[task.ID] = task
		r.byPriority[task.Priority] = append(r.byPriority[task.Priority], task)
	}
}

func (b *builder) claim(name, owner string, task string) bool {
	if name == "" {
		b.issue(ErrVector, task, "empty vector name for %s", owner)
		return false
	}
	if prev, ok := b.vectorOwner[name]; ok {
		b.issue(ErrVector, task, "vector %q bound to both %s and %s", name, prev, owner)
		return false
	}
	b.vectorOwner[name] = owner
	return true
}

func (b *builder) vectors() {
	r := b.registry
	for _, task := range r.tasks {
		if task.Kind != KindHardware {
			continue
		}
		if !b.claim(task.Vector, "task "+task.ID, task.ID) {
			continue
		}
		b.pending = append(b.pending, &Vector{Name: task.Vector, Priority: task.Priority, Kind: VectorHardware, Task: task.Index})
	}

	if name := r.platform.TimerVector; name != "" {
		priority := r.platform.TimerPriority
		if priority == 0 {
			priority = r.platform.MaxPriority
		}
		if priority < 1 || priority > r.platform.MaxPriority {
			b.issue(ErrPriorityRange, "", "timer priority %d outside 1..%d", priority, r.platform.MaxPriority)
		} else if b.claim(name, "timer", "") {
			r.timer = &Vector{Name: name, Priority: priority, Kind: VectorTimer, Task: -1}
			b.pending = append(b.pending, r.timer)
		}
	}

	var priorities []int
	for _, priority := range b.app.SoftwarePriorities() {
		if hasSoftware(r.byPriority[priority]) {
			priorities = append(priorities, priority)
		}
	}
	if len(b.app.Dispatchers) < len(priorities) {
		b.issue(ErrDispatchers, "", "%d software priority levels but %d dispatchers reserved", len(priorities), len(b.app.Dispatchers))
	}
	for i, dispatcher := range b.app.Dispatchers {
		if dispatcher == nil {
			b.issue(ErrDispatchers, "", "dispatcher #%d is nil", i)
			continue
		}
		if dispatcher.Capacity < 0 {
			b.issue(ErrDispatchers, "", "dispatcher %q has negative capacity", dispatcher.Vector)
			continue
		}
		if !b.claim(dispatcher.Vector, "dispatcher", "") || i >= len(priorities) {
			continue
		}
		capacity := dispatcher.Capacity
		if capacity == 0 {
			capacity = r.platform.DefaultCapacity
		}
		priority := priorities[i]
		vector := &Vector{Name: dispatcher.Vector, Priority: priority, Kind: VectorDispatcher, Task: -1}
		b.pending = append(b.pending, vector)
		bucket := &Bucket{Priority: priority, Capacity: capacity}
		for _, task := range r.byPriority[priority] {
			if task.Kind == KindSoftware {
				bucket.Tasks = append(bucket.Tasks, task.Index)
			}
		}
		r.buckets[priority] = bucket
	}

	if len(b.pending) > MaxVectors {
		b.issue(ErrVector, "", "%d vectors exceed the limit of %d", len(b.pending), MaxVectors)
		return
	}
	sort.SliceStable(b.pending, func(i, j int) bool {
		return b.pending[i].Priority > b.pending[j].Priority
	})
	for i, vector := range b.pending {
		vector.Index = i
		r.byVector[vector.Name] = vector
		if vector.Kind == VectorDispatcher {
			r.buckets[vector.Priority].Vector = i
		}
	}
	r.vectors = b.pending
}

func hasSoftware(tasks []*Task) bool {
	for _, task := range tasks {
		if task.Kind == KindSoftware {
			return true
		}
	}
	return false
}
