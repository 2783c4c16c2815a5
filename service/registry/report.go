package registry

import (
	"sort"

	"github.com/viant/rtsched/internal/yml"
	"gopkg.in/yaml.v3"
)

// Report renders the static tables as a YAML document: the priority map,
// the vector table, buckets and resource ceilings.
func (r *Registry) Report() *yaml.Node {
	root := (*yml.Node)(yml.NewMap())
	root.Put("name", r.name)
	root.Put("maxPriority", r.platform.MaxPriority)

	tasks := (*yml.Node)(yml.NewSlice())
	for _, priority := range r.Priorities() {
		for _, task := range r.byPriority[priority] {
			item := (*yml.Node)(yml.NewMap())
			item.Put("id", task.ID)
			item.Put("priority", task.Priority)
			item.Put("kind", task.Kind.String())
			if task.Vector != "" {
				item.Put("vector", task.Vector)
			}
			if len(task.Shared) > 0 {
				item.Put("shared", task.Shared)
			}
			if len(task.Local) > 0 {
				item.Put("local", task.Local)
			}
			if task.Singleton {
				item.Put("singleton", true)
			}
			tasks.Append(item)
		}
	}
	root.Put("tasks", tasks)

	vectors := (*yml.Node)(yml.NewSlice())
	for _, vector := range r.vectors {
		item := (*yml.Node)(yml.NewMap())
		item.Put("index", vector.Index)
		item.Put("name", vector.Name)
		item.Put("priority", vector.Priority)
		item.Put("kind", vector.Kind.String())
		if vector.Task >= 0 {
			item.Put("task", r.tasks[vector.Task].ID)
		}
		vectors.Append(item)
	}
	root.Put("vectors", vectors)

	buckets := (*yml.Node)(yml.NewSlice())
	for _, bucket := range r.Buckets() {
		item := (*yml.Node)(yml.NewMap())
		item.Put("priority", bucket.Priority)
		item.Put("vector", r.vectors[bucket.Vector].Name)
		item.Put("capacity", bucket.Capacity)
		var ids []string
		for _, index := range bucket.Tasks {
			ids = append(ids, r.tasks[index].ID)
		}
		item.Put("tasks", ids)
		buckets.Append(item)
	}
	root.Put("buckets", buckets)

	ceilings := (*yml.Node)(yml.NewMap())
	var names []string
	for name := range r.ceilings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ceilings.Put(name, r.ceilings[name])
	}
	root.Put("ceilings", ceilings)

	if unused := r.Unused(); len(unused) > 0 {
		root.Put("unused", unused)
	}
	return (*yaml.Node)(root)
}
