// Package model contains the declarative description of an application: its
// tasks, their priorities and interrupt bindings, and the shared and local
// resources they touch.
//
// An App is typically decoded from a YAML document (see service/dao/app) or
// built directly in Go, and is consumed exactly once by the registry, which
// validates it and derives the priority map and resource ceilings.
package model
