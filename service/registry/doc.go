// Package registry validates an application declaration and derives the
// static tables every other component consumes: the priority to task map,
// the vector table realising priorities, the software-task buckets and the
// ceiling of every shared resource.
//
// A registry is built once before scheduling starts and is never mutated
// afterwards. Any validation failure is a fatal configuration error.
package registry
