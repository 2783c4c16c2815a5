// Package idgen wraps the UUID generator behind boot identifiers. Callers
// treat identifiers as opaque strings.
package idgen
