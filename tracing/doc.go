// Package tracing integrates OpenTelemetry with the scheduler to record one
// span per vector dispatch. All instrumentation is kept in a separate package
// so that applications which do not require tracing never install a
// provider.
package tracing
