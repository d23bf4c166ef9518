// Package telemetry instruments the Loom engine with Prometheus metrics
// and OpenTelemetry tracing.
//
// Both are opt-in. Construct a Metrics or Tracing value and hand it to
// loom.Config; a nil value disables that layer with no overhead beyond
// a branch per pump.
package telemetry
