// Package otel provides OpenTelemetry metric bindings for landlordauth
// counters and the login latency histogram.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each
// counter and Int64ObservableGauge instruments per histogram bucket. A
// single callback reads [landlordauth.Manager.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate manager state.
package otel
