// Package prometheus renders landlordauth metrics for Prometheus scrapes.
//
// [NewPrometheusExporter] accepts a [landlordauth.Manager] and exposes an
// http.Handler serving all counters and the login latency histogram in
// text exposition format. Counter names are prefixed landlordauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler.
//   - Mutate manager state.
package prometheus
