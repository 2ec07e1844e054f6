package internaldefs

import (
	landlordauth "github.com/roomrental/landlordauth"
)

// CounterDef binds one MetricID to its stable exported name.
type CounterDef struct {
	ID   landlordauth.MetricID
	Name string
	Help string
}

// HistogramDef binds one MetricID to its stable exported histogram name.
type HistogramDef struct {
	ID   landlordauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: landlordauth.MetricLoginSuccess, Name: "landlordauth_login_success_total", Help: "Successful logins."},
	{ID: landlordauth.MetricLoginFailure, Name: "landlordauth_login_failure_total", Help: "Logins failed for reasons other than rejected credentials."},
	{ID: landlordauth.MetricLoginInvalidCredentials, Name: "landlordauth_login_invalid_credentials_total", Help: "Logins rejected by the backend."},
	{ID: landlordauth.MetricSessionRestored, Name: "landlordauth_session_restored_total", Help: "Cold starts that found a persisted session."},
	{ID: landlordauth.MetricSessionRestoreMiss, Name: "landlordauth_session_restore_miss_total", Help: "Cold starts without a usable persisted session."},
	{ID: landlordauth.MetricProfileRefreshSuccess, Name: "landlordauth_profile_refresh_success_total", Help: "Successful live profile fetches."},
	{ID: landlordauth.MetricProfileRefreshFailure, Name: "landlordauth_profile_refresh_failure_total", Help: "Failed live profile fetches."},
	{ID: landlordauth.MetricImplicitLogout, Name: "landlordauth_implicit_logout_total", Help: "Sessions torn down after the backend rejected the token."},
	{ID: landlordauth.MetricLogout, Name: "landlordauth_logout_total", Help: "Explicit logouts."},
	{ID: landlordauth.MetricRetryAttempt, Name: "landlordauth_retry_attempt_total", Help: "Scheduled retries across all operations."},
	{ID: landlordauth.MetricRetryExhausted, Name: "landlordauth_retry_exhausted_total", Help: "Calls that failed every attempt."},
}

// HistogramDefs lists every exported histogram in render order.
var HistogramDefs = []HistogramDef{
	{ID: landlordauth.MetricLoginLatency, Name: "landlordauth_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// core's bucketing of login latency.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix carries the bounds in identifier-safe form for
// instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
