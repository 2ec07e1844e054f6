// Package landlordauth implements the session and authentication core of
// the room-rental landlord client: establishing, persisting, restoring,
// and tearing down an authenticated session against the landlord REST API,
// while keeping a locally cached profile available for offline-tolerant
// reads.
//
// The [Manager], built through [Builder.Build], is the single source of
// truth for UI-observable auth state. It composes the network client
// (package client), the persistence layer (package storage), structured
// logging, lifecycle audit events, and counter metrics. The presentation
// layer calls Initialize once at cold start and then Login, Logout, and
// RefreshUser; State returns a race-free snapshot at any time.
//
// # Architecture boundaries
//
// landlordauth is the public surface. Wire types and the error taxonomy
// live in package api; the request lifecycle and retry policy in package
// client; persistence in package storage. Metric export for Prometheus and
// OpenTelemetry lives under metrics/export.
//
// # What this package must NOT do
//
//   - Serialize overlapping operations: the presentation layer keeps calls
//     non-overlapping (for example by disabling a submit control while a
//     login is in flight). Concurrent logins are last-writer-wins.
//   - Render anything: screens, navigation, theming computation, and
//     localization catalogs are external collaborators.
//   - Refresh or rotate tokens; only login, profile fetch, and logout
//     exist on the wire.
package landlordauth
