// Package client owns the network request lifecycle against the landlord
// backend: login, profile fetch, and logout, plus the in-memory bearer
// token and the uniform retry policy applied to every call.
//
// # Design
//
// Each operation is one unit of work. Requests run through a retry wrapper
// that classifies failures with the api taxonomy: transient failures
// (network, 5xx, 408, 429) are retried with exponential backoff plus random
// jitter; auth failures and structural 4xx fail fast. The sleep and jitter
// functions are injectable so tests control timing deterministically.
//
// Persistence goes through the storage.Store handed in at construction:
// login writes the session and profile before returning success, a 401/403
// on an authenticated call tears both down (implicit logout), and logout
// always clears local state no matter what the server says.
//
// # What this package must NOT do
//
//   - Surface storage failures: the store boundary absorbs them.
//   - Hold UI-observable auth state; that belongs to the root manager.
//   - Refresh or rotate tokens; the backend issues exactly one per login.
package client
