// Package api defines the wire-level contract shared with the landlord
// backend: the User record, the auth session pairing, login credentials,
// the uniform response envelope, and the structured request error with its
// retry classification.
//
// # Architecture boundaries
//
// api is a leaf package. It performs no I/O and holds no state; it exists so
// that client, storage, and the root package agree on one set of types
// without import cycles.
//
// # What this package must NOT do
//
//   - Import any other landlordauth package.
//   - Make retry or persistence decisions (it only classifies errors;
//     acting on the classification belongs to client).
package api
