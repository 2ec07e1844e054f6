// Package storage provides durable, best-effort key-value persistence for
// the session core: the auth session, the cached user profile, and the
// language/theme preferences, each under its own namespaced key.
//
// # Design
//
// A small Backend interface (Get/Set/Delete by key) abstracts the medium;
// Redis, file, and in-memory backends ship with the package. The typed Store
// on top absorbs every backend failure at this boundary: a failed read is an
// absent value, a failed write is a logged no-op. In-memory state held by
// the client and manager stays authoritative for the process lifetime even
// when persistence fails.
//
// ClearAll removes the session and profile records but deliberately
// preserves language and theme, which are user preferences independent of
// identity.
//
// # What this package must NOT do
//
//   - Return backend errors to callers of the typed Store.
//   - Import the root landlordauth package or client.
//   - Make authentication decisions; it only stores what it is given.
package storage
