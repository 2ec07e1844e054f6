package landlordauth

import "github.com/roomrental/landlordauth/api"

// The terminal sentinels are defined in package api so the client can
// return them without importing this package; they are re-exported here
// because the presentation layer usually imports only landlordauth.
var (
	// ErrNotAuthenticated is returned when an authenticated operation is
	// invoked while no session is held.
	ErrNotAuthenticated = api.ErrNotAuthenticated
	// ErrInvalidCredentials is returned when the backend rejects a login;
	// callers may present it with a differentiated message.
	ErrInvalidCredentials = api.ErrInvalidCredentials
	// ErrSessionExpired is returned when the backend rejects the current
	// token mid-session; the local session is already torn down.
	ErrSessionExpired = api.ErrSessionExpired
)
