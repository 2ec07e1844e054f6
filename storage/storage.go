package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend implementations when a key is absent.
// The typed Store translates it into a plain cache miss without logging.
var ErrNotFound = errors.New("storage: key not found")

// Backend is the persistence medium underneath the typed Store. Values are
// opaque strings; encoding is the Store's concern. Implementations must be
// safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
