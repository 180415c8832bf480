// Package storage abstracts the blob-storage collaborator: put an object,
// resolve its public URL, delete objects best-effort. Implementations are
// assumed atomic per call; cross-call consistency is the caller's problem.
package storage

import (
	"context"
	"io"
)

// ObjectStore is the blob-storage contract used by the photo upload unit and
// by the server-side cleanup paths.
type ObjectStore interface {
	// Put streams size bytes from r into the object at key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// PublicURL resolves a publicly reachable URL for a stored object.
	PublicURL(ctx context.Context, key string) (string, error)

	// Delete removes the given objects. Best-effort: it attempts every key
	// and returns the combined error of the ones that failed.
	Delete(ctx context.Context, keys ...string) error
}
