package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a stored file does not exist
var ErrObjectNotFound = errors.New("object not found")

// FileStorage stores document files (originals, archived versions and
// thumbnails) under opaque keys. Implementations must be safe for
// concurrent use.
type FileStorage interface {
	// Put stores the content read from r under the given key,
	// overwriting any existing object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Open returns a streaming reader over the object. The caller must
	// close the returned reader. The size is the object length in
	// bytes, or -1 when unknown.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under the key
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureReady prepares the backing store (bucket or directory)
	EnsureReady(ctx context.Context) error
}
