// Package blobstore provides the storage abstraction used for
// category-store snapshots: small immutable blobs addressed by name,
// with local-filesystem, in-memory and S3 implementations.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing immutable snapshot
// blobs.
type Store interface {
	// Put stores the contents of r under name, replacing any
	// existing blob.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the blob with the given name for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
}
