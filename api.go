// Package replica provides a storage adapter that replicates mutations across
// two independent backends. Writes, deletes and renames are applied to both a
// master and a slave; every read is served by the master alone.
package replica

import (
	"context"
	"time"

	"github.com/zoobzio/replica/internal/shared"
)

// Semantic errors for replicated storage (re-exported from internal/shared).
var (
	ErrNotFound           = shared.ErrNotFound
	ErrNotSupported       = shared.ErrNotSupported
	ErrNilBackend         = shared.ErrNilBackend
	ErrPartialReplication = shared.ErrPartialReplication
	ErrInvalidKey         = shared.ErrInvalidKey
	ErrReadOnly           = shared.ErrReadOnly
)

// Metadata is re-exported from internal/shared for the public API.
type Metadata = shared.Metadata

// Listing is re-exported from internal/shared for the public API.
type Listing = shared.Listing

// File is re-exported from internal/shared for the public API.
type File = shared.File

// Stream is re-exported from internal/shared for the public API.
type Stream = shared.Stream

// StorageAdapter defines key-addressed storage operations.
// Both the master and the slave of an Adapter satisfy this interface.
type StorageAdapter interface {
	// Read retrieves the content stored at key.
	// Returns ErrNotFound if the key does not exist.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores content at key and returns the number of bytes written.
	// Metadata may be nil; backends without metadata support ignore it.
	Write(ctx context.Context, key string, content []byte, metadata Metadata) (int, error)

	// Delete removes the content at key.
	// Returns ErrNotFound if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Rename moves the content at key to newKey.
	// Returns ErrNotFound if key does not exist.
	Rename(ctx context.Context, key, newKey string) error

	// Exists checks whether a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Keys returns every key held by the backend.
	Keys(ctx context.Context) ([]string, error)

	// Mtime returns the last modification time of key.
	// Returns ErrNotFound if the key does not exist.
	Mtime(ctx context.Context, key string) (time.Time, error)

	// ListDirectory returns the entries below directory.
	// An empty directory lists the backend root.
	ListDirectory(ctx context.Context, directory string) (*Listing, error)

	// IsDirectory reports whether key names a directory.
	IsDirectory(ctx context.Context, key string) (bool, error)

	// CreateFile returns a file handle for key.
	CreateFile(ctx context.Context, key string) (*File, error)

	// CreateFileStream opens a streaming handle for key.
	// Returns ErrNotSupported if the backend cannot stream.
	CreateFileStream(ctx context.Context, key string) (Stream, error)
}

// MetadataCapable defines optional per-key metadata operations.
// A backend advertises metadata support by implementing this interface.
type MetadataCapable interface {
	// SetMetadata associates metadata with key.
	SetMetadata(ctx context.Context, key string, metadata Metadata) error

	// GetMetadata returns the metadata associated with key.
	GetMetadata(ctx context.Context, key string) (Metadata, error)
}

// FailureSink receives critical reports for backend mutation failures.
// Reports are fire-and-forget; the adapter never inspects the outcome.
type FailureSink interface {
	ReportCritical(ctx context.Context, failure Failure)
}
