// Package shared provides canonical type definitions used across replica modules.
package shared //nolint:revive // internal shared package is intentional

import (
	"io"
	"time"
)

// Metadata holds arbitrary per-key values for metadata-capable backends.
type Metadata map[string]any

// Listing holds the result of a directory listing.
type Listing struct {
	// Keys are the non-directory entries below the listed directory.
	Keys []string

	// Dirs are the directory entries below the listed directory.
	Dirs []string
}

// File is a backend-provided handle describing a single key.
type File struct {
	Key     string
	Name    string
	Size    int64
	ModTime time.Time
}

// Stream is a backend-provided streaming handle for a single key.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}
