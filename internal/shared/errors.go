// Package shared contains canonical type definitions shared across replica.
package shared //nolint:revive // internal shared package is intentional

import "errors"

// Semantic errors for replicated storage operations.
var (
	// ErrNotFound indicates the requested key does not exist on the backend.
	ErrNotFound = errors.New("replica: key not found")

	// ErrNotSupported indicates the backend does not implement the operation.
	ErrNotSupported = errors.New("replica: operation not supported by backend")

	// ErrNilBackend indicates a master or slave backend was not provided.
	ErrNilBackend = errors.New("replica: nil backend")

	// ErrPartialReplication indicates a mutation did not succeed on both backends.
	ErrPartialReplication = errors.New("replica: mutation not applied to both backends")

	// ErrInvalidKey indicates the provided key is malformed or empty.
	ErrInvalidKey = errors.New("replica: invalid key")

	// ErrReadOnly indicates a mutation was attempted on a read-only backend.
	ErrReadOnly = errors.New("replica: read-only")
)
