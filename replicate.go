package replica

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
)

const defaultName = "replica"

// backend is a fixed storage slot with its metadata capability resolved once.
type backend struct {
	role    Role
	storage StorageAdapter
	meta    MetadataCapable // nil when the backend has no metadata support
}

func newBackend(role Role, storage StorageAdapter) backend {
	b := backend{role: role, storage: storage}
	if m, ok := storage.(MetadataCapable); ok {
		b.meta = m
	}
	return b
}

// Adapter replicates mutations across a master and a slave backend.
//
// Write, Delete and Rename are attempted on both backends regardless of the
// other's outcome; a backend error is reported to the FailureSink and turns the
// aggregate result false, but is never returned. Every read is served by the
// master and its errors are returned unchanged.
//
// An Adapter holds no mutable state after New and is safe for concurrent use
// when both backends are.
type Adapter struct {
	master backend
	slave  backend
	sink   FailureSink
	name   string
}

// New creates an Adapter over master and slave.
// Returns ErrNilBackend if either backend is nil.
func New(master, slave StorageAdapter, opts ...Option) (*Adapter, error) {
	if master == nil || slave == nil {
		return nil, ErrNilBackend
	}

	a := &Adapter{
		master: newBackend(RoleMaster, master),
		slave:  newBackend(RoleSlave, slave),
		sink:   NopSink{},
		name:   defaultName,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.sink == nil {
		a.sink = NopSink{}
	}
	if a.name == "" {
		a.name = defaultName
	}

	return a, nil
}

// attempt runs fn against b. A returned error is reported as critical and
// converted into a false result; it never reaches the caller.
func (a *Adapter) attempt(ctx context.Context, op Op, b backend, key string, fn func(StorageAdapter) error) bool {
	err := fn(b.storage)
	if err == nil {
		return true
	}

	a.sink.ReportCritical(ctx, Failure{Op: op, Role: b.role, Key: key, Err: err})
	capitan.Emit(ctx, failedSignal(op),
		FieldAdapter.Field(a.name),
		FieldKey.Field(key),
		FieldRole.Field(string(b.role)),
		FieldError.Field(err),
	)
	return false
}

// Delete removes key from the slave, then from the master.
// Returns true only if both backends succeeded.
func (a *Adapter) Delete(ctx context.Context, key string) bool {
	start := time.Now()

	slaveOK := a.attempt(ctx, OpDelete, a.slave, key, func(s StorageAdapter) error {
		return s.Delete(ctx, key)
	})
	masterOK := a.attempt(ctx, OpDelete, a.master, key, func(s StorageAdapter) error {
		return s.Delete(ctx, key)
	})

	ok := slaveOK && masterOK
	capitan.Emit(ctx, DeleteCompleted,
		FieldAdapter.Field(a.name),
		FieldKey.Field(key),
		FieldOK.Field(ok),
		FieldDuration.Field(time.Since(start)),
	)
	return ok
}

// Write stores content at key on the master, then on the slave.
// When both succeed it returns the slave's byte count and true; otherwise it
// returns 0 and false. The bool is authoritative: a successful zero-byte
// write returns (0, true).
func (a *Adapter) Write(ctx context.Context, key string, content []byte, metadata Metadata) (int, bool) {
	start := time.Now()

	masterOK := a.attempt(ctx, OpWrite, a.master, key, func(s StorageAdapter) error {
		_, err := s.Write(ctx, key, content, metadata)
		return err
	})

	var written int
	slaveOK := a.attempt(ctx, OpWrite, a.slave, key, func(s StorageAdapter) error {
		n, err := s.Write(ctx, key, content, metadata)
		written = n
		return err
	})

	ok := masterOK && slaveOK
	if !ok {
		written = 0
	}

	capitan.Emit(ctx, WriteCompleted,
		FieldAdapter.Field(a.name),
		FieldKey.Field(key),
		FieldOK.Field(ok),
		FieldBytes.Field(written),
		FieldDuration.Field(time.Since(start)),
	)
	return written, ok
}

// Rename moves key to newKey on the slave, then on the master.
// Returns true only if both backends succeeded.
func (a *Adapter) Rename(ctx context.Context, key, newKey string) bool {
	start := time.Now()

	slaveOK := a.attempt(ctx, OpRename, a.slave, key, func(s StorageAdapter) error {
		return s.Rename(ctx, key, newKey)
	})
	masterOK := a.attempt(ctx, OpRename, a.master, key, func(s StorageAdapter) error {
		return s.Rename(ctx, key, newKey)
	})

	ok := slaveOK && masterOK
	capitan.Emit(ctx, RenameCompleted,
		FieldAdapter.Field(a.name),
		FieldKey.Field(key),
		FieldNewKey.Field(newKey),
		FieldOK.Field(ok),
		FieldDuration.Field(time.Since(start)),
	)
	return ok
}

// Read retrieves the content at key from the master.
func (a *Adapter) Read(ctx context.Context, key string) ([]byte, error) {
	return a.master.storage.Read(ctx, key)
}

// Mtime returns the master's modification time for key.
func (a *Adapter) Mtime(ctx context.Context, key string) (time.Time, error) {
	return a.master.storage.Mtime(ctx, key)
}

// Exists checks whether key exists on the master.
func (a *Adapter) Exists(ctx context.Context, key string) (bool, error) {
	return a.master.storage.Exists(ctx, key)
}

// Keys returns the master's keys.
func (a *Adapter) Keys(ctx context.Context) ([]string, error) {
	return a.master.storage.Keys(ctx)
}

// ListDirectory lists directory on the master.
func (a *Adapter) ListDirectory(ctx context.Context, directory string) (*Listing, error) {
	return a.master.storage.ListDirectory(ctx, directory)
}

// IsDirectory reports whether key is a directory on the master.
func (a *Adapter) IsDirectory(ctx context.Context, key string) (bool, error) {
	return a.master.storage.IsDirectory(ctx, key)
}

// CreateFile returns the master's file handle for key.
func (a *Adapter) CreateFile(ctx context.Context, key string) (*File, error) {
	return a.master.storage.CreateFile(ctx, key)
}

// CreateFileStream opens the master's streaming handle for key.
func (a *Adapter) CreateFileStream(ctx context.Context, key string) (Stream, error) {
	return a.master.storage.CreateFileStream(ctx, key)
}

// Identities returns the concrete type names of the master and slave, for diagnostics.
func (a *Adapter) Identities() (master, slave string) {
	return fmt.Sprintf("%T", a.master.storage), fmt.Sprintf("%T", a.slave.storage)
}

// Name returns the name attached to events emitted by the adapter.
func (a *Adapter) Name() string {
	return a.name
}
