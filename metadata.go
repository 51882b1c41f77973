package replica

import (
	"context"

	"github.com/zoobzio/capitan"
)

// SupportsMetadata reports whether either backend is MetadataCapable.
func (a *Adapter) SupportsMetadata() bool {
	return a.master.meta != nil || a.slave.meta != nil
}

// SetMetadata applies metadata to every MetadataCapable backend, master first.
// Errors are returned unchanged and are not reported to the sink; a master
// error returns before the slave is attempted.
func (a *Adapter) SetMetadata(ctx context.Context, key string, metadata Metadata) error {
	if a.master.meta != nil {
		if err := a.master.meta.SetMetadata(ctx, key, metadata); err != nil {
			return err
		}
	}
	if a.slave.meta != nil {
		if err := a.slave.meta.SetMetadata(ctx, key, metadata); err != nil {
			return err
		}
	}

	capitan.Emit(ctx, MetadataSet,
		FieldAdapter.Field(a.name),
		FieldKey.Field(key),
	)
	return nil
}

// GetMetadata returns the master's metadata for key if the master is
// MetadataCapable, otherwise the slave's. Returns an empty Metadata when
// neither backend supports metadata. Results are never merged.
func (a *Adapter) GetMetadata(ctx context.Context, key string) (Metadata, error) {
	if a.master.meta != nil {
		return a.master.meta.GetMetadata(ctx, key)
	}
	if a.slave.meta != nil {
		return a.slave.meta.GetMetadata(ctx, key)
	}
	return Metadata{}, nil
}

// Ensure Adapter implements MetadataCapable.
var _ MetadataCapable = (*Adapter)(nil)
