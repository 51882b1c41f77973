package replica

import (
	"context"
	"time"
)

// Storage returns a StorageAdapter view of the Adapter, so a replica can act
// as the master or slave of another replica. Mutations that did not succeed on
// both backends return ErrPartialReplication; reads behave as on the Adapter.
// The view is MetadataCapable only when SupportsMetadata reports true.
func (a *Adapter) Storage() StorageAdapter {
	if a.SupportsMetadata() {
		return metadataView{storageView{a: a}}
	}
	return storageView{a: a}
}

type storageView struct {
	a *Adapter
}

func (v storageView) Write(ctx context.Context, key string, content []byte, metadata Metadata) (int, error) {
	n, ok := v.a.Write(ctx, key, content, metadata)
	if !ok {
		return 0, ErrPartialReplication
	}
	return n, nil
}

func (v storageView) Delete(ctx context.Context, key string) error {
	if !v.a.Delete(ctx, key) {
		return ErrPartialReplication
	}
	return nil
}

func (v storageView) Rename(ctx context.Context, key, newKey string) error {
	if !v.a.Rename(ctx, key, newKey) {
		return ErrPartialReplication
	}
	return nil
}

func (v storageView) Read(ctx context.Context, key string) ([]byte, error) {
	return v.a.Read(ctx, key)
}

func (v storageView) Exists(ctx context.Context, key string) (bool, error) {
	return v.a.Exists(ctx, key)
}

func (v storageView) Keys(ctx context.Context) ([]string, error) {
	return v.a.Keys(ctx)
}

func (v storageView) Mtime(ctx context.Context, key string) (time.Time, error) {
	return v.a.Mtime(ctx, key)
}

func (v storageView) ListDirectory(ctx context.Context, directory string) (*Listing, error) {
	return v.a.ListDirectory(ctx, directory)
}

func (v storageView) IsDirectory(ctx context.Context, key string) (bool, error) {
	return v.a.IsDirectory(ctx, key)
}

func (v storageView) CreateFile(ctx context.Context, key string) (*File, error) {
	return v.a.CreateFile(ctx, key)
}

func (v storageView) CreateFileStream(ctx context.Context, key string) (Stream, error) {
	return v.a.CreateFileStream(ctx, key)
}

type metadataView struct {
	storageView
}

func (v metadataView) SetMetadata(ctx context.Context, key string, metadata Metadata) error {
	return v.a.SetMetadata(ctx, key, metadata)
}

func (v metadataView) GetMetadata(ctx context.Context, key string) (Metadata, error) {
	return v.a.GetMetadata(ctx, key)
}

// Ensure views implement their capabilities.
var (
	_ StorageAdapter  = storageView{}
	_ StorageAdapter  = metadataView{}
	_ MetadataCapable = metadataView{}
)
