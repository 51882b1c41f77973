package replica

import "context"

// Bucket provides typed object storage for T over any StorageAdapter.
// Wrap an Adapter's Storage view to replicate typed objects:
//
//	b := replica.NewBucket[Invoice](adapter.Storage())
type Bucket[T any] struct {
	storage StorageAdapter
	codec   Codec
}

// NewBucket creates a Bucket for type T backed by storage.
// Uses JSON codec by default.
func NewBucket[T any](storage StorageAdapter) *Bucket[T] {
	return &Bucket[T]{
		storage: storage,
		codec:   JSONCodec{},
	}
}

// NewBucketWithCodec creates a Bucket for type T with a custom codec.
// A nil codec falls back to JSONCodec.
func NewBucketWithCodec[T any](storage StorageAdapter, codec Codec) *Bucket[T] {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Bucket[T]{
		storage: storage,
		codec:   codec,
	}
}

// Get retrieves and decodes the object at key.
// Metadata is loaded when the storage is MetadataCapable.
func (b *Bucket[T]) Get(ctx context.Context, key string) (*Object[T], error) {
	data, err := b.storage.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	var payload T
	if err := b.codec.Decode(data, &payload); err != nil {
		return nil, err
	}
	if err := callAfterLoad(ctx, &payload); err != nil {
		return nil, err
	}

	obj := &Object[T]{
		Key:         key,
		ContentType: b.codec.ContentType(),
		Size:        int64(len(data)),
		Data:        payload,
	}
	if mc, ok := b.storage.(MetadataCapable); ok {
		md, err := mc.GetMetadata(ctx, key)
		if err != nil {
			return nil, err
		}
		obj.Metadata = md
		if ct, ok := md[MetadataContentType].(string); ok && ct != "" {
			obj.ContentType = ct
		}
	}
	return obj, nil
}

// Put encodes obj.Data and stores it at obj.Key along with obj.Metadata.
// The codec's content type is recorded under MetadataContentType.
func (b *Bucket[T]) Put(ctx context.Context, obj *Object[T]) error {
	if obj.Key == "" {
		return ErrInvalidKey
	}
	if err := callBeforeSave(ctx, &obj.Data); err != nil {
		return err
	}
	data, err := b.codec.Encode(obj.Data)
	if err != nil {
		return err
	}

	md := make(Metadata, len(obj.Metadata)+1)
	for k, v := range obj.Metadata {
		md[k] = v
	}
	md[MetadataContentType] = b.codec.ContentType()

	n, err := b.storage.Write(ctx, obj.Key, data, md)
	if err != nil {
		return err
	}
	obj.ContentType = b.codec.ContentType()
	obj.Size = int64(n)
	return callAfterSave(ctx, &obj.Data)
}

// Delete removes the object at key.
func (b *Bucket[T]) Delete(ctx context.Context, key string) error {
	if err := callBeforeDelete[T](ctx); err != nil {
		return err
	}
	if err := b.storage.Delete(ctx, key); err != nil {
		return err
	}
	return callAfterDelete[T](ctx)
}

// Exists checks whether a key exists.
func (b *Bucket[T]) Exists(ctx context.Context, key string) (bool, error) {
	return b.storage.Exists(ctx, key)
}

// Keys returns every key held by the storage.
func (b *Bucket[T]) Keys(ctx context.Context) ([]string, error) {
	return b.storage.Keys(ctx)
}
