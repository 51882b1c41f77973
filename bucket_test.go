package replica

import (
	"context"
	"errors"
	"testing"
)

type testPayload struct {
	Field1 string `json:"field1"`
	Field2 int    `json:"field2"`
}

// failingCodec is a codec that can be configured to fail on encode or decode.
type failingCodec struct {
	encodeErr error
	decodeErr error
}

func (f *failingCodec) Encode(v any) ([]byte, error) {
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return JSONCodec{}.Encode(v)
}

func (f *failingCodec) Decode(data []byte, v any) error {
	if f.decodeErr != nil {
		return f.decodeErr
	}
	return JSONCodec{}.Decode(data, v)
}

func (*failingCodec) ContentType() string {
	return "application/json"
}

func TestNewBucket(t *testing.T) {
	storage := newMockAdapter("m", &callLog{})
	bucket := NewBucket[testPayload](storage)

	if bucket.storage != storage {
		t.Error("storage not set correctly")
	}
	if _, ok := bucket.codec.(JSONCodec); !ok {
		t.Error("codec should default to JSONCodec")
	}
}

func TestNewBucketWithCodec(t *testing.T) {
	storage := newMockAdapter("m", &callLog{})

	if _, ok := NewBucketWithCodec[testPayload](storage, GobCodec{}).codec.(GobCodec); !ok {
		t.Error("expected GobCodec")
	}
	if _, ok := NewBucketWithCodec[testPayload](storage, nil).codec.(JSONCodec); !ok {
		t.Error("expected JSONCodec fallback for nil codec")
	}
}

func TestBucket_PutGet(t *testing.T) {
	storage := newMockAdapter("m", &callLog{})
	bucket := NewBucket[testPayload](storage)
	ctx := context.Background()

	obj := &Object[testPayload]{Key: "obj1", Data: testPayload{Field1: "a", Field2: 42}}
	if err := bucket.Put(ctx, obj); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if obj.Size == 0 || obj.ContentType != "application/json" {
		t.Errorf("Put should fill size and content type: %+v", obj)
	}

	got, err := bucket.Get(ctx, "obj1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Data.Field1 != "a" || got.Data.Field2 != 42 {
		t.Errorf("got %+v", got.Data)
	}
	if got.Metadata != nil {
		t.Error("metadata should be nil for storage without metadata support")
	}
}

func TestBucket_Put_EmptyKey(t *testing.T) {
	bucket := NewBucket[testPayload](newMockAdapter("m", &callLog{}))

	if err := bucket.Put(context.Background(), &Object[testPayload]{}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestBucket_Metadata(t *testing.T) {
	storage := newMetaMock("m", &callLog{})
	bucket := NewBucket[testPayload](storage)
	ctx := context.Background()

	storage.data["obj"] = []byte(`{"field1":"x","field2":1}`)
	storage.meta["obj"] = Metadata{MetadataContentType: "text/custom", "owner": "alice"}

	got, err := bucket.Get(ctx, "obj")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ContentType != "text/custom" {
		t.Errorf("content type: got %s", got.ContentType)
	}
	if got.Metadata["owner"] != "alice" {
		t.Errorf("metadata: got %v", got.Metadata)
	}
}

func TestBucket_Get_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		bucket := NewBucket[testPayload](newMockAdapter("m", &callLog{}))
		if _, err := bucket.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("decode", func(t *testing.T) {
		storage := newMockAdapter("m", &callLog{})
		storage.data["k"] = []byte(`{}`)
		decodeErr := errors.New("decode")
		bucket := NewBucketWithCodec[testPayload](storage, &failingCodec{decodeErr: decodeErr})
		if _, err := bucket.Get(ctx, "k"); !errors.Is(err, decodeErr) {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}

func TestBucket_Put_EncodeError(t *testing.T) {
	storage := newMockAdapter("m", &callLog{})
	encodeErr := errors.New("encode")
	bucket := NewBucketWithCodec[testPayload](storage, &failingCodec{encodeErr: encodeErr})

	err := bucket.Put(context.Background(), &Object[testPayload]{Key: "k"})
	if !errors.Is(err, encodeErr) {
		t.Errorf("expected encode error, got %v", err)
	}
	if _, ok := storage.data["k"]; ok {
		t.Error("nothing should be written on encode failure")
	}
}

func TestBucket_Hooks(t *testing.T) {
	storage := newMockAdapter("m", &callLog{})
	bucket := NewBucket[hookedPayload](storage)
	ctx := context.Background()

	obj := &Object[hookedPayload]{Key: "k", Data: hookedPayload{Name: "n"}}
	if err := bucket.Put(ctx, obj); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if !obj.Data.beforeSaveCalled || !obj.Data.afterSaveCalled {
		t.Error("expected save hooks to run")
	}

	got, err := bucket.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.Data.afterLoadCalled {
		t.Error("expected AfterLoad to run")
	}
}

func TestBucket_Hooks_Abort(t *testing.T) {
	storage := newMockAdapter("m", &callLog{})
	storage.data["k"] = []byte(`{}`)
	bucket := NewBucket[rejectingPayload](storage)
	ctx := context.Background()

	if err := bucket.Put(ctx, &Object[rejectingPayload]{Key: "new"}); !errors.Is(err, errHook) {
		t.Errorf("Put: expected hook error, got %v", err)
	}
	if _, ok := storage.data["new"]; ok {
		t.Error("BeforeSave failure must abort the write")
	}

	if err := bucket.Delete(ctx, "k"); !errors.Is(err, errHook) {
		t.Errorf("Delete: expected hook error, got %v", err)
	}
	if _, ok := storage.data["k"]; !ok {
		t.Error("BeforeDelete failure must abort the delete")
	}
}

func TestBucket_OverAdapter(t *testing.T) {
	a, master, slave, _, _ := newTestAdapter(t)
	bucket := NewBucket[testPayload](a.Storage())
	ctx := context.Background()

	if err := bucket.Put(ctx, &Object[testPayload]{Key: "inv", Data: testPayload{Field1: "x"}}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if _, ok := master.data["inv"]; !ok {
		t.Error("master should hold the object")
	}
	if _, ok := slave.data["inv"]; !ok {
		t.Error("slave should hold the object")
	}

	slave.writeErr = errors.New("boom")
	err := bucket.Put(ctx, &Object[testPayload]{Key: "inv2"})
	if !errors.Is(err, ErrPartialReplication) {
		t.Errorf("expected ErrPartialReplication, got %v", err)
	}

	exists, _ := bucket.Exists(ctx, "inv")
	if !exists {
		t.Error("expected inv to exist")
	}
	keys, _ := bucket.Keys(ctx)
	if len(keys) != 2 {
		t.Errorf("keys: got %v", keys)
	}

	if err := bucket.Delete(ctx, "inv"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
