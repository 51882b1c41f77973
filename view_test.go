package replica

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAdapter_Storage_Mutations(t *testing.T) {
	a, master, slave, _, _ := newTestAdapter(t)
	s := a.Storage()
	ctx := context.Background()

	n, err := s.Write(ctx, "a.txt", []byte("data"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("bytes: got %d, want 4", n)
	}

	if err := s.Rename(ctx, "a.txt", "b.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := master.data["b.txt"]; !ok {
		t.Error("master rename not applied")
	}
	if _, ok := slave.data["b.txt"]; !ok {
		t.Error("slave rename not applied")
	}

	if err := s.Delete(ctx, "b.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdapter_Storage_PartialReplication(t *testing.T) {
	a, master, slave, _, _ := newTestAdapter(t)
	slave.writeErr = errors.New("boom")
	slave.deleteErr = errors.New("boom")
	slave.renameErr = errors.New("boom")
	master.data["k"] = []byte("x")
	s := a.Storage()
	ctx := context.Background()

	if _, err := s.Write(ctx, "a.txt", []byte("x"), nil); !errors.Is(err, ErrPartialReplication) {
		t.Errorf("Write: expected ErrPartialReplication, got %v", err)
	}
	if err := s.Rename(ctx, "k", "k2"); !errors.Is(err, ErrPartialReplication) {
		t.Errorf("Rename: expected ErrPartialReplication, got %v", err)
	}
	if err := s.Delete(ctx, "k2"); !errors.Is(err, ErrPartialReplication) {
		t.Errorf("Delete: expected ErrPartialReplication, got %v", err)
	}
}

func TestAdapter_Storage_Reads(t *testing.T) {
	a, master, _, _, log := newTestAdapter(t)
	master.data["a.txt"] = []byte("x")
	s := a.Storage()
	ctx := context.Background()

	data, err := s.Read(ctx, "a.txt")
	if err != nil || string(data) != "x" {
		t.Errorf("Read: got %q, %v", data, err)
	}
	if ok, _ := s.Exists(ctx, "a.txt"); !ok {
		t.Error("Exists: expected true")
	}
	_, _ = s.Keys(ctx)
	_, _ = s.Mtime(ctx, "a.txt")
	_, _ = s.ListDirectory(ctx, "")
	_, _ = s.IsDirectory(ctx, "a.txt")
	_, _ = s.CreateFile(ctx, "a.txt")
	_, _ = s.CreateFileStream(ctx, "a.txt")

	for _, c := range log.list() {
		if !strings.HasPrefix(c, "master.") {
			t.Errorf("read path reached %s", c)
		}
	}
}

func TestAdapter_Storage_MetadataCapability(t *testing.T) {
	t.Run("without metadata", func(t *testing.T) {
		a, _, _, _, _ := newTestAdapter(t)
		if _, ok := a.Storage().(MetadataCapable); ok {
			t.Error("view should not advertise metadata support")
		}
	})

	t.Run("with metadata", func(t *testing.T) {
		log := &callLog{}
		master := newMetaMock("master", log)
		a, _ := New(master, newMockAdapter("slave", log))

		mc, ok := a.Storage().(MetadataCapable)
		if !ok {
			t.Fatal("view should advertise metadata support")
		}
		ctx := context.Background()
		if err := mc.SetMetadata(ctx, "k", Metadata{"a": 1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		md, _ := mc.GetMetadata(ctx, "k")
		if md["a"] != 1 {
			t.Errorf("got %v", md)
		}
	})
}

func TestAdapter_Storage_Chained(t *testing.T) {
	log := &callLog{}
	inner, err := New(newMockAdapter("a", log), newMockAdapter("b", log))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	outer, err := New(inner.Storage(), newMockAdapter("c", log))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, ok := outer.Write(context.Background(), "k", []byte("v"), nil); !ok {
		t.Fatal("expected chained write to succeed")
	}
	equalCalls(t, log.list(), []string{"a.write", "b.write", "c.write"})
}
