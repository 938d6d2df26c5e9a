package kv

import (
	"context"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != `{"a":1}` {
		t.Fatalf("get after set: %q ok=%v err=%v", got, ok, err)
	}

	// Overwrite replaces the whole value.
	if err := s.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, "k")
	if string(got) != `{"a":2}` {
		t.Fatalf("get after overwrite: %q", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key should be gone after delete")
	}
	// Second delete is a no-op.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreKeySanitized(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := s.Set(context.Background(), "../escape", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := filepath.Glob(filepath.Join(dir, "*.json")); err != nil {
		t.Fatalf("glob: %v", err)
	}
	got, ok, err := s.Get(context.Background(), "../escape")
	if err != nil || !ok || string(got) != "x" {
		t.Fatalf("sanitized key round trip failed: %q ok=%v err=%v", got, ok, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestNullStore(t *testing.T) {
	s := NewNull()
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("null store must never find anything: ok=%v err=%v", ok, err)
	}
}
