package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testBackend(t *testing.T, backend Storage) {
	t.Helper()
	ctx := context.Background()

	if _, err := backend.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing key, got %v", err)
	}

	if err := backend.Put(ctx, KeySavedForms, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := backend.Get(ctx, KeySavedForms)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Fatalf("round trip mismatch: %q", got)
	}

	// overwrite
	if err := backend.Put(ctx, KeySavedForms, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = backend.Get(ctx, KeySavedForms)
	if err != nil || string(got) != `[]` {
		t.Fatalf("overwrite round trip mismatch: %q, %v", got, err)
	}

	if err := backend.Delete(ctx, KeySavedForms); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := backend.Get(ctx, KeySavedForms); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// deleting an absent key is not an error
	if err := backend.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete of missing key must be a no-op, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	testBackend(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()

	value := []byte("original")
	if err := backend.Put(ctx, "k", value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'X'

	got, err := backend.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("backend shares storage with the caller: %q", got)
	}

	got[0] = 'Y'
	again, _ := backend.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("returned slice aliases the stored value: %q", again)
	}
}

func TestFile(t *testing.T) {
	backend, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	testBackend(t, backend)
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := first.Put(ctx, KeyTemplates, []byte(`[{"id":"t"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	second, err := NewFile(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := second.Get(ctx, KeyTemplates)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `[{"id":"t"}]` {
		t.Fatalf("value lost across reopen: %q", got)
	}
}

func TestFile_SanitizesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	if err := backend.Put(ctx, "../escape", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.json")); err == nil {
		t.Fatalf("key escaped the storage directory")
	}
	got, err := backend.Get(ctx, "../escape")
	if err != nil || string(got) != "x" {
		t.Fatalf("sanitized key round trip failed: %q, %v", got, err)
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	backend, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer backend.Close()
	testBackend(t, backend)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	first, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := first.Put(ctx, KeySubmissions, []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got, err := second.Get(ctx, KeySubmissions)
	if err != nil || string(got) != `[]` {
		t.Fatalf("value lost across reopen: %q, %v", got, err)
	}
}
