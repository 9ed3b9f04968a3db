package render

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(ctx context.Context, form model.Form, opts Options) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubRenderer{name: "plain"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	renderer, err := registry.Get("plain")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if renderer.Name() != "plain" {
		t.Fatalf("unexpected renderer %q", renderer.Name())
	}
}

func TestRegistry_DuplicateNameFails(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubRenderer{name: "plain"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := registry.Register(stubRenderer{name: "plain"})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestRegistry_EmptyNameFails(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected an error for an empty name")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected an error for a nil renderer")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Get("missing"); err == nil {
		t.Fatalf("expected an error for an unknown renderer")
	}
}

func TestRegistry_ListIsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(stubRenderer{name: "zeta"})
	registry.MustRegister(stubRenderer{name: "alpha"})
	registry.MustRegister(stubRenderer{name: "mid"})

	want := []string{"alpha", "mid", "zeta"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
	if !registry.Has("mid") || registry.Has("other") {
		t.Fatalf("Has reports wrong membership")
	}
}

func TestSortedHiddenFields(t *testing.T) {
	fields := map[string]string{
		"token":   "abc",
		"form_id": "f1",
		"  ":      "dropped",
	}
	sorted := SortedHiddenFields(fields)
	if len(sorted) != 2 {
		t.Fatalf("expected 2 fields, got %v", sorted)
	}
	if sorted[0].Name != "form_id" || sorted[1].Name != "token" {
		t.Fatalf("expected sorted names, got %v", sorted)
	}
}

func TestMergeHiddenFields(t *testing.T) {
	base := map[string]string{"a": "1"}
	merged := MergeHiddenFields(base, Hidden("b", 2), Hidden("a", "override"), Hidden("", "dropped"))
	if len(merged) != 2 {
		t.Fatalf("unexpected merge result: %v", merged)
	}
	if merged["a"] != "override" || merged["b"] != "2" {
		t.Fatalf("unexpected values: %v", merged)
	}
	if MergeHiddenFields(nil) != nil {
		t.Fatalf("merging nothing must stay nil")
	}
}
