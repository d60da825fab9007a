package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"typeref/internal/engine/modules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestResolver(roots ...string) *Resolver {
	fsys := modules.OSFS()
	return New(fsys, modules.NewRegistry(fsys, roots, modules.NewTypedefIndex()))
}

func TestResolveBareSpecifierPassesThrough(t *testing.T) {
	r := newTestResolver(t.TempDir())
	id, err := r.Resolve("/irrelevant/view.js", "ol/layer")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "ol/layer" {
		t.Errorf("expected pass-through, got %q", id)
	}
}

func TestResolveRelativeWithExtension(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "model.js")
	view := filepath.Join(root, "view.js")
	writeFile(t, model, "/** @module */\n")
	writeFile(t, view, "")

	r := newTestResolver(root)
	id, err := r.Resolve(view, "./model.js")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "model" {
		t.Errorf("expected model, got %q", id)
	}
}

func TestResolveExtensionInference(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "model.js")
	view := filepath.Join(root, "view.js")
	writeFile(t, model, "/** @module */\n")
	writeFile(t, view, "")

	r := newTestResolver(root)
	id, err := r.Resolve(view, "./model")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "model" {
		t.Errorf("an extension-less specifier must resolve like ./model.js, got %q", id)
	}
}

func TestResolveParentRelative(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "path", "a", "model.js")
	view := filepath.Join(root, "path", "b", "view.js")
	writeFile(t, model, "/** @module call/me/ishmael */\n")
	writeFile(t, view, "")

	r := newTestResolver(root)
	id, err := r.Resolve(view, "../a/model")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "call/me/ishmael" {
		t.Errorf("expected call/me/ishmael, got %q", id)
	}
}

func TestResolveMissingFileDegrades(t *testing.T) {
	root := t.TempDir()
	view := filepath.Join(root, "view.js")
	writeFile(t, view, "")

	r := newTestResolver(root)
	id, err := r.Resolve(view, "./nothing")
	if err != nil {
		t.Fatalf("Resolve must not fail on a missing import: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty module id, got %q", id)
	}
}

func TestResolveMemoizedAcrossFilesystemChanges(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "model.js")
	view := filepath.Join(root, "view.js")
	writeFile(t, model, "/** @module stable */\n")
	writeFile(t, view, "")

	r := newTestResolver(root)
	first, err := r.Resolve(view, "./model")
	if err != nil {
		t.Fatal(err)
	}

	// A run sees a consistent snapshot even when the source changes.
	writeFile(t, model, "/** @module changed */\n")
	second, err := r.Resolve(view, "./model")
	if err != nil {
		t.Fatal(err)
	}
	if first != "stable" || second != "stable" {
		t.Errorf("expected stable twice, got %q then %q", first, second)
	}
}

func TestResolveSameFileThroughDifferentSpecifiers(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "a", "model.js")
	viewB := filepath.Join(root, "b", "view.js")
	viewC := filepath.Join(root, "a", "c", "view.js")
	writeFile(t, model, "/** @module foo/bar */\n")
	writeFile(t, viewB, "")
	writeFile(t, viewC, "")

	r := newTestResolver(root)
	fromB, err := r.Resolve(viewB, "../a/model")
	if err != nil {
		t.Fatal(err)
	}
	fromC, err := r.Resolve(viewC, "../model.js")
	if err != nil {
		t.Fatal(err)
	}
	if fromB != "foo/bar" || fromC != "foo/bar" {
		t.Errorf("expected foo/bar through every path, got %q and %q", fromB, fromC)
	}
}
