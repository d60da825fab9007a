package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeSlashPath(t *testing.T) {
	cases := map[string]string{
		"./src/model":     "src/model",
		"src\\sub\\a.js":  "src/sub/a.js",
		"  src/x/../y  ":  "src/y",
		".":               "",
		"":                "",
		"/abs/path/file":  "/abs/path/file",
		"src//double/sep": "src/double/sep",
	}
	for in, want := range cases {
		if got := NormalizeSlashPath(in); got != want {
			t.Errorf("NormalizeSlashPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasPathPrefix(t *testing.T) {
	if !HasPathPrefix("/src/a/b.js", "/src") {
		t.Error("expected /src to contain /src/a/b.js")
	}
	if !HasPathPrefix("/src", "/src") {
		t.Error("expected /src to contain itself")
	}
	if HasPathPrefix("/srcfoo/a.js", "/src") {
		t.Error("expected /src not to contain /srcfoo/a.js")
	}
	if HasPathPrefix("/other/a.js", "/src") {
		t.Error("expected /src not to contain /other/a.js")
	}
}

func TestTrimPathPrefix(t *testing.T) {
	rest, ok := TrimPathPrefix("/root/src/path/a/model.js", "/root/src")
	if !ok {
		t.Fatal("expected prefix match")
	}
	if rest != "path/a/model.js" {
		t.Errorf("expected path/a/model.js, got %q", rest)
	}

	if _, ok := TrimPathPrefix("/elsewhere/model.js", "/root/src"); ok {
		t.Error("expected no match outside the prefix")
	}
}

func TestStripExt(t *testing.T) {
	if got := StripExt("/src/model.js"); got != "/src/model" {
		t.Errorf("expected /src/model, got %q", got)
	}
	if got := StripExt("/src/model"); got != "/src/model" {
		t.Errorf("expected /src/model, got %q", got)
	}
}

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	keys := SortedStringKeys(m)
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("unexpected order: %v", keys)
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deep", "out.js")
	if err := WriteStringWithDirs(target, "content", 0o644); err != nil {
		t.Fatalf("WriteStringWithDirs failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("expected content, got %q", data)
	}
}
