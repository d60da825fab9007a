package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizeSlashPath cleans a path and normalizes separators to forward
// slashes for module-identifier derivation.
func NormalizeSlashPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// HasPathPrefix returns true when p equals prefix or is contained within prefix.
func HasPathPrefix(p, prefix string) bool {
	p = NormalizeSlashPath(p)
	prefix = NormalizeSlashPath(prefix)
	if p == "" || prefix == "" {
		return p == prefix
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// TrimPathPrefix returns p relative to prefix with forward slashes, and true
// when prefix actually contains p.
func TrimPathPrefix(p, prefix string) (string, bool) {
	p = NormalizeSlashPath(p)
	prefix = NormalizeSlashPath(prefix)
	if !HasPathPrefix(p, prefix) {
		return "", false
	}
	if p == prefix {
		return "", true
	}
	if prefix == "" {
		return p, true
	}
	return strings.TrimPrefix(p, prefix+"/"), true
}

// StripExt removes the final extension from a path, if any.
func StripExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}

// WriteStringWithDirs writes string content with parent directories created.
func WriteStringWithDirs(path, content string, perm fs.FileMode) error {
	return WriteFileWithDirs(path, []byte(content), perm)
}
