// Package resolver turns import specifiers written inside documentation
// comments into module identifiers, using the importing file's location and
// the run's file-info registry.
package resolver

import (
	"path/filepath"
	"strings"
	"sync"

	"typeref/internal/core/errors"
	"typeref/internal/engine/modules"
)

// Resolver resolves comment import specifiers to module identifiers.
// Results are memoized per (importer, specifier) pair so a run always sees a
// consistent snapshot even when the filesystem changes underneath it.
type Resolver struct {
	mu       sync.Mutex
	fsys     modules.FS
	registry *modules.Registry
	memo     map[string]string
}

func New(fsys modules.FS, registry *modules.Registry) *Resolver {
	return &Resolver{
		fsys:     fsys,
		registry: registry,
		memo:     make(map[string]string),
	}
}

// Resolve maps an import specifier, relative to the importing file, to a
// module identifier. Bare (non-relative) specifiers pass through unchanged
// with no filesystem access. A relative specifier is joined against the
// importer's directory, extension-inferred against the directory listing
// when needed, and delegated to the registry.
//
// The only error is the registry's fatal configuration error.
func (r *Resolver) Resolve(filename, importPath string) (string, error) {
	if !strings.HasPrefix(importPath, ".") {
		return importPath, nil
	}

	importer, err := filepath.Abs(filename)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "normalize importer path")
	}

	key := importer + "\x00" + importPath

	r.mu.Lock()
	if id, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	candidate := filepath.Join(filepath.Dir(importer), filepath.FromSlash(importPath))
	candidate = r.inferExtension(candidate)

	info, err := r.registry.FileInfo(candidate, nil)
	if err != nil {
		return "", errors.AddContext(err, errors.CtxSpecifier, importPath)
	}

	r.mu.Lock()
	r.memo[key] = info.ModuleID
	r.mu.Unlock()

	return info.ModuleID, nil
}

// inferExtension appends the extension of a sibling directory entry whose
// extension-stripped name equals the candidate's base name, when the
// candidate does not exist as a literal file. With no match the candidate is
// returned as given; the later file read degrades to empty text.
func (r *Resolver) inferExtension(candidate string) string {
	if r.fsys.Exists(candidate) {
		return candidate
	}

	names, err := r.fsys.ReadDir(filepath.Dir(candidate))
	if err != nil {
		return candidate
	}

	base := filepath.Base(candidate)
	for _, name := range names {
		ext := filepath.Ext(name)
		if ext != "" && strings.TrimSuffix(name, ext) == base {
			return candidate + ext
		}
	}
	return candidate
}
