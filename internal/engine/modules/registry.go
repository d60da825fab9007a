// Package modules resolves the module identity of source files and tracks
// which typedef names each resolved module declares. Both caches live for
// exactly one rewrite run and are owned by the run's context.
package modules

import (
	"path/filepath"
	"sync"

	"typeref/internal/core/errors"
	"typeref/internal/engine/comment"
	"typeref/internal/shared/observability"
	"typeref/internal/shared/util"
)

// FileInfo is the memoized identity of one source file. Immutable after
// first computation.
type FileInfo struct {
	Filename string   // normalized absolute path, identity key
	ModuleID string   // resolved module identifier, "" when no module scope
	Typedefs []string // typedef names declared in this file, scan order
}

// Registry lazily computes and memoizes FileInfo entries, keyed by
// normalized absolute path. The optional source argument is honored only on
// a cache miss; the first writer wins.
type Registry struct {
	mu       sync.Mutex
	fsys     FS
	roots    []string // absolute source roots, in configured order
	files    map[string]*FileInfo
	typedefs *TypedefIndex
}

func NewRegistry(fsys FS, roots []string, index *TypedefIndex) *Registry {
	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		if a, err := filepath.Abs(r); err == nil {
			abs = append(abs, a)
		} else {
			abs = append(abs, r)
		}
	}
	return &Registry{
		fsys:     fsys,
		roots:    abs,
		files:    make(map[string]*FileInfo),
		typedefs: index,
	}
}

// Roots returns the configured absolute source roots.
func (r *Registry) Roots() []string {
	out := make([]string, len(r.roots))
	copy(out, r.roots)
	return out
}

// Typedefs returns the index fed by this registry.
func (r *Registry) Typedefs() *TypedefIndex {
	return r.typedefs
}

// FileCount returns the number of memoized entries.
func (r *Registry) FileCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// FileInfo returns the memoized identity of filename, computing it on first
// request. A nil source means the file is read from the filesystem; a file
// that cannot be read is treated as empty text, so its identity degrades to
// no module scope rather than failing.
//
// The only error is a fatal configuration one: an argument-less @module
// declaration in a file that no configured source root contains.
func (r *Registry) FileInfo(filename string, source []byte) (*FileInfo, error) {
	key, err := normalize(filename)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "normalize path")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.files[key]; ok {
		observability.FileInfoCacheLookups.WithLabelValues("hit").Inc()
		return info, nil
	}
	observability.FileInfoCacheLookups.WithLabelValues("miss").Inc()

	if source == nil {
		// Missing or unreadable files scan as empty text.
		source, _ = r.fsys.ReadFile(key)
	}

	info, err := r.compute(key, string(source))
	if err != nil {
		return nil, err
	}

	r.typedefs.Record(info.ModuleID, info.Typedefs)
	r.files[key] = info
	return info, nil
}

// compute scans the file's doc comments for the first @module declaration
// and every @typedef name. Duplicate @module tags are ignored; first wins.
func (r *Registry) compute(key, source string) (*FileInfo, error) {
	info := &FileInfo{Filename: key}

	haveModule := false
	for _, block := range comment.Blocks(source) {
		if !haveModule {
			if name, ok := comment.ModuleTag(block.Text); ok {
				haveModule = true
				if name != "" {
					info.ModuleID = name
				} else {
					derived, err := r.deriveModuleID(key)
					if err != nil {
						return nil, err
					}
					info.ModuleID = derived
				}
			}
		}
		info.Typedefs = append(info.Typedefs, comment.TypedefNames(block.Text)...)
	}

	return info, nil
}

// deriveModuleID turns an extension-stripped path into a module identifier
// relative to the first configured source root that contains it.
func (r *Registry) deriveModuleID(key string) (string, error) {
	stripped := util.StripExt(key)
	for _, root := range r.roots {
		if rest, ok := util.TrimPathPrefix(stripped, root); ok {
			return rest, nil
		}
	}
	err := errors.Newf(errors.CodeConfigError, "no configured source root contains %q", key)
	return "", errors.AddContext(err, errors.CtxPath, key)
}

func normalize(filename string) (string, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
