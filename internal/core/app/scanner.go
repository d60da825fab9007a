package app

import (
	"io/fs"
	"path/filepath"
	"sort"

	"typeref/internal/shared/util"
)

// ScanSources walks the configured source roots and returns every file whose
// extension is in scope, excludes applied, sorted for deterministic runs.
func (a *App) ScanSources() ([]string, error) {
	roots := uniqueRoots(a.Config.AbsoluteRoots())

	var files []string
	seen := make(map[string]bool)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range a.excludeDirs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.extFilter[filepath.Ext(path)] {
				return nil
			}
			for _, g := range a.excludeFiles {
				if g.Match(base) {
					return nil
				}
			}

			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// uniqueRoots drops roots nested inside other roots so overlapping
// configuration does not scan files twice.
func uniqueRoots(roots []string) []string {
	sorted := make([]string, len(roots))
	copy(sorted, roots)
	sort.Strings(sorted)

	var out []string
	for _, root := range sorted {
		nested := false
		for _, kept := range out {
			if util.HasPathPrefix(root, kept) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, root)
		}
	}
	return out
}
