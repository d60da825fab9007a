package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"typeref/internal/engine/rewrite"
	"typeref/internal/shared/util"
)

// writeOutputs materializes the run according to the configured output mode:
// in-place rewrites touched files only, a mirror directory receives every
// scanned file, and the TSV report lists the individual import rewrites.
// With neither in-place nor a mirror configured the run is a dry run.
func (a *App) writeOutputs(files []string, sources map[string]string, changed map[string]bool, rewrites []rewrite.ImportRewrite) []string {
	var warnings []string

	switch {
	case a.Config.Output.InPlace:
		for _, path := range util.SortedStringKeys(changed) {
			text, ok := sources[path]
			if !ok {
				continue
			}
			if err := util.WriteStringWithDirs(path, text, 0o644); err != nil {
				warnings = append(warnings, fmt.Sprintf("write %s: %v", path, err))
			}
		}
	case a.Config.Output.Dir != "":
		for _, path := range files {
			text, ok := sources[path]
			if !ok {
				continue
			}
			rel, ok := a.relativeToRoot(path)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("skip %s: outside configured roots", path))
				continue
			}
			dest := filepath.Join(a.Config.Output.Dir, rel)
			if err := util.WriteStringWithDirs(dest, text, 0o644); err != nil {
				warnings = append(warnings, fmt.Sprintf("write %s: %v", dest, err))
			}
		}
	}

	if a.Config.Output.TSV != "" {
		if err := writeTSVReport(a.Config.Output.TSV, rewrites); err != nil {
			warnings = append(warnings, fmt.Sprintf("write report %s: %v", a.Config.Output.TSV, err))
		}
	}

	for _, w := range warnings {
		slog.Warn("output", "detail", w)
	}
	return warnings
}

// relativeToRoot maps an absolute source path back to a path relative to the
// first configured root containing it.
func (a *App) relativeToRoot(path string) (string, bool) {
	norm := util.NormalizeSlashPath(path)
	for _, root := range a.Config.AbsoluteRoots() {
		if rest, ok := util.TrimPathPrefix(norm, util.NormalizeSlashPath(root)); ok {
			return filepath.FromSlash(rest), true
		}
	}
	return "", false
}

func writeTSVReport(path string, rewrites []rewrite.ImportRewrite) error {
	var b strings.Builder
	b.WriteString("file\toriginal\treplacement\n")
	for _, rw := range rewrites {
		b.WriteString(rw.File)
		b.WriteByte('\t')
		b.WriteString(rw.Original)
		b.WriteByte('\t')
		b.WriteString(rw.Replacement)
		b.WriteByte('\n')
	}
	return util.WriteStringWithDirs(path, b.String(), 0o644)
}
