package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"typeref/internal/core/config"
	"typeref/internal/core/errors"
	"typeref/internal/data/history"
)

const modelSource = `/**
 * @module
 */

/**
 * @typedef {Object} Address
 */

/**
 * Formats an {Address} for display.
 */
export function format(addr) {}
`

const mainSource = `/**
 * @param {import('./model').Address} addr
 */
export function print(addr) {}
`

func testConfig(root string) *config.Config {
	return &config.Config{
		SourceRoots: []string{root},
		Scan:        config.Scan{Extensions: []string{".js"}},
		Exclude:     config.Exclude{Dirs: []string{"node_modules"}},
		Watch:       config.Watch{Debounce: 50 * time.Millisecond, RescanRate: 100, RescanBurst: 10},
	}
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunMirrorsRewrittenSources(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()
	writeSource(t, filepath.Join(root, "model.js"), modelSource)
	writeSource(t, filepath.Join(root, "main.js"), mainSource)

	cfg := testConfig(root)
	cfg.Output.Dir = outDir
	cfg.Output.TSV = filepath.Join(outDir, "rewrites.tsv")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
	}
	if result.ImportsRewritten != 1 {
		t.Errorf("ImportsRewritten = %d, want 1", result.ImportsRewritten)
	}
	if result.ImportsUnresolved != 0 {
		t.Errorf("ImportsUnresolved = %d, want 0", result.ImportsUnresolved)
	}
	if result.ModulesIndexed != 1 || result.TypedefsIndexed != 1 {
		t.Errorf("indexed modules=%d typedefs=%d, want 1 and 1", result.ModulesIndexed, result.TypedefsIndexed)
	}
	if result.FilesChanged != 2 {
		t.Errorf("FilesChanged = %d, want 2", result.FilesChanged)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	mainOut, err := os.ReadFile(filepath.Join(outDir, "main.js"))
	if err != nil {
		t.Fatalf("read mirrored main.js: %v", err)
	}
	if !strings.Contains(string(mainOut), "{module:model~Address}") {
		t.Errorf("mirrored main.js missing rewritten reference:\n%s", mainOut)
	}

	modelOut, err := os.ReadFile(filepath.Join(outDir, "model.js"))
	if err != nil {
		t.Fatalf("read mirrored model.js: %v", err)
	}
	if !strings.Contains(string(modelOut), "Formats an {module:model~Address}") {
		t.Errorf("mirrored model.js missing qualified typedef reference:\n%s", modelOut)
	}

	report, err := os.ReadFile(cfg.Output.TSV)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(report), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("report has %d lines, want header plus 1 rewrite:\n%s", len(lines), report)
	}
	if !strings.Contains(lines[1], "module:model~Address") {
		t.Errorf("report row = %q", lines[1])
	}

	// Source tree stays untouched in mirror mode.
	orig, err := os.ReadFile(filepath.Join(root, "main.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != mainSource {
		t.Error("mirror mode modified the source tree")
	}
}

func TestRunInPlace(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "model.js"), modelSource)
	writeSource(t, filepath.Join(root, "main.js"), mainSource)

	cfg := testConfig(root)
	cfg.Output.InPlace = true

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "main.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "{module:model~Address}") {
		t.Errorf("in-place run did not rewrite main.js:\n%s", data)
	}
}

func TestRunCountsUnresolvedImports(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "main.js"), `/**
 * @param {import('./missing').Phantom} p
 */
export function use(p) {}
`)

	a, err := New(testConfig(root))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ImportsRewritten != 0 {
		t.Errorf("ImportsRewritten = %d, want 0", result.ImportsRewritten)
	}
	if result.ImportsUnresolved != 1 {
		t.Errorf("ImportsUnresolved = %d, want 1", result.ImportsUnresolved)
	}
}

func TestScanSourcesAppliesExcludes(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "keep.js"), "")
	writeSource(t, filepath.Join(root, "skip.min.js"), "")
	writeSource(t, filepath.Join(root, "notes.txt"), "")
	writeSource(t, filepath.Join(root, "node_modules", "dep", "index.js"), "")

	cfg := testConfig(root)
	cfg.Exclude.Files = []string{"*.min.js"}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	files, err := a.ScanSources()
	if err != nil {
		t.Fatalf("ScanSources: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.js" {
		t.Errorf("ScanSources = %v, want only keep.js", files)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "model.js"), modelSource)

	cfg := testConfig(root)
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer store.Close()

	runs, err := store.LoadRuns(time.Time{})
	if err != nil {
		t.Fatalf("LoadRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != result.RunID {
		t.Fatalf("history = %+v, want one run %s", runs, result.RunID)
	}
}

func TestRecentRuns(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "model.js"), modelSource)

	disabled, err := New(testConfig(root))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer disabled.Close(context.Background())
	if _, err := disabled.RecentRuns(1); !errors.IsCode(err, errors.CodeConfigError) {
		t.Errorf("disabled history error = %v, want CONFIG_ERROR", err)
	}

	cfg := testConfig(root)
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	first, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	recent, err := a.RecentRuns(1)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(recent) != 1 || recent[0].RunID != second.RunID {
		t.Errorf("RecentRuns(1) = %+v, want newest run %s", recent, second.RunID)
	}

	all, err := a.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(all) != 2 || all[0].RunID != second.RunID || all[1].RunID != first.RunID {
		t.Errorf("RecentRuns(0) order = %+v, want newest first", all)
	}
}

func TestLastResultAndHealth(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "model.js"), modelSource)

	a, err := New(testConfig(root))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	health := NewHealthService(a)
	if status := health.Check(context.Background()); status.Components["pipeline"] != "no completed run yet" {
		t.Errorf("pipeline component before run = %q", status.Components["pipeline"])
	}
	if _, ok := a.LastResult(); ok {
		t.Error("LastResult reported a run before any completed")
	}

	want, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, ok := a.LastResult()
	if !ok || got.RunID != want.RunID {
		t.Errorf("LastResult = %+v ok=%v, want run %s", got, ok, want.RunID)
	}
	if status := health.Check(context.Background()); status.Status != "up" {
		t.Errorf("health status = %q, want up", status.Status)
	}
}

func TestWatcherTriggersRerun(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "model.js"), modelSource)

	a, err := New(testConfig(root))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	updates := make(chan Update, 4)
	a.SetUpdateCallback(func(u Update) { updates <- u })

	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("initial run: %v", err)
	}
	<-updates

	if err := a.StartWatcher(context.Background()); err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	writeSource(t, filepath.Join(root, "main.js"), mainSource)

	select {
	case u := <-updates:
		if u.Result.FilesScanned != 2 {
			t.Errorf("rerun scanned %d files, want 2", u.Result.FilesScanned)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no rerun after source change")
	}
}
