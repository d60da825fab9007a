package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLoadRun(t *testing.T) {
	store := openTestStore(t)

	snapshot := RunSnapshot{
		RunID:             "run-1",
		Timestamp:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:          250 * time.Millisecond,
		FilesScanned:      12,
		CommentsSeen:      40,
		ImportsRewritten:  9,
		ImportsUnresolved: 1,
		ModulesIndexed:    5,
		TypedefsIndexed:   17,
	}
	if err := store.SaveRun(snapshot); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := store.LoadRuns(time.Time{})
	if err != nil {
		t.Fatalf("LoadRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.RunID != "run-1" || got.FilesScanned != 12 || got.ImportsRewritten != 9 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Duration != 250*time.Millisecond {
		t.Errorf("expected 250ms duration, got %v", got.Duration)
	}
}

func TestSaveRunUpsert(t *testing.T) {
	store := openTestStore(t)

	first := RunSnapshot{RunID: "run-1", FilesScanned: 1}
	if err := store.SaveRun(first); err != nil {
		t.Fatal(err)
	}
	second := RunSnapshot{RunID: "run-1", FilesScanned: 7}
	if err := store.SaveRun(second); err != nil {
		t.Fatal(err)
	}

	runs, err := store.LoadRuns(time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].FilesScanned != 7 {
		t.Errorf("expected the upserted row, got %+v", runs)
	}
}

func TestLoadRunsSince(t *testing.T) {
	store := openTestStore(t)

	old := RunSnapshot{RunID: "old", Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	recent := RunSnapshot{RunID: "recent", Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.SaveRun(old); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(recent); err != nil {
		t.Fatal(err)
	}

	runs, err := store.LoadRuns(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != "recent" {
		t.Errorf("expected only the recent run, got %+v", runs)
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.SaveRun(RunSnapshot{}); err == nil {
		t.Error("expected error for empty run id")
	}
}

func TestOpenRejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected error when the path is a directory")
	}
}
