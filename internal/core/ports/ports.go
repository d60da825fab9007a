package ports

import (
	"context"
	"time"

	"typeref/internal/data/history"
)

// RewriteService is the narrow surface driving adapters (CLI, TUI, health
// endpoint) use to run the rewrite pipeline.
type RewriteService interface {
	Run(ctx context.Context) (RunResult, error)
	LastResult() (RunResult, bool)
	Close(ctx context.Context) error
}

// RunResult summarizes one completed two-phase rewrite run.
type RunResult struct {
	RunID             string
	StartedAt         time.Time
	Duration          time.Duration
	FilesScanned      int
	FilesChanged      int
	CommentsSeen      int
	ImportsRewritten  int
	ImportsUnresolved int
	ModulesIndexed    int
	TypedefsIndexed   int
	Warnings          []string
}

// HistoryStore abstracts run persistence for trend workflows.
type HistoryStore interface {
	SaveRun(snapshot history.RunSnapshot) error
	LoadRuns(since time.Time) ([]history.RunSnapshot, error)
	Close() error
}
