// Package app orchestrates the two-phase rewrite pipeline over a configured
// source tree: scan, ingest every file (pre-parse pass), seal, rewrite every
// comment (per-comment pass), then write outputs and record the run.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"typeref/internal/core/config"
	"typeref/internal/core/errors"
	"typeref/internal/core/ports"
	"typeref/internal/core/watcher"
	"typeref/internal/data/history"
	"typeref/internal/engine/rewrite"
	"typeref/internal/shared/util"
)

// Update is pushed to the UI callback after every completed run.
type Update struct {
	Result   ports.RunResult
	Rewrites []rewrite.ImportRewrite
}

type App struct {
	Config *config.Config

	history      ports.HistoryStore
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extFilter    map[string]bool
	limiter      *util.Limiter
	watcher      *watcher.Watcher

	updateMu sync.RWMutex
	onUpdate func(Update)

	resultMu   sync.RWMutex
	lastResult *ports.RunResult
}

var _ ports.RewriteService = (*App)(nil)

func New(cfg *config.Config) (*App, error) {
	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	extFilter := make(map[string]bool, len(cfg.Scan.Extensions))
	for _, ext := range cfg.Scan.Extensions {
		extFilter[ext] = true
	}

	a := &App{
		Config:       cfg,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		extFilter:    extFilter,
		limiter:      util.NewLimiter(cfg.Watch.RescanRate, cfg.Watch.RescanBurst),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "open history store")
		}
		slog.Debug("run history enabled", "path", store.Path())
		a.history = store
	}

	return a, nil
}

// SetUpdateCallback registers the function invoked after every run, e.g. by
// the watch-mode TUI.
func (a *App) SetUpdateCallback(fn func(Update)) {
	a.updateMu.Lock()
	a.onUpdate = fn
	a.updateMu.Unlock()
}

func (a *App) notifyUpdate(u Update) {
	a.updateMu.RLock()
	fn := a.onUpdate
	a.updateMu.RUnlock()
	if fn != nil {
		fn(u)
	}
}

// LastResult returns the most recently completed run, if any.
func (a *App) LastResult() (ports.RunResult, bool) {
	a.resultMu.RLock()
	defer a.resultMu.RUnlock()
	if a.lastResult == nil {
		return ports.RunResult{}, false
	}
	return *a.lastResult, true
}

func (a *App) storeResult(result ports.RunResult) {
	a.resultMu.Lock()
	a.lastResult = &result
	a.resultMu.Unlock()
}

// RecentRuns loads the most recent n recorded runs, newest first. It fails
// when run history is disabled in the config.
func (a *App) RecentRuns(n int) ([]history.RunSnapshot, error) {
	if a.history == nil {
		return nil, errors.New(errors.CodeConfigError, "run history is disabled")
	}
	runs, err := a.history.LoadRuns(time.Time{})
	if err != nil {
		return nil, err
	}
	// LoadRuns returns oldest first.
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	if n > 0 && len(runs) > n {
		runs = runs[:n]
	}
	return runs, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			return err
		}
		a.watcher = nil
	}
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

func compileGlobs(patterns []string, kind string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Newf(errors.CodeConfigError, "invalid %s pattern %q: %v", kind, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
