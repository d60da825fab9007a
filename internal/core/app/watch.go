package app

import (
	"context"
	"log/slog"

	"typeref/internal/core/watcher"
)

// StartWatcher begins watching the configured roots and reruns the full
// pipeline whenever source files change. Reruns are rate limited so a burst
// of editor saves results in one catch-up run rather than a run per save.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Scan.Extensions,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) {
			if !a.limiter.Allow(1) {
				slog.Debug("rescan suppressed by rate limiter", "changed", len(paths))
				return
			}
			slog.Info("source change detected, rerunning", "changed", len(paths))
			if _, err := a.Run(ctx); err != nil {
				slog.Error("watch-mode run failed", "error", err)
			}
		},
	)
	if err != nil {
		return err
	}
	if err := w.Watch(a.Config.AbsoluteRoots()); err != nil {
		_ = w.Close()
		return err
	}
	a.watcher = w
	return nil
}
