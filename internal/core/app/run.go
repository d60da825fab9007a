package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"typeref/internal/core/ports"
	"typeref/internal/data/history"
	"typeref/internal/engine/comment"
	"typeref/internal/engine/rewrite"
	"typeref/internal/shared/observability"
)

// Run executes one complete rewrite run over the configured source tree.
// Every run builds a fresh context, so repeated runs in one process never
// see stale cache state. Fatal configuration errors abort the run; per-file
// read failures degrade to warnings.
func (a *App) Run(ctx context.Context) (ports.RunResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()

	start := time.Now()
	result := ports.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
	}

	files, err := a.ScanSources()
	if err != nil {
		return result, err
	}
	result.FilesScanned = len(files)

	rc := rewrite.NewContext(a.Config.AbsoluteRoots())
	sources := make(map[string]string, len(files))
	changed := make(map[string]bool)
	var rewrites []rewrite.ImportRewrite

	ingestStart := time.Now()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fileStart := time.Now()
		data, err := os.ReadFile(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("read %s: %v", path, err))
			continue
		}

		out, fileRewrites, err := rc.RewriteSource(path, string(data))
		if err != nil {
			return result, err
		}
		sources[path] = out
		if out != string(data) {
			changed[path] = true
		}
		rewrites = append(rewrites, fileRewrites...)

		observability.FilesIngestedTotal.Inc()
		observability.IngestDuration.Observe(time.Since(fileStart).Seconds())
	}
	observability.RunDuration.WithLabelValues("ingest").Observe(time.Since(ingestStart).Seconds())

	rc.Seal()

	commentStart := time.Now()
	for _, path := range files {
		text, ok := sources[path]
		if !ok {
			continue
		}
		rewritten, comments, err := a.rewriteComments(rc, path, text)
		if err != nil {
			return result, err
		}
		result.CommentsSeen += comments
		if rewritten != text {
			sources[path] = rewritten
			changed[path] = true
		}
	}
	observability.RunDuration.WithLabelValues("comment").Observe(time.Since(commentStart).Seconds())

	for _, rw := range rewrites {
		if strings.HasPrefix(strings.TrimLeft(rw.Replacement, "!?"), "module:") {
			result.ImportsRewritten++
		} else {
			result.ImportsUnresolved++
		}
	}
	result.FilesChanged = len(changed)
	result.ModulesIndexed = rc.Typedefs().ScopedModules()
	result.TypedefsIndexed = rc.Typedefs().Names()

	if warnings := a.writeOutputs(files, sources, changed, rewrites); len(warnings) > 0 {
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Duration = time.Since(start)
	a.storeResult(result)
	a.recordRun(result)
	a.notifyUpdate(Update{Result: result, Rewrites: rewrites})

	slog.Debug("run complete",
		"run_id", result.RunID,
		"files", result.FilesScanned,
		"files_cached", rc.Registry().FileCount(),
		"rewritten", result.ImportsRewritten,
		"unresolved", result.ImportsUnresolved,
		"duration", result.Duration,
	)
	return result, nil
}

// rewriteComments applies the per-comment pass to every doc comment block in
// text and splices the rewritten blocks back.
func (a *App) rewriteComments(rc *rewrite.Context, path, text string) (string, int, error) {
	blocks := comment.Blocks(text)
	if len(blocks) == 0 {
		return text, 0, nil
	}

	var b strings.Builder
	last := 0
	for _, blk := range blocks {
		out, err := rc.RewriteComment(path, blk.Text)
		if err != nil {
			return "", 0, err
		}
		b.WriteString(text[last:blk.Start])
		b.WriteString(out)
		last = blk.End
	}
	b.WriteString(text[last:])
	return b.String(), len(blocks), nil
}

func (a *App) recordRun(result ports.RunResult) {
	if a.history == nil {
		return
	}
	snapshot := history.RunSnapshot{
		RunID:             result.RunID,
		Timestamp:         result.StartedAt,
		Duration:          result.Duration,
		FilesScanned:      result.FilesScanned,
		CommentsSeen:      result.CommentsSeen,
		ImportsRewritten:  result.ImportsRewritten,
		ImportsUnresolved: result.ImportsUnresolved,
		ModulesIndexed:    result.ModulesIndexed,
		TypedefsIndexed:   result.TypedefsIndexed,
	}
	if err := a.history.SaveRun(snapshot); err != nil {
		slog.Warn("failed to record run history", "run_id", result.RunID, "error", err)
	}
}
