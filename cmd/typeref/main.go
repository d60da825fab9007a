// # cmd/typeref/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"typeref/internal/core/app"
	"typeref/internal/core/config"
	"typeref/internal/core/ports"
	"typeref/internal/data/history"
	"typeref/internal/shared/observability"
	"typeref/internal/ui/cli"
	"typeref/internal/ui/report"
)

var (
	configPath = flag.String("config", "./typeref.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run a single rewrite pass and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	runs       = flag.Int("runs", 0, "Print the last N recorded runs and exit")
	trend      = flag.String("trend", "", "Print a run-history trend report (tsv or json) and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("typeref v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./typeref.toml" {
			cfg, err = config.Load("./typeref.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.SourceRoots = []string{flag.Arg(0)}
	}

	ctx := context.Background()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, VERSION)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close(ctx)

	// Returning instead of os.Exit lets the deferred Close release the
	// history handle these modes depend on.
	if *runs > 0 {
		if err := printRecentRuns(a, *runs); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			a.Close(ctx)
			os.Exit(1)
		}
		return
	}

	if *trend != "" {
		if err := printTrendReport(a, *trend); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			a.Close(ctx)
			os.Exit(1)
		}
		return
	}

	var server *cli.ObservabilityServer
	if cfg.Observability.Listen != "" {
		server = cli.NewObservabilityServer(cfg.Observability.Listen, app.NewHealthService(a), a)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer server.Stop(ctx)
	}

	result, err := a.Run(ctx)
	if err != nil {
		slog.Error("rewrite run failed", "error", err)
		os.Exit(1)
	}

	if !*ui {
		printSummary(result)
	}

	if *once {
		return
	}

	// Watch mode
	if err := a.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := runUI(a); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		a.SetUpdateCallback(func(u app.Update) {
			printSummary(u.Result)
		})
		// Block forever
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "typeref", "typeref.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "typeref", "typeref.log")
	}

	return "typeref.log"
}

func printSummary(result ports.RunResult) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Run %s: %d files scanned, %d changed in %v\n",
		shortID(result.RunID), result.FilesScanned, result.FilesChanged, result.Duration.Round(time.Millisecond))
	fmt.Printf("   %d modules, %d typedefs indexed, %d comments seen\n",
		result.ModulesIndexed, result.TypedefsIndexed, result.CommentsSeen)

	if result.ImportsRewritten > 0 {
		fmt.Printf("✅ Rewrote %d import references.\n", result.ImportsRewritten)
	} else {
		fmt.Println("✅ No import references needed rewriting.")
	}

	if result.ImportsUnresolved > 0 {
		fmt.Printf("❓ %d import references did not resolve to a module.\n", result.ImportsUnresolved)
	}

	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
}

func printRecentRuns(a *app.App, n int) error {
	snapshots, err := a.RecentRuns(n)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %6s  %9s  %10s\n",
		"run", "timestamp", "duration", "files", "rewritten", "unresolved")
	for _, s := range snapshots {
		fmt.Printf("%-36s  %-20s  %8s  %6d  %9d  %10d\n",
			s.RunID,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Duration.Round(time.Millisecond),
			s.FilesScanned,
			s.ImportsRewritten,
			s.ImportsUnresolved,
		)
	}
	return nil
}

func printTrendReport(a *app.App, format string) error {
	snapshots, err := a.RecentRuns(0)
	if err != nil {
		return err
	}
	// RecentRuns returns newest first, the trend wants chronological order.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}

	trendReport := history.BuildTrendReport(snapshots)

	var out []byte
	switch format {
	case "tsv":
		out, err = report.RenderTrendTSV(trendReport)
	case "json":
		out, err = report.RenderTrendJSON(trendReport)
	default:
		return fmt.Errorf("unknown trend format %q, expected tsv or json", format)
	}
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
