// Package history persists per-run rewrite statistics to a local sqlite
// database so repeated documentation builds can be compared over time.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// RunSnapshot is one completed rewrite run.
type RunSnapshot struct {
	RunID             string
	SchemaVersion     int
	Timestamp         time.Time
	Duration          time.Duration
	FilesScanned      int
	CommentsSeen      int
	ImportsRewritten  int
	ImportsUnresolved int
	ModulesIndexed    int
	TypedefsIndexed   int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun records one completed run. Saving the same run id twice updates
// the existing row.
func (s *Store) SaveRun(snapshot RunSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.RunID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported run schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO runs (
  run_id, schema_version, ts_utc, duration_ms, files_scanned, comments_seen,
  imports_rewritten, imports_unresolved, modules_indexed, typedefs_indexed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  schema_version=excluded.schema_version,
  ts_utc=excluded.ts_utc,
  duration_ms=excluded.duration_ms,
  files_scanned=excluded.files_scanned,
  comments_seen=excluded.comments_seen,
  imports_rewritten=excluded.imports_rewritten,
  imports_unresolved=excluded.imports_unresolved,
  modules_indexed=excluded.modules_indexed,
  typedefs_indexed=excluded.typedefs_indexed
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.RunID,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.Duration.Milliseconds(),
			snapshot.FilesScanned,
			snapshot.CommentsSeen,
			snapshot.ImportsRewritten,
			snapshot.ImportsUnresolved,
			snapshot.ModulesIndexed,
			snapshot.TypedefsIndexed,
		)
		return err
	})
}

// LoadRuns returns runs at or after since, oldest first. A zero since loads
// everything.
func (s *Store) LoadRuns(since time.Time) ([]RunSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  run_id, schema_version, ts_utc, duration_ms, files_scanned, comments_seen,
  imports_rewritten, imports_unresolved, modules_indexed, typedefs_indexed
FROM runs
`
	args := make([]any, 0, 1)
	if !since.IsZero() {
		query += " WHERE ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunSnapshot, 0)
	for rows.Next() {
		var (
			tsRaw      string
			durationMS int64
			snapshot   RunSnapshot
		)
		if err := rows.Scan(
			&snapshot.RunID,
			&snapshot.SchemaVersion,
			&tsRaw,
			&durationMS,
			&snapshot.FilesScanned,
			&snapshot.CommentsSeen,
			&snapshot.ImportsRewritten,
			&snapshot.ImportsUnresolved,
			&snapshot.ModulesIndexed,
			&snapshot.TypedefsIndexed,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		snapshot.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
