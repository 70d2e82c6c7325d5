package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fluxcal/internal/config"
	"fluxcal/internal/stage"
)

// Run is one recorded stage invocation.
type Run struct {
	ID         string
	Stage      string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    stage.Summary
}

// FrameRecord is one recorded per-exposure outcome.
type FrameRecord struct {
	RunID   string
	Frame   int
	Outcome stage.Outcome
	Detail  string
}

// Store persists run history in SQLite under the log directory.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database and verifies its schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the run database.
func (s *Store) Path() string {
	return s.path
}

// RecordRun persists one run and its per-frame outcomes atomically.
func (s *Store) RecordRun(ctx context.Context, run Run, results []stage.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (id, stage, started_at, finished_at, total, corrected, skipped, errors)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Stage,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Summary.Total,
		run.Summary.Corrected,
		run.Summary.Skipped,
		run.Summary.Errors,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, result := range results {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_frames (run_id, frame, outcome, detail) VALUES (?, ?, ?, ?)`,
			run.ID,
			result.Frame,
			string(result.Outcome),
			nullableString(result.Detail),
		)
		if err != nil {
			return fmt.Errorf("insert run frame %d: %w", result.Frame, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, stage, started_at, finished_at, total, corrected, skipped, errors
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Stage,
			&startedRaw,
			&finishedRaw,
			&run.Summary.Total,
			&run.Summary.Corrected,
			&run.Summary.Skipped,
			&run.Summary.Errors,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
			run.StartedAt = started
		}
		if finished, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
			run.FinishedAt = finished
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunFrames returns the per-exposure outcomes of one run in frame order.
func (s *Store) RunFrames(ctx context.Context, runID string) ([]FrameRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, frame, outcome, detail FROM run_frames WHERE run_id = ? ORDER BY frame`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run frames: %w", err)
	}
	defer rows.Close()

	var records []FrameRecord
	for rows.Next() {
		var (
			record FrameRecord
			detail sql.NullString
		)
		var outcome string
		if err := rows.Scan(&record.RunID, &record.Frame, &outcome, &detail); err != nil {
			return nil, fmt.Errorf("scan run frame: %w", err)
		}
		record.Outcome = stage.Outcome(outcome)
		record.Detail = detail.String
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
