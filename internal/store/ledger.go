// Package store keeps the run ledger: one row per conversion run and one row
// per document or copy it settled, in a SQLite file inside the vault.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"fmgvault/internal/logging"
	"fmgvault/internal/pipeline"
)

// Ledger is a SQLite-backed pipeline.Recorder.
type Ledger struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var _ pipeline.Recorder = (*Ledger)(nil)

// Open creates or opens the ledger at path. ":memory:" is accepted for tests.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, path: path}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("ledger opened at %s", path)
	return l, nil
}

func (l *Ledger) initialize() error {
	runs := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started DATETIME NOT NULL,
		finished DATETIME NOT NULL,
		status TEXT NOT NULL,
		format TEXT,
		map_name TEXT,
		output TEXT,
		written INTEGER DEFAULT 0,
		unchanged INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		stale INTEGER DEFAULT 0,
		warnings INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`

	documents := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		entity_id INTEGER,
		outcome TEXT NOT NULL,
		hash TEXT,
		error TEXT,
		duration_ms INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
	CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);
	`

	for _, table := range []string{runs, documents} {
		if _, err := l.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordRun stores r and all of its task results in one transaction.
func (l *Ledger) RecordRun(ctx context.Context, r *pipeline.Report) error {
	timer := logging.StartTimer(logging.CategoryStore, "RecordRun")
	defer timer.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	counts := r.Counts()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started, finished, status, format, map_name, output,
			written, unchanged, failed, skipped, stale, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Started.UTC(), r.Finished.UTC(), string(r.Status()), string(r.Format),
		r.MapName, r.Output,
		counts[pipeline.OutcomeWritten], counts[pipeline.OutcomeUnchanged], len(r.Failures()),
		len(r.Skipped), len(r.Stale), len(r.Warnings))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (run_id, path, kind, entity_id, outcome, hash, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare document insert: %w", err)
	}
	defer stmt.Close()

	for _, set := range [][]pipeline.TaskResult{r.Documents, r.Copies} {
		for _, t := range set {
			var msg sql.NullString
			if t.Err != nil {
				msg = sql.NullString{String: t.Err.Error(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, r.RunID, t.Path, string(t.Kind), t.ID,
				string(t.Outcome), t.Hash, msg, t.Duration.Milliseconds()); err != nil {
				return fmt.Errorf("failed to insert document %s: %w", t.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	logging.Store("recorded run %s (%d documents, %d copies)", r.RunID, len(r.Documents), len(r.Copies))
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Status    pipeline.Status
	Format    string
	MapName   string
	Output    string
	Written   int
	Unchanged int
	Failed    int
	Skipped   int
	Stale     int
	Warnings  int
}

// Duration is the wall time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, started, finished, status, format, map_name, output,
			written, unchanged, failed, skipped, stale, warnings
		FROM runs ORDER BY started DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var s RunSummary
		var status string
		var format, mapName, output sql.NullString
		if err := rows.Scan(&s.RunID, &s.Started, &s.Finished, &status, &format, &mapName, &output,
			&s.Written, &s.Unchanged, &s.Failed, &s.Skipped, &s.Stale, &s.Warnings); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.Status = pipeline.Status(status)
		s.Format = format.String
		s.MapName = mapName.String
		s.Output = output.String
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// DocumentRecord is one settled task of a recorded run.
type DocumentRecord struct {
	RunID    string
	Started  time.Time
	Path     string
	Kind     string
	EntityID int
	Outcome  pipeline.Outcome
	Hash     string
	Error    string
	Duration time.Duration
}

// Documents returns the tasks recorded for runID in insertion order.
func (l *Ledger) Documents(ctx context.Context, runID string) ([]DocumentRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT d.run_id, r.started, d.path, d.kind, d.entity_id, d.outcome, d.hash, d.error, d.duration_ms
		FROM documents d JOIN runs r ON r.run_id = d.run_id
		WHERE d.run_id = ? ORDER BY d.id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	return scanDocuments(rows)
}

// PathHistory returns the outcomes recorded for one vault-relative path,
// newest first.
func (l *Ledger) PathHistory(ctx context.Context, path string, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT d.run_id, r.started, d.path, d.kind, d.entity_id, d.outcome, d.hash, d.error, d.duration_ms
		FROM documents d JOIN runs r ON r.run_id = d.run_id
		WHERE d.path = ? ORDER BY r.started DESC, d.id DESC LIMIT ?`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query path history: %w", err)
	}
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]DocumentRecord, error) {
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var d DocumentRecord
		var outcome string
		var hash, msg sql.NullString
		var ms int64
		if err := rows.Scan(&d.RunID, &d.Started, &d.Path, &d.Kind, &d.EntityID, &outcome, &hash, &msg, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Outcome = pipeline.Outcome(outcome)
		d.Hash = hash.String
		d.Error = msg.String
		d.Duration = time.Duration(ms) * time.Millisecond
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Path is the file the ledger was opened from.
func (l *Ledger) Path() string { return l.path }
