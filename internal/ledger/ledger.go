// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records batch runs and their per-file outcomes in a SQLite
// database so earlier conversions can be listed and inspected.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wdfconv/pkg/types"
)

const defaultLimit = 20

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Run is one recorded batch.
type Run struct {
	ID         int64
	ImportRoot string
	ExportRoot string
	Format     types.ExportFormat
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Skipped    int
	Failed     int
	Cancelled  bool
}

// NewStore opens or creates the ledger at path, creating its parent
// directory and schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			import_root TEXT NOT NULL,
			export_root TEXT NOT NULL,
			format TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			cancelled INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			source TEXT NOT NULL,
			target TEXT,
			status TEXT NOT NULL,
			spectra INTEGER NOT NULL DEFAULT 0,
			reason TEXT,
			detail TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores the report and its outcomes in one transaction and returns
// the new run ID.
func (s *Store) Record(ctx context.Context, r types.BatchReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (import_root, export_root, format, started_at, finished_at,
			total, succeeded, skipped, failed, cancelled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ImportRoot, r.ExportRoot, string(r.Format),
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Total, r.Succeeded, r.Skipped, r.Failed, r.Cancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, seq, source, target, status, spectra, reason, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range r.Outcomes {
		_, err := stmt.ExecContext(ctx,
			runID, i, o.Source, o.Target, string(o.Status), o.Spectra, o.Reason, o.Detail,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting outcome for %s: %w", o.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first. A non-positive limit
// uses the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, import_root, export_root, format, started_at, finished_at,
			total, succeeded, skipped, failed, cancelled
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			format            string
			started, finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.ImportRoot, &run.ExportRoot, &format, &started, &finished,
			&run.Total, &run.Succeeded, &run.Skipped, &run.Failed, &run.Cancelled); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Format = types.ExportFormat(format)
		run.StartedAt = parseTime(started.String)
		run.FinishedAt = parseTime(finished.String)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns the per-file outcomes of a run in processing order.
// Outcome.Err is not persisted; Detail carries its message.
func (s *Store) Outcomes(ctx context.Context, runID int64) ([]types.Outcome, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking run %d: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %d not found", runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target, status, spectra, reason, detail
		 FROM outcomes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var (
			o                      types.Outcome
			status                 string
			target, reason, detail sql.NullString
		)
		if err := rows.Scan(&o.Source, &target, &status, &o.Spectra, &reason, &detail); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = types.OutcomeStatus(status)
		o.Target = target.String
		o.Reason = reason.String
		o.Detail = detail.String
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
