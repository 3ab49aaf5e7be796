// Package runlog keeps a local journal of import runs in SQLite, so an
// operator can answer "when did we last load that workbook" without the
// backend.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one completed import invocation.
type Run struct {
	ID              string
	Source          string // "csv" or "workbook"
	Path            string
	UsersCreated    int
	ProgramsWritten int
	RowsImported    int
	RowsSkipped     int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Journal records import runs at dir/runs.db.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database under dir.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS import_runs (
		id               TEXT PRIMARY KEY,
		source           TEXT NOT NULL,
		path             TEXT NOT NULL,
		users_created    INTEGER NOT NULL,
		programs_written INTEGER NOT NULL,
		rows_imported    INTEGER NOT NULL,
		rows_skipped     INTEGER NOT NULL,
		started_at       TIMESTAMP NOT NULL,
		finished_at      TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record writes one run. An empty ID gets a fresh one, which is also
// returned via the run's ID field in the journal.
func (j *Journal) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := j.db.Exec(
		`INSERT INTO import_runs
		 (id, source, path, users_created, programs_written, rows_imported, rows_skipped, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Path,
		run.UsersCreated, run.ProgramsWritten, run.RowsImported, run.RowsSkipped,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return run.ID, nil
}

// Recent returns the most recent runs, newest first.
func (j *Journal) Recent(limit int) ([]Run, error) {
	rows, err := j.db.Query(
		`SELECT id, source, path, users_created, programs_written, rows_imported, rows_skipped, started_at, finished_at
		 FROM import_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Path,
			&r.UsersCreated, &r.ProgramsWritten, &r.RowsImported, &r.RowsSkipped,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
