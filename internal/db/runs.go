package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Open opens the sqlite database at path, creating its directory, and
// applies pending migrations.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// Run is one recorded parse of a file.
type Run struct {
	ID           string
	FilePath     string
	Strict       bool
	NodeCount    int
	Recoveries   int
	Downgrades   int
	ForcedCloses int
	Error        string // empty when the parse succeeded
	CreatedAt    time.Time
}

func (r Run) Failed() bool { return r.Error != "" }

// RecordRun stores r and returns its id, generating one if r has none.
func RecordRun(db *sql.DB, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO runs (id, file_path, strict, node_count, recoveries, downgrades, forced_closes, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.FilePath, r.Strict, r.NodeCount, r.Recoveries, r.Downgrades, r.ForcedCloses, r.Error,
		r.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("recording run for %s: %w", r.FilePath, err)
	}
	return r.ID, nil
}

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	FilePath   string
	FailedOnly bool
	Limit      int
}

// ListRuns returns matching runs, newest first.
func ListRuns(db *sql.DB, f RunFilter) ([]Run, error) {
	var where []string
	var args []any
	if f.FilePath != "" {
		where = append(where, "file_path = ?")
		args = append(args, f.FilePath)
	}
	if f.FailedOnly {
		where = append(where, "error != ''")
	}

	query := `SELECT id, file_path, strict, node_count, recoveries, downgrades, forced_closes, error, created_at FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.FilePath, &r.Strict, &r.NodeCount, &r.Recoveries, &r.Downgrades, &r.ForcedCloses, &r.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Summary aggregates all recorded runs.
type Summary struct {
	Runs         int
	Files        int
	Failed       int
	Recoveries   int
	Downgrades   int
	ForcedCloses int
}

func Summarize(db *sql.DB) (Summary, error) {
	var s Summary
	err := db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(DISTINCT file_path),
		       COALESCE(SUM(error != ''), 0),
		       COALESCE(SUM(recoveries), 0),
		       COALESCE(SUM(downgrades), 0),
		       COALESCE(SUM(forced_closes), 0)
		FROM runs
	`).Scan(&s.Runs, &s.Files, &s.Failed, &s.Recoveries, &s.Downgrades, &s.ForcedCloses)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing runs: %w", err)
	}
	return s, nil
}
