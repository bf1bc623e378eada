package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps entries in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// jobs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS jobs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at  INTEGER NOT NULL,
		route       TEXT NOT NULL,
		files       TEXT NOT NULL,
		output      TEXT NOT NULL DEFAULT '',
		format      TEXT NOT NULL DEFAULT '',
		row_count   INTEGER NOT NULL DEFAULT 0,
		unmatched   INTEGER NOT NULL DEFAULT 0,
		status      INTEGER NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record inserts e. A zero Time is replaced with the current time.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (created_at, route, files, output, format, row_count, unmatched, status, error, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UnixNano(), e.Route, strings.Join(e.Files, "\n"), e.Output, e.Format,
		e.Rows, e.Unmatched, e.Status, e.Error, int64(e.Duration))
	if err != nil {
		return fmt.Errorf("recording job for %s: %w", e.Route, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, route, files, output, format, row_count, unmatched, status, error, duration_ns
		 FROM jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			created  int64
			files    string
			duration int64
		)
		if err := rows.Scan(&e.ID, &created, &e.Route, &files, &e.Output, &e.Format,
			&e.Rows, &e.Unmatched, &e.Status, &e.Error, &duration); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		e.Time = time.Unix(0, created)
		if files != "" {
			e.Files = strings.Split(files, "\n")
		}
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cleanup deletes entries older than the given duration and reports how many
// were removed.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up jobs older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
