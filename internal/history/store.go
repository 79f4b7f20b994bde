package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Entry struct {
	ID         string
	StartedAt  time.Time
	Source     string
	Mode       string
	Statements int
	Static     int
	Runtime    int
	Duration   time.Duration
	FirstDiag  string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	id             TEXT    NOT NULL UNIQUE,
	started_at     INTEGER NOT NULL,
	source         TEXT    NOT NULL,
	mode           TEXT    NOT NULL,
	statements     INTEGER NOT NULL,
	static_errors  INTEGER NOT NULL,
	runtime_errors INTEGER NOT NULL,
	duration_ns    INTEGER NOT NULL,
	first_diag     TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started ON runs (started_at DESC, seq DESC);
`

const defaultMaxEntries = 500

var ErrClosed = errors.New("history store closed")

// Store keeps run records in a sqlite file, newest first, capped at
// maxEntries rows.
type Store struct {
	path       string
	maxEntries int
	db         *sql.DB
	mu         sync.Mutex
}

func Open(path string, maxEntries int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 2000`); err != nil {
		return nil, errors.Join(fmt.Errorf("configure history: %w", err), db.Close())
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate history: %w", err), db.Close())
	}
	return &Store{path: path, maxEntries: maxEntries, db: db}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Append records e, assigning an ID and start time when missing, and trims
// the table back to the configured size. The insert and the trim commit
// together or not at all.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return Entry{}, ErrClosed
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("append history: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, source, mode, statements, static_errors,
			runtime_errors, duration_ns, first_diag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StartedAt.UnixNano(), e.Source, e.Mode, e.Statements, e.Static,
		e.Runtime, int64(e.Duration), e.FirstDiag,
	)
	if err != nil {
		return Entry{}, errors.Join(fmt.Errorf("append history: %w", err), tx.Rollback())
	}
	if _, err := prune(ctx, tx, s.maxEntries); err != nil {
		return Entry{}, errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("append history: %w", err)
	}
	return e, nil
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		n = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, source, mode, statements, static_errors,
			runtime_errors, duration_ns, first_diag
		FROM runs
		ORDER BY started_at DESC, seq DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			started int64
			dur     int64
		)
		if err := rows.Scan(
			&e.ID, &started, &e.Source, &e.Mode, &e.Statements, &e.Static,
			&e.Runtime, &dur, &e.FirstDiag,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.StartedAt = time.Unix(0, started)
		e.Duration = time.Duration(dur)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// Prune keeps the newest max entries and reports how many were removed.
func (s *Store) Prune(ctx context.Context, max int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	return prune(ctx, s.db, max)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func prune(ctx context.Context, db execer, max int) (int, error) {
	if max < 0 {
		max = 0
	}
	res, err := db.ExecContext(ctx, `
		DELETE FROM runs WHERE seq NOT IN (
			SELECT seq FROM runs ORDER BY started_at DESC, seq DESC LIMIT ?
		)`, max)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return int(n), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
