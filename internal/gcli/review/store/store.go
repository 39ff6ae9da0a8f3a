// Package store persists the review session registry spec.md §4.10
// names: which reviews are in progress, postponed, or submitted, keyed by
// backend/owner/repo/pull id, so "gcli review list" can report them without
// re-scanning the cache directory. Grounded on the teacher's
// internal/adapter/store/sqlite package (database/sql over
// github.com/mattn/go-sqlite3, PRAGMA foreign_keys, a single createSchema
// string, Unix-timestamp columns).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Status is a review session's lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPostponed  Status = "postponed"
	StatusSubmitted  Status = "submitted"
)

// Session is one row of the review_sessions table. CorrelationID identifies
// one Run call end to end (cache fetch through submission) across the log
// lines it produces, independent of the backend/owner/repo/pull_id identity
// a session resumes under.
type Session struct {
	Backend       string
	Owner         string
	Repo          string
	PullID        uint64
	CachePath     string
	Status        Status
	CorrelationID string
	StartedAt     time.Time
	UpdatedAt     time.Time
}

// Store is the SQLite-backed review session registry.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the SQLite database at dbPath and
// ensures its schema exists. Use ":memory:" for an ephemeral store, as the
// teacher's sqlite store does in its own tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open review session database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create review session schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS review_sessions (
		backend    TEXT NOT NULL,
		owner      TEXT NOT NULL,
		repo       TEXT NOT NULL,
		pull_id    INTEGER NOT NULL,
		cache_path TEXT NOT NULL,
		status     TEXT NOT NULL CHECK(status IN ('in_progress', 'postponed', 'submitted')),
		correlation_id TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (backend, owner, repo, pull_id)
	);

	CREATE INDEX IF NOT EXISTS idx_review_sessions_status ON review_sessions(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert records a session's current cache path and status, creating the
// row on first use and updating started_at only on that first insert.
func (s *Store) Upsert(ctx context.Context, sess Session) error {
	query := `
		INSERT INTO review_sessions (backend, owner, repo, pull_id, cache_path, status, correlation_id, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(backend, owner, repo, pull_id) DO UPDATE SET
			cache_path = excluded.cache_path,
			status = excluded.status,
			correlation_id = excluded.correlation_id,
			updated_at = excluded.updated_at
	`
	now := sess.UpdatedAt
	if now.IsZero() {
		now = sess.StartedAt
	}
	_, err := s.db.ExecContext(ctx, query,
		sess.Backend, sess.Owner, sess.Repo, sess.PullID,
		sess.CachePath, string(sess.Status), sess.CorrelationID, sess.StartedAt.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert review session: %w", err)
	}
	return nil
}

// Get retrieves one session by its identity, returning an error when no
// such session has been recorded.
func (s *Store) Get(ctx context.Context, backend, owner, repo string, pullID uint64) (Session, error) {
	query := `
		SELECT backend, owner, repo, pull_id, cache_path, status, correlation_id, started_at, updated_at
		FROM review_sessions
		WHERE backend = ? AND owner = ? AND repo = ? AND pull_id = ?
	`
	var sess Session
	var status string
	var startedAt, updatedAt int64
	err := s.db.QueryRowContext(ctx, query, backend, owner, repo, pullID).Scan(
		&sess.Backend, &sess.Owner, &sess.Repo, &sess.PullID,
		&sess.CachePath, &status, &sess.CorrelationID, &startedAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return Session{}, fmt.Errorf("review session not found: %s/%s/%s#%d", backend, owner, repo, pullID)
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get review session: %w", err)
	}
	sess.Status = Status(status)
	sess.StartedAt = time.Unix(startedAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)
	return sess, nil
}

// List returns every recorded session, most recently updated first, per
// spec.md §4.10's "gcli review list" verb.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	query := `
		SELECT backend, owner, repo, pull_id, cache_path, status, correlation_id, started_at, updated_at
		FROM review_sessions
		ORDER BY updated_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list review sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var status string
		var startedAt, updatedAt int64
		if err := rows.Scan(&sess.Backend, &sess.Owner, &sess.Repo, &sess.PullID,
			&sess.CachePath, &status, &sess.CorrelationID, &startedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review session: %w", err)
		}
		sess.Status = Status(status)
		sess.StartedAt = time.Unix(startedAt, 0)
		sess.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review sessions: %w", err)
	}
	return out, nil
}

// Delete removes a session row once its cache file has been cleaned up
// (e.g. after a successful submission).
func (s *Store) Delete(ctx context.Context, backend, owner, repo string, pullID uint64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM review_sessions WHERE backend = ? AND owner = ? AND repo = ? AND pull_id = ?`,
		backend, owner, repo, pullID)
	if err != nil {
		return fmt.Errorf("failed to delete review session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
