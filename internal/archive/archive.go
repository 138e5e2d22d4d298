// Package archive keeps completed interview transcripts in SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rbright/raybot/internal/interview"
	"github.com/rbright/raybot/internal/logging"
	"github.com/rbright/raybot/internal/transcript"
)

// ErrNotFound reports an unknown session id.
var ErrNotFound = errors.New("archived session not found")

// Summary is one row of the history listing.
type Summary struct {
	SessionID     string    `json:"session_id"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	Entries       int       `json:"entries"`
	FirstQuestion string    `json:"first_question,omitempty"`
}

// Session is a fully loaded archived transcript.
type Session struct {
	Summary
	Transcript []transcript.Entry `json:"transcript"`
	Export     string             `json:"export"`
}

// Store is the SQLite-backed archive. It implements interview.Archiver.
type Store struct {
	db *sql.DB
}

var _ interview.Archiver = (*Store)(nil)

// DefaultPath is archive.db in the raybot state directory.
func DefaultPath() (string, error) {
	dir, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// Open creates the database directory and schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		entry_count INTEGER NOT NULL,
		first_question TEXT,
		entries_json TEXT NOT NULL,
		export_text TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_ended ON sessions(ended_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Archive stores a completed session. Re-archiving a session id replaces it.
func (s *Store) Archive(ctx context.Context, rec interview.Record) error {
	if rec.SessionID == "" {
		return errors.New("archive record has no session id")
	}

	entries, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	var first any
	for _, e := range rec.Entries {
		if e.Role == transcript.RoleUser {
			first = e.Content
			break
		}
	}

	query := `
	INSERT INTO sessions (session_id, started_at, ended_at, entry_count, first_question, entries_json, export_text)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		ended_at = excluded.ended_at,
		entry_count = excluded.entry_count,
		first_question = excluded.first_question,
		entries_json = excluded.entries_json,
		export_text = excluded.export_text`

	_, err = s.db.ExecContext(ctx, query,
		rec.SessionID, rec.StartedAt.UnixMilli(), rec.EndedAt.UnixMilli(),
		len(rec.Entries), first, string(entries), rec.Export,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.SessionID, err)
	}
	return nil
}

// List returns the most recently finished sessions first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, started_at, ended_at, entry_count, first_question
		FROM sessions ORDER BY ended_at DESC, session_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var started, ended int64
		var first sql.NullString
		if err := rows.Scan(&sum.SessionID, &started, &ended, &sum.Entries, &first); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sum.StartedAt = time.UnixMilli(started)
		sum.EndedAt = time.UnixMilli(ended)
		sum.FirstQuestion = first.String
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get loads one archived session.
func (s *Store) Get(ctx context.Context, sessionID string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, started_at, ended_at, entry_count, first_question, entries_json, export_text
		FROM sessions WHERE session_id = ?`, sessionID)

	var out Session
	var started, ended int64
	var first sql.NullString
	var entries string
	err := row.Scan(&out.SessionID, &started, &ended, &out.Entries, &first, &entries, &out.Export)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return Session{}, fmt.Errorf("scan session %s: %w", sessionID, err)
	}

	if err := json.Unmarshal([]byte(entries), &out.Transcript); err != nil {
		return Session{}, fmt.Errorf("decode entries for %s: %w", sessionID, err)
	}
	out.StartedAt = time.UnixMilli(started)
	out.EndedAt = time.UnixMilli(ended)
	out.FirstQuestion = first.String
	return out, nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
