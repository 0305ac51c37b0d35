package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
)

// SQLiteStore keeps one row per session: the full serialized record as a JSON
// blob plus a few indexed columns so List does not have to decode anything to
// sort. Saves are per-key upserts with a version compare, avoiding the whole-
// document rewrite the file backend pays.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.With().Str("component", "store.sqlite").Logger(),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	s.logger.Info().Str("path", dbPath).Msg("sqlite store initialized")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		session_id   TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		status       TEXT NOT NULL,
		version      INTEGER NOT NULL,
		last_updated TEXT NOT NULL,
		record       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_updated ON sessions(last_updated);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Save upserts the session row, failing with a domain.ConflictError when the
// stored version no longer matches the snapshot's.
func (s *SQLiteStore) Save(ctx context.Context, session *domain.ConversationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stored int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM sessions WHERE session_id = ?`, session.ID.String(),
	).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		// new session, no version to compare
	case err != nil:
		return fmt.Errorf("failed to read stored version: %w", err)
	case stored != session.Version:
		return &domain.ConflictError{SessionID: session.ID, Expected: session.Version, Found: stored}
	}

	session.Version++
	rec := encodeSession(session)
	blob, err := json.Marshal(rec)
	if err != nil {
		session.Version--
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO sessions (session_id, title, status, version, last_updated, record)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		title = excluded.title,
		status = excluded.status,
		version = excluded.version,
		last_updated = excluded.last_updated,
		record = excluded.record
	`, rec.SessionID, rec.Title, rec.Status, rec.Version, rec.LastUpdated, string(blob))
	if err != nil {
		session.Version--
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		session.Version--
		return fmt.Errorf("failed to commit session save: %w", err)
	}
	return nil
}

// Load reconstructs the full session, or returns (nil, nil) when absent.
func (s *SQLiteStore) Load(ctx context.Context, id domain.SessionID) (*domain.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM sessions WHERE session_id = ?`, id.String(),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(blob), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session record: %w", err)
	}
	return decodeSession(rec)
}

// Delete removes the session row and reports whether it existed.
func (s *SQLiteStore) Delete(ctx context.Context, id domain.SessionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// List reconstructs every stored session, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT record FROM sessions ORDER BY last_updated DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ConversationSession
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		var rec sessionRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse session record: %w", err)
		}
		session, err := decodeSession(rec)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
