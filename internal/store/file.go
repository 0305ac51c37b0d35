package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
)

const sessionsFileName = "sessions.json"

// FileStore keeps every session in one shared JSON document mapping session
// id to its serialized record. Every Save and Delete is a read-modify-write
// of the whole document, so write cost grows with total stored data; the
// document is the only shared mutable resource and is guarded by a single
// mutex within this process. A crash mid-write can corrupt the file — that
// limitation is accepted, the SQLite backend exists for anything stricter.
type FileStore struct {
	path   string
	mu     chan struct{} // capacity-1 semaphore, honors ctx cancellation
	logger zerolog.Logger
}

// NewFileStore creates the data directory and sessions file if missing.
func NewFileStore(dataDir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, sessionsFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialize sessions file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat sessions file: %w", err)
	}

	fs := &FileStore{
		path:   path,
		mu:     make(chan struct{}, 1),
		logger: logger.With().Str("component", "store.file").Logger(),
	}
	fs.logger.Info().Str("path", path).Msg("file store initialized")
	return fs, nil
}

func (fs *FileStore) lock(ctx context.Context) error {
	select {
	case fs.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (fs *FileStore) unlock() { <-fs.mu }

// Save writes the session's snapshot into the shared document, enforcing the
// optimistic version check against the stored record.
func (fs *FileStore) Save(ctx context.Context, session *domain.ConversationSession) error {
	if err := fs.lock(ctx); err != nil {
		return err
	}
	defer fs.unlock()

	all, err := fs.readAll()
	if err != nil {
		return err
	}

	if existing, ok := all[session.ID.String()]; ok && existing.Version != session.Version {
		return &domain.ConflictError{SessionID: session.ID, Expected: session.Version, Found: existing.Version}
	}

	session.Version++
	rec := encodeSession(session)
	all[session.ID.String()] = rec

	if err := fs.writeAll(all); err != nil {
		session.Version-- // snapshot still matches the stored state
		return err
	}
	return nil
}

// Load reconstructs the full session, or returns (nil, nil) when absent.
func (fs *FileStore) Load(ctx context.Context, id domain.SessionID) (*domain.ConversationSession, error) {
	if err := fs.lock(ctx); err != nil {
		return nil, err
	}
	defer fs.unlock()

	all, err := fs.readAll()
	if err != nil {
		return nil, err
	}
	rec, ok := all[id.String()]
	if !ok {
		return nil, nil
	}
	return decodeSession(rec)
}

// Delete removes the session's record and reports whether it existed.
func (fs *FileStore) Delete(ctx context.Context, id domain.SessionID) (bool, error) {
	if err := fs.lock(ctx); err != nil {
		return false, err
	}
	defer fs.unlock()

	all, err := fs.readAll()
	if err != nil {
		return false, err
	}
	if _, ok := all[id.String()]; !ok {
		return false, nil
	}
	delete(all, id.String())
	if err := fs.writeAll(all); err != nil {
		return false, err
	}
	return true, nil
}

// List reconstructs every stored session. Cost is proportional to the whole
// document, not an index scan.
func (fs *FileStore) List(ctx context.Context) ([]*domain.ConversationSession, error) {
	if err := fs.lock(ctx); err != nil {
		return nil, err
	}
	defer fs.unlock()

	all, err := fs.readAll()
	if err != nil {
		return nil, err
	}
	sessions := make([]*domain.ConversationSession, 0, len(all))
	for _, rec := range all {
		s, err := decodeSession(rec)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Ping verifies the sessions file is still reachable.
func (fs *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(fs.path); err != nil {
		return fmt.Errorf("sessions file unavailable: %w", err)
	}
	return nil
}

// Close is a no-op; the file is opened per operation.
func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) readAll() (map[string]sessionRecord, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}
	if len(raw) == 0 {
		return map[string]sessionRecord{}, nil
	}
	var all map[string]sessionRecord
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file: %w", err)
	}
	if all == nil {
		all = map[string]sessionRecord{}
	}
	return all, nil
}

func (fs *FileStore) writeAll(all map[string]sessionRecord) error {
	raw, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	if err := os.WriteFile(fs.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}
	return nil
}
