// Package store provides durable whole-session snapshot persistence. Two
// backends implement the same Repository contract: a single shared JSON
// document (FileStore) and a per-record SQLite table (SQLiteStore).
package store

import (
	"context"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
)

// Repository persists full ConversationSession snapshots keyed by session id.
//
// Load and List reconstruct the complete aggregate graph (messages, events,
// shell sessions, file operations). Load returns (nil, nil) when the id is
// unknown. Save performs an optimistic version check: it fails with a
// domain.ConflictError when the stored version has advanced since the
// snapshot was loaded, and on success bumps the snapshot's Version in place.
type Repository interface {
	Save(ctx context.Context, session *domain.ConversationSession) error
	Load(ctx context.Context, id domain.SessionID) (*domain.ConversationSession, error)
	Delete(ctx context.Context, id domain.SessionID) (bool, error)
	List(ctx context.Context) ([]*domain.ConversationSession, error)
	Ping(ctx context.Context) error
	Close() error
}
