// Package session implements the conversation domain service: the single
// authoritative point mediating between the in-process cache and the durable
// store. It defines the consistency contract: reads are cache-first, every
// load→mutate→save sequence is serialized per session id, and saves carry an
// optimistic version check with one transparent retry on conflict.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/likhonsdevbd/sheikh-ai/internal/cache"
	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
	"github.com/likhonsdevbd/sheikh-ai/internal/metrics"
	"github.com/likhonsdevbd/sheikh-ai/internal/store"
)

// DefaultCacheCapacity bounds the session cache when no capacity is configured.
const DefaultCacheCapacity = 1024

// Service orchestrates store, cache and aggregate for session lifecycle
// operations.
type Service struct {
	repo    store.Repository
	cache   *cache.SessionCache
	locks   *keyedMutex
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithCacheCapacity bounds the in-process session cache.
func WithCacheCapacity(n int) Option {
	return func(s *Service) { s.cache = cache.New(n) }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a session service on top of a repository.
func NewService(repo store.Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cache:  cache.New(DefaultCacheCapacity),
		locks:  newKeyedMutex(),
		logger: logger.With().Str("component", "session.service").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create constructs a new pending session, records its session_created event
// and persists it. The new session is not cached until first Get.
func (s *Service) Create(ctx context.Context, title string) (*domain.ConversationSession, error) {
	session := domain.NewConversationSession(title)
	if _, err := session.AddEvent(domain.EventSessionCreated, map[string]any{"title": title}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}
	s.logger.Info().Str("session_id", session.ID.String()).Str("title", title).Msg("session created")
	return session, nil
}

// Get returns a snapshot of the session, cache-first. On a miss it loads
// from the store and populates the cache. The returned session is a deep
// copy taken under the per-id lock, so readers never share mutable state
// with a concurrent Mutate. Returns (nil, nil) when the id is unknown.
func (s *Service) Get(ctx context.Context, id domain.SessionID) (*domain.ConversationSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if cached, ok := s.cache.Get(id); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return cached.Clone(), nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	session, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	s.cache.Put(id, session)
	return session.Clone(), nil
}

// List always delegates to the store, bypassing the cache entirely. A cached
// session mutated in memory but not yet saved is therefore not reflected
// here; that mismatch is part of the documented contract.
func (s *Service) List(ctx context.Context) ([]*domain.ConversationSession, error) {
	return s.repo.List(ctx)
}

// Delete evicts the session from the cache and removes it from the store.
// Returns false when the id was unknown.
func (s *Service) Delete(ctx context.Context, id domain.SessionID) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.cache.Delete(id)
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		if s.metrics != nil {
			s.metrics.SessionsDeleted.Inc()
		}
		s.logger.Info().Str("session_id", id.String()).Msg("session deleted")
	}
	return existed, nil
}

// Stop marks the session stopped, records a status_changed event and
// persists. Returns false when the id was unknown.
func (s *Service) Stop(ctx context.Context, id domain.SessionID) (bool, error) {
	_, err := s.Mutate(ctx, id, func(session *domain.ConversationSession) error {
		old := session.Status
		if err := session.UpdateStatus(string(domain.StatusStopped)); err != nil {
			return err
		}
		_, err := session.AddEvent(domain.EventStatusChanged, map[string]any{
			"old_status": string(old),
			"new_status": string(domain.StatusStopped),
		})
		return err
	})
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Mutate runs fn against the session under the per-id lock and persists the
// result, refreshing the cache. When the save hits a version conflict (an
// external writer advanced the stored record), the cached snapshot is
// discarded and the mutation is re-applied once against a fresh load.
// The returned session is a copy decoupled from the cached object.
// Returns domain.ErrNotFound when the id is unknown.
func (s *Service) Mutate(ctx context.Context, id domain.SessionID, fn func(*domain.ConversationSession) error) (*domain.ConversationSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		if !domain.IsConflict(err) {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.SaveConflicts.Inc()
		}
		s.logger.Warn().Str("session_id", id.String()).Msg("save conflict, retrying against fresh snapshot")

		s.cache.Delete(id)
		session, err = s.loadLocked(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(session); err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, session); err != nil {
			return nil, err
		}
	}

	s.cache.Put(id, session)
	return session.Clone(), nil
}

func (s *Service) loadLocked(ctx context.Context, id domain.SessionID) (*domain.ConversationSession, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached, nil
	}
	session, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	s.cache.Put(id, session)
	return session, nil
}
