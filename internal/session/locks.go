package session

import (
	"sync"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
)

// keyedMutex serializes load→mutate→save sequences per session id. Entries
// are reference counted and removed once the last holder releases, so the
// map does not accumulate a lock per session ever touched.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[domain.SessionID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[domain.SessionID]*lockEntry)}
}

// Lock acquires the per-id mutex and returns its release function.
func (k *keyedMutex) Lock(id domain.SessionID) func() {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &lockEntry{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
