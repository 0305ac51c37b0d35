// Package cache provides the bounded in-process session cache used by the
// read-through path of the session service. Capacity-bounded LRU: the
// least recently used session is evicted when a new one would exceed the cap,
// so the cache cannot grow without bound with the number of sessions read.
package cache

import (
	"container/list"
	"sync"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
)

type entry struct {
	id      domain.SessionID
	session *domain.ConversationSession
}

// SessionCache is a thread-safe LRU of conversation sessions keyed by id.
type SessionCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[domain.SessionID]*list.Element
}

// New creates a cache holding at most capacity sessions. Panics if
// capacity < 1.
func New(capacity int) *SessionCache {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}
	return &SessionCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[domain.SessionID]*list.Element, capacity),
	}
}

// Get returns the cached session and marks it most recently used.
func (c *SessionCache) Get(id domain.SessionID) (*domain.ConversationSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).session, true
}

// Put inserts or replaces a session. Returns the evicted session id and true
// when the insert pushed out the least recently used entry.
func (c *SessionCache) Put(id domain.SessionID, session *domain.ConversationSession) (domain.SessionID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		el.Value.(*entry).session = session
		c.order.MoveToFront(el)
		return "", false
	}

	var evicted domain.SessionID
	var didEvict bool
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		victim := oldest.Value.(*entry)
		c.order.Remove(oldest)
		delete(c.items, victim.id)
		evicted, didEvict = victim.id, true
	}

	c.items[id] = c.order.PushFront(&entry{id: id, session: session})
	return evicted, didEvict
}

// Delete evicts a session. Returns true if it was cached.
func (c *SessionCache) Delete(id domain.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, id)
	return true
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every cached session.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[domain.SessionID]*list.Element, c.capacity)
}
