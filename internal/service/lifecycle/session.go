package lifecycle

import (
	"sync"
	"time"

	models "auditcore/internal/domain/models/lifecycle"
)

// SessionCache gives the console a consistent, current view of a document's
// versions without re-fetching on every render. Sessions are keyed by
// document ID, invalidated on successful writes (read-your-writes) and torn
// down when the caller navigates away or the TTL lapses.
type SessionCache struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

type session struct {
	versions   []models.DocumentVersion // newest first
	selectedID string
	fetchedAt  time.Time
}

// NewSessionCache creates a cache whose entries expire after ttl.
func NewSessionCache(ttl time.Duration) *SessionCache {
	return &SessionCache{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Versions returns the cached listing for a document, or false when the
// session is absent or stale.
func (c *SessionCache) Versions(documentID string) ([]models.DocumentVersion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[documentID]
	if !ok || c.now().Sub(s.fetchedAt) > c.ttl {
		delete(c.sessions, documentID)
		return nil, false
	}
	return s.versions, true
}

// Store replaces the cached listing, preserving the selection pointer when
// the selected version is still present.
func (c *SessionCache) Store(documentID string, versions []models.DocumentVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := ""
	if prev, ok := c.sessions[documentID]; ok {
		for _, v := range versions {
			if v.ID == prev.selectedID {
				selected = prev.selectedID
				break
			}
		}
	}
	c.sessions[documentID] = &session{
		versions:   versions,
		selectedID: selected,
		fetchedAt:  c.now(),
	}
}

// Select moves the session's navigation pointer.
func (c *SessionCache) Select(documentID, versionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[documentID]; ok {
		s.selectedID = versionID
	}
}

// Selected returns the session's navigation pointer, or empty when nothing
// has been selected.
func (c *SessionCache) Selected(documentID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[documentID]; ok {
		return s.selectedID
	}
	return ""
}

// Invalidate drops the session after a write so the next read refetches.
func (c *SessionCache) Invalidate(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, documentID)
}

// keyedMutex serializes operations per document. The version-number counter
// is the only mutable shared state on the version path; holding the
// document's lock across read-max-then-insert keeps numbers unique without
// a global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use, and returns
// the unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
