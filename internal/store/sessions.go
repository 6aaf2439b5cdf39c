package store

import (
	"log/slog"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionStore keeps live sessions in memory. Entries expire after ttl
// without an update and the least recently used entry is evicted at capacity.
// Nothing survives a restart.
type SessionStore struct {
	cache *expirable.LRU[string, *domain.Session]
}

// NewSessionStore creates a bounded session store.
func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	onEvict := func(key string, s *domain.Session) {
		slog.Debug("Session evicted", "key", key, "session_id", s.ID, "page", s.Page)
	}
	return &SessionStore{
		cache: expirable.NewLRU[string, *domain.Session](capacity, onEvict, ttl),
	}
}

// Get returns the live session for key.
func (s *SessionStore) Get(key string) (*domain.Session, bool) {
	return s.cache.Get(key)
}

// Put stores the session and restarts its expiry.
func (s *SessionStore) Put(key string, sess *domain.Session) {
	s.cache.Add(key, sess)
}

// Delete discards the session for key. It reports whether one existed.
func (s *SessionStore) Delete(key string) bool {
	return s.cache.Remove(key)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}
