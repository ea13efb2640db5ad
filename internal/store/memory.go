package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process fallback used when Redis is unavailable and
// by tests.  Expired sessions are dropped lazily on access.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	expires  map[string]time.Time
	locks    map[string]bool
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: map[string]*Session{},
		expires:  map[string]time.Time{},
		locks:    map[string]bool{},
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, name, owner string, doc []byte) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     owner,
		Document:  append([]byte(nil), doc...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[sess.ID] = sess
	m.expires[sess.ID] = now.Add(m.ttl)
	return copySession(sess), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(sess), nil
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(sess.ID); !ok {
		return ErrSessionNotFound
	}
	now := m.now().UTC()
	sess.UpdatedAt = now
	m.sessions[sess.ID] = copySession(sess)
	m.expires[sess.ID] = now.Add(m.ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(id); !ok {
		return ErrSessionNotFound
	}
	m.drop(id)
	return nil
}

func (m *MemoryStore) Lock(_ context.Context, id string) (Unlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[id] {
		return nil, ErrSessionLocked
	}
	m.locks[id] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}

// live must be called with mu held.
func (m *MemoryStore) live(id string) (*Session, bool) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.now().After(m.expires[id]) {
		m.drop(id)
		return nil, false
	}
	return sess, true
}

func (m *MemoryStore) drop(id string) {
	delete(m.sessions, id)
	delete(m.expires, id)
	delete(m.locks, id)
}

func copySession(s *Session) *Session {
	c := *s
	c.Document = append([]byte(nil), s.Document...)
	return &c
}
