package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory storage.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[uuid.UUID]map[string]struct{}
	ticker   *time.Ticker
	done     chan struct{}
	once     sync.Once
}

// NewMemoryStore creates a new in-memory session store.
// A positive cleanupInterval starts a background sweep of expired sessions.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]*Session),
		byUser:   make(map[uuid.UUID]map[string]struct{}),
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Create stores a new session
func (m *MemoryStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.TokenHash == "" || session.UserID == uuid.Nil {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.TokenHash] = session.clone()

	idx, ok := m.byUser[session.UserID]
	if !ok {
		idx = make(map[string]struct{})
		m.byUser[session.UserID] = idx
	}
	idx[session.TokenHash] = struct{}{}

	return nil
}

// Get retrieves a session by token digest
func (m *MemoryStore) Get(ctx context.Context, tokenHash string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[tokenHash]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.clone(), nil
}

// Delete removes a session by token digest
func (m *MemoryStore) Delete(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(tokenHash)
	return nil
}

// DeleteByUserID removes all sessions for a specific user
func (m *MemoryStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for tokenHash := range m.byUser[userID] {
		delete(m.sessions, tokenHash)
	}
	delete(m.byUser, userID)

	return nil
}

// DeleteExpired removes all expired sessions
func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for tokenHash, session := range m.sessions {
		if session.IsExpired(now) {
			m.deleteLocked(tokenHash)
		}
	}
	return nil
}

// Count returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) deleteLocked(tokenHash string) {
	session, ok := m.sessions[tokenHash]
	if !ok {
		return
	}
	delete(m.sessions, tokenHash)

	if idx := m.byUser[session.UserID]; idx != nil {
		delete(idx, tokenHash)
		if len(idx) == 0 {
			delete(m.byUser, session.UserID)
		}
	}
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background(), time.Now())
		case <-m.done:
			return
		}
	}
}
