package transcript

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store, used in tests and when no database
// path is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	exchanges map[string][]Exchange
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]Session),
		exchanges: make(map[string][]Exchange),
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) AppendExchange(_ context.Context, e Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[e.SessionID]; !ok {
		return ErrNotFound{ID: e.SessionID}
	}
	m.exchanges[e.SessionID] = append(m.exchanges[e.SessionID], e)
	return nil
}

func (m *MemoryStore) ListSessions(_ context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound{ID: id}
	}
	return s, nil
}

func (m *MemoryStore) Exchanges(_ context.Context, sessionID string) ([]Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return nil, ErrNotFound{ID: sessionID}
	}
	out := make([]Exchange, len(m.exchanges[sessionID]))
	copy(out, m.exchanges[sessionID])
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Assert that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
