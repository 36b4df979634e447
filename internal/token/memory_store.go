package token

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in tests and single-node
// development setups where Redis is not available.
type MemoryStore struct {
	mu          sync.Mutex
	byKey       map[string]Token
	byPrincipal map[string]string // principal ID -> current key
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey:       make(map[string]Token),
		byPrincipal: make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, t Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byKey[t.Key] = t
	m.byPrincipal[t.PrincipalID] = t.Key
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.byKey[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.byKey[key]
	if !ok {
		return nil
	}

	delete(m.byKey, key)
	if m.byPrincipal[t.PrincipalID] == key {
		delete(m.byPrincipal, t.PrincipalID)
	}
	return nil
}

func (m *MemoryStore) DeleteByPrincipal(_ context.Context, principalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.byPrincipal[principalID]
	if !ok {
		return nil
	}

	delete(m.byKey, key)
	delete(m.byPrincipal, principalID)
	return nil
}

func (m *MemoryStore) All(_ context.Context) ([]Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Token, 0, len(m.byKey))
	for _, t := range m.byKey {
		out = append(out, t)
	}
	return out, nil
}
