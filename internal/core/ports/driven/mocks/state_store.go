package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// MockAuthStateStore is an in-memory AuthStateStore for testing
type MockAuthStateStore struct {
	mu     sync.Mutex
	states map[string]*driven.AuthState

	cleanupCount int

	// SaveErr forces Save to fail when set
	SaveErr error
}

// NewMockAuthStateStore creates a new MockAuthStateStore
func NewMockAuthStateStore() *MockAuthStateStore {
	return &MockAuthStateStore{
		states: make(map[string]*driven.AuthState),
	}
}

func (m *MockAuthStateStore) Save(ctx context.Context, state *driven.AuthState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.states[state.State] = state
	return nil
}

func (m *MockAuthStateStore) GetAndDelete(ctx context.Context, state string) (*driven.AuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[state]
	if !ok {
		return nil, nil
	}
	delete(m.states, state)
	if time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return s, nil
}

func (m *MockAuthStateStore) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupCount++
	now := time.Now()
	for k, s := range m.states {
		if now.After(s.ExpiresAt) {
			delete(m.states, k)
		}
	}
	return nil
}

// CleanupCount returns how many times Cleanup was called
func (m *MockAuthStateStore) CleanupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupCount
}

// Len returns the number of pending states
func (m *MockAuthStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
