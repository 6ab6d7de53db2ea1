package mocks

import (
	"context"
	"sync"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// MockCredentialStore is an in-memory CredentialStore for testing
type MockCredentialStore struct {
	mu          sync.RWMutex
	credentials map[string]*domain.SessionCredential

	// SaveCount tracks how many times Save was called
	SaveCount int

	// SaveErr, GetErr force errors when set
	SaveErr error
	GetErr  error
}

// NewMockCredentialStore creates a new MockCredentialStore
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		credentials: make(map[string]*domain.SessionCredential),
	}
}

func (m *MockCredentialStore) Save(ctx context.Context, sessionID string, cred *domain.SessionCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.credentials[sessionID] = cred.Clone()
	return nil
}

func (m *MockCredentialStore) Get(ctx context.Context, sessionID string) (*domain.SessionCredential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	cred, ok := m.credentials[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cred.Clone(), nil
}

func (m *MockCredentialStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.credentials, sessionID)
	return nil
}

// Len returns the number of stored credentials
func (m *MockCredentialStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.credentials)
}
