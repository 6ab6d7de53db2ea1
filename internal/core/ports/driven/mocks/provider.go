package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// MockProvider is a configurable Provider for testing.
// Set the Fn fields to control behaviour; call counts are tracked.
type MockProvider struct {
	mu sync.Mutex

	BuildAuthURLFn func(state string) string
	ExchangeCodeFn func(ctx context.Context, code string) (*driven.TokenGrant, error)
	RefreshFn      func(ctx context.Context, refreshToken string) (*driven.TokenGrant, error)
	GetProfileFn   func(ctx context.Context, accessToken string) (*domain.UserProfile, error)

	ExchangeCalls int
	RefreshCalls  int
	ProfileCalls  int
}

func (m *MockProvider) BuildAuthURL(state string) string {
	if m.BuildAuthURLFn != nil {
		return m.BuildAuthURLFn(state)
	}
	return "https://provider.example/authorize?state=" + state
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*driven.TokenGrant, error) {
	m.mu.Lock()
	m.ExchangeCalls++
	m.mu.Unlock()
	if m.ExchangeCodeFn != nil {
		return m.ExchangeCodeFn(ctx, code)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProvider) Refresh(ctx context.Context, refreshToken string) (*driven.TokenGrant, error) {
	m.mu.Lock()
	m.RefreshCalls++
	m.mu.Unlock()
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx, refreshToken)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProvider) GetProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	m.mu.Lock()
	m.ProfileCalls++
	m.mu.Unlock()
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, accessToken)
	}
	return nil, errors.New("not implemented")
}

// RefreshCallCount returns how many times Refresh was invoked
func (m *MockProvider) RefreshCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefreshCalls
}
