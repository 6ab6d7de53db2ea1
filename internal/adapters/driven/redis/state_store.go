package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AuthStateStore = (*AuthStateStore)(nil)

const statePrefix = "authstate:"

// DefaultStateTTL is the default time-to-live for pending auth states.
const DefaultStateTTL = 10 * time.Minute

// AuthStateStore implements driven.AuthStateStore using Redis.
// States expire via Redis TTL and are consumed with GETDEL for single-use.
type AuthStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAuthStateStore creates a Redis-backed AuthStateStore.
func NewAuthStateStore(client *redis.Client) *AuthStateStore {
	return &AuthStateStore{client: client, ttl: DefaultStateTTL}
}

// Save stores a new auth state with TTL derived from ExpiresAt.
func (s *AuthStateStore) Save(ctx context.Context, state *driven.AuthState) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = now.Add(s.ttl)
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		// Already expired, nothing to store.
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal auth state: %w", err)
	}
	if err := s.client.Set(ctx, statePrefix+state.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	return nil
}

// GetAndDelete atomically retrieves and deletes the state.
func (s *AuthStateStore) GetAndDelete(ctx context.Context, state string) (*driven.AuthState, error) {
	data, err := s.client.GetDel(ctx, statePrefix+state).Bytes()
	if err == redis.Nil {
		return nil, nil // unknown or already expired
	}
	if err != nil {
		return nil, fmt.Errorf("get and delete auth state: %w", err)
	}

	var authState driven.AuthState
	if err := json.Unmarshal(data, &authState); err != nil {
		return nil, fmt.Errorf("unmarshal auth state: %w", err)
	}
	if time.Now().After(authState.ExpiresAt) {
		return nil, nil
	}
	return &authState, nil
}

// Cleanup is a no-op: Redis TTLs evict expired states on their own.
func (s *AuthStateStore) Cleanup(ctx context.Context) error {
	return nil
}
