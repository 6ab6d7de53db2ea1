package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialStore = (*CredentialStore)(nil)

const credentialPrefix = "credential:"

// DefaultCredentialTTL bounds how long a credential survives without a new
// login; it tracks the browser session lifetime, not the access token's.
const DefaultCredentialTTL = 30 * 24 * time.Hour

// CredentialStore implements driven.CredentialStore using Redis.
// Each credential is one JSON blob under one key, so a Save replaces all
// fields atomically - no partial writes are observable.
type CredentialStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCredentialStore creates a Redis-backed CredentialStore.
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client, ttl: DefaultCredentialTTL}
}

// NewCredentialStoreWithTTL creates a CredentialStore with a custom TTL.
func NewCredentialStoreWithTTL(client *redis.Client, ttl time.Duration) *CredentialStore {
	return &CredentialStore{client: client, ttl: ttl}
}

// Save stores or replaces the session's credential.
func (s *CredentialStore) Save(ctx context.Context, sessionID string, cred *domain.SessionCredential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := s.client.Set(ctx, credentialPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Get retrieves the session's credential.
func (s *CredentialStore) Get(ctx context.Context, sessionID string) (*domain.SessionCredential, error) {
	data, err := s.client.Get(ctx, credentialPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	var cred domain.SessionCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}
	return &cred, nil
}

// Delete removes the session's credential.
func (s *CredentialStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, credentialPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
