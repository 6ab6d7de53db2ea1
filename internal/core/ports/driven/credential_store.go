package driven

import (
	"context"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// CredentialStore persists the Session Credential keyed by session ID.
// It is a key-value abstraction so implementations can survive restarts
// (Redis, PostgreSQL) or be swapped for an in-memory fake in tests.
//
// Save replaces the whole credential in one write - access token, refresh
// token, and expiry land together or not at all. Concurrent writers are
// last-write-wins; there is no cross-context transaction.
type CredentialStore interface {
	// Save stores or replaces the credential for a session.
	Save(ctx context.Context, sessionID string, cred *domain.SessionCredential) error

	// Get retrieves the credential for a session.
	// Returns domain.ErrNotFound if no credential exists.
	Get(ctx context.Context, sessionID string) (*domain.SessionCredential, error)

	// Delete removes the credential. Deleting a missing credential is not
	// an error.
	Delete(ctx context.Context, sessionID string) error
}
