package driven

import (
	"context"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// TokenRefresher replaces an expired access token for a session.
// Implementations coalesce concurrent refreshes for the same session into a
// single provider call; on failure the stored credential is left untouched.
type TokenRefresher interface {
	// Refresh refreshes the session's tokens and returns the updated
	// credential. Returns domain.ErrMissingRefreshToken when no refresh
	// token is stored, or *domain.RefreshFailedError when the provider
	// rejects the refresh.
	Refresh(ctx context.Context, sessionID string) (*domain.SessionCredential, error)
}
