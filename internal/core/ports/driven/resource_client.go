package driven

import (
	"context"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// ResourceClient issues authenticated calls to the provider's resource API
// on behalf of a session, handling token expiry and refresh transparently.
type ResourceClient interface {
	// Profile fetches the session owner's profile.
	// Returns domain.ErrAuthenticationExpired when the token is rejected
	// even after a refresh attempt.
	Profile(ctx context.Context, sessionID string) (*domain.UserProfile, error)
}
