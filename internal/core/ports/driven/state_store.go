package driven

import (
	"context"
	"time"
)

// AuthState represents a pending authorization flow.
// The state value is round-tripped through the provider redirect and must
// match on the callback, or the callback is rejected.
type AuthState struct {
	// State is a cryptographically random string used for CSRF protection.
	State string

	// RedirectURI is the callback URL registered for this flow.
	RedirectURI string

	// CreatedAt is when the state was issued.
	CreatedAt time.Time

	// ExpiresAt is when the state stops being accepted (typically 10 minutes).
	ExpiresAt time.Time
}

// AuthStateStore manages pending authorization states.
// States are single-use and expire after a short period.
type AuthStateStore interface {
	// Save stores a new state.
	Save(ctx context.Context, state *AuthState) error

	// GetAndDelete atomically retrieves and deletes the state, enforcing
	// single-use semantics. Returns nil, nil if the state doesn't exist or
	// has expired.
	GetAndDelete(ctx context.Context, state string) (*AuthState, error)

	// Cleanup removes expired states. Called periodically by the janitor.
	Cleanup(ctx context.Context) error
}
