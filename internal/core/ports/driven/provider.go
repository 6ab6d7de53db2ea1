package driven

import (
	"context"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// TokenGrant is the provider's response to a token-endpoint call.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresIn    int
}

// Provider performs the OAuth operations against the streaming platform.
// Tokens are opaque strings; nothing here inspects their structure.
type Provider interface {
	// BuildAuthURL constructs the authorization URL the browser is
	// redirected to, carrying the given CSRF state.
	BuildAuthURL(state string) string

	// ExchangeCode exchanges an authorization code for tokens via the token
	// endpoint, authenticated with the client credentials.
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)

	// Refresh obtains a new access token using a refresh token.
	// A non-2xx provider response is returned as *domain.RefreshFailedError.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// GetProfile fetches the resource owner's profile with the access token.
	GetProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error)
}
