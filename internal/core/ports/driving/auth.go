package driving

import (
	"context"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// AuthFlowService drives the OAuth authorization-code flow against the
// streaming provider: redirect building, callback exchange, and logout.
type AuthFlowService interface {
	// Authorize starts an authorization flow.
	// It generates and persists a CSRF state and returns the provider
	// authorization URL to redirect the user to.
	Authorize(ctx context.Context) (*AuthorizeResponse, error)

	// Callback handles the provider's redirect back to us.
	// It validates the state, exchanges the code for tokens, confirms them
	// against the profile endpoint, and persists the credential.
	// Failures are returned as *FlowError with a stable reason code.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)

	// Logout destroys the session's credential.
	Logout(ctx context.Context, sessionID string) error
}

// AuthorizeResponse contains the authorization URL and state.
// @Description Response containing the provider authorization URL
type AuthorizeResponse struct {
	// AuthorizationURL is the URL to redirect the user to for authorization.
	AuthorizationURL string `json:"authorization_url" example:"https://accounts.spotify.com/authorize?client_id=..."`

	// State is the CSRF token that will be returned in the callback.
	State string `json:"state" example:"aB3xY9kL0pQ2rS7t"`

	// ExpiresAt is when the authorization state expires (typically 10 minutes).
	ExpiresAt string `json:"expires_at" example:"2024-01-15T10:10:00Z"`
}

// CallbackRequest represents the provider's callback redirect parameters.
// @Description Callback parameters from the provider redirect
type CallbackRequest struct {
	// Code is the authorization code from the provider.
	Code string `json:"code" example:"AQBx7..."`

	// State is the CSRF token returned by the provider.
	State string `json:"state" example:"aB3xY9kL0pQ2rS7t"`
}

// CallbackResponse contains the result of a successful callback.
// @Description Result of a successful authorization callback
type CallbackResponse struct {
	// SessionToken is the signed token the browser holds in its cookie.
	SessionToken string `json:"session_token"`

	// SessionID identifies the stored credential.
	SessionID string `json:"session_id"`

	// Profile is the resource owner's profile, fetched with the new token.
	Profile *domain.UserProfile `json:"profile"`
}

// Callback failure reasons, surfaced to the user as ?error=<reason> on the
// login route.
const (
	ReasonMissingCodeOrState  = "missing_code_or_state"
	ReasonStateMismatch       = "state_mismatch"
	ReasonTokenExchangeFailed = "token_exchange_failed"
	ReasonUserFetchFailed     = "user_fetch_failed"
	ReasonServerError         = "server_error"
)

// FlowError is a terminal callback failure with a stable reason code.
type FlowError struct {
	Reason      string `json:"error" example:"state_mismatch"`
	Description string `json:"error_description,omitempty" example:"state parameter is unknown or expired"`
}

func (e *FlowError) Error() string {
	if e.Description != "" {
		return e.Reason + ": " + e.Description
	}
	return e.Reason
}
