package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrMissingCredentialConfig indicates required client credentials are
	// absent at startup; nothing can proceed without them
	ErrMissingCredentialConfig = errors.New("missing credential configuration")

	// ErrMissingRefreshToken indicates a refresh was requested but no
	// refresh token is stored; the user must re-run the authorization flow
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// ErrAuthenticationExpired indicates an authenticated call failed even
	// after a refresh attempt; the user must log in again
	ErrAuthenticationExpired = errors.New("authentication expired")

	// ErrSessionInvalid indicates the browser session token is malformed,
	// tampered with, or expired
	ErrSessionInvalid = errors.New("session token invalid")
)

// RefreshFailedError is returned when the provider rejects a refresh
// request. It carries the provider's response so callers can log it; the
// stored credential is left untouched and the session must be
// re-established, never retried in a loop.
type RefreshFailedError struct {
	StatusCode int
	Body       string
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh failed: status %d: %s", e.StatusCode, e.Body)
}
