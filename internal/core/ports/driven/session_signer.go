package driven

import "time"

// SessionSigner mints and verifies the signed token the browser holds in its
// session cookie. The token carries only the session ID - provider tokens
// stay server-side in the CredentialStore.
type SessionSigner interface {
	// Sign creates a signed session token expiring at the given instant.
	Sign(sessionID string, expiresAt time.Time) (string, error)

	// Verify validates a session token and returns the session ID.
	// Returns domain.ErrSessionInvalid for tampered or expired tokens.
	Verify(token string) (string, error)
}
