package domain

import "time"

// SessionCredential holds the provider tokens for one authenticated browser
// session. The access token is a short-lived bearer credential; the refresh
// token outlives it and never leaves the server side.
type SessionCredential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// IsExpired reports whether the access token can no longer be trusted.
// The expiry instant itself counts as expired.
func (c *SessionCredential) IsExpired() bool {
	return !time.Now().Before(c.ExpiresAt)
}

// HasScope checks whether the given scope was granted at exchange time.
// Tokens are opaque - scope checks never parse the token itself.
func (c *SessionCredential) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the credential.
func (c *SessionCredential) Clone() *SessionCredential {
	clone := *c
	if c.Scopes != nil {
		clone.Scopes = append([]string(nil), c.Scopes...)
	}
	return &clone
}
