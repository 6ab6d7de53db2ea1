// Package webapi issues authenticated calls to the provider's resource API
// on behalf of a session, refreshing the access token as needed.
package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Ensure Client implements ResourceClient
var _ driven.ResourceClient = (*Client)(nil)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com"

// Client wraps resource API calls with the token lifecycle: it refreshes
// before use when the stored token has hit its expiry, attaches the bearer
// header, and on a 401 refreshes exactly once more and retries once. A
// second 401 means the session is beyond saving.
type Client struct {
	store      driven.CredentialStore
	refresher  driven.TokenRefresher
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an authenticated resource API client.
func NewClient(store driven.CredentialStore, refresher driven.TokenRefresher, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		store:      store,
		refresher:  refresher,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get performs an authenticated GET against the resource API and decodes the
// JSON response into out.
func (c *Client) Get(ctx context.Context, sessionID, path string, out any) error {
	cred, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	// The expiry instant itself counts as expired; never send a token at
	// or past its boundary.
	if cred.IsExpired() {
		cred, err = c.refresher.Refresh(ctx, sessionID)
		if err != nil {
			return err
		}
	}

	resp, err := c.send(ctx, path, cred.AccessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked server-side despite a valid-looking expiry.
		// Refresh once and retry once; a second 401 is terminal.
		resp.Body.Close()
		cred, err = c.refresher.Refresh(ctx, sessionID)
		if err != nil {
			return err
		}
		resp, err = c.send(ctx, path, cred.AccessToken)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return domain.ErrAuthenticationExpired
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resource call failed: status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Profile fetches the session owner's profile.
func (c *Client) Profile(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
	var payload struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := c.Get(ctx, sessionID, "/v1/me", &payload); err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		ID:          payload.ID,
		DisplayName: payload.DisplayName,
		Email:       payload.Email,
	}
	if len(payload.Images) > 0 {
		profile.ImageURL = payload.Images[0].URL
	}
	return profile, nil
}

// send issues one GET with the bearer token. Each attempt builds a fresh
// request so a retry never reuses a consumed body.
func (c *Client) send(ctx context.Context, path, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}
