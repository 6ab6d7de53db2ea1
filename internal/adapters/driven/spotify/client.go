// Package spotify implements the Provider port against the Spotify Web API.
// Endpoints are configurable so tests can point at local servers.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Ensure Client implements the Provider port.
var _ driven.Provider = (*Client)(nil)

// Default Spotify endpoints.
const (
	DefaultAuthURL    = "https://accounts.spotify.com/authorize"
	DefaultTokenURL   = "https://accounts.spotify.com/api/token"
	DefaultProfileURL = "https://api.spotify.com/v1/me"
)

// DefaultScopes are requested when the config doesn't override them.
var DefaultScopes = []string{"user-read-private", "user-read-email"}

// requestTimeout bounds every token-endpoint and profile call so a slow
// provider surfaces as a failure instead of hanging the flow.
const requestTimeout = 10 * time.Second

// Config holds the OAuth app credentials and endpoint overrides.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// Endpoint overrides, empty means the Spotify defaults.
	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// Client performs OAuth and profile calls against Spotify.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Spotify client, filling endpoint defaults.
func NewClient(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = DefaultProfileURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// BuildAuthURL constructs the authorization URL for the code grant.
func (c *Client) BuildAuthURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURI},
		"scope":         {strings.Join(c.cfg.Scopes, " ")},
		"state":         {state},
	}
	return c.cfg.AuthURL + "?" + params.Encode()
}

// tokenResponse is the token endpoint's JSON body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// ExchangeCode exchanges an authorization code for tokens.
// The token endpoint is authenticated with HTTP Basic client credentials.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*driven.TokenGrant, error) {
	params := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.cfg.RedirectURI},
	}

	body, status, err := c.postToken(ctx, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("token exchange failed: status %d: %s", status, string(body))
	}

	return parseTokenResponse(body)
}

// Refresh obtains a new access token from a refresh token.
// Non-2xx responses become *domain.RefreshFailedError carrying the provider
// body; callers treat that as fatal for the session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*driven.TokenGrant, error) {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	body, status, err := c.postToken(ctx, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &domain.RefreshFailedError{StatusCode: status, Body: string(body)}
	}

	return parseTokenResponse(body)
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get profile failed: status %d: %s", resp.StatusCode, string(body))
	}

	var user struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	profile := &domain.UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}
	return profile, nil
}

// postToken sends a form-encoded request to the token endpoint with Basic
// client authentication and returns the raw body and status.
func (c *Client) postToken(ctx context.Context, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.TokenURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func parseTokenResponse(body []byte) (*driven.TokenGrant, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	return &driven.TokenGrant{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		Scope:        tr.Scope,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}
