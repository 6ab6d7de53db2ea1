package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

func testConfig(tokenURL, profileURL string) Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/callback",
		TokenURL:     tokenURL,
		ProfileURL:   profileURL,
	}
}

func TestBuildAuthURL(t *testing.T) {
	c := NewClient(Config{
		ClientID:    "client-id",
		RedirectURI: "http://localhost:8080/callback",
		Scopes:      []string{"user-read-private", "user-read-email"},
	})

	raw := c.BuildAuthURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.spotify.com", u.Host)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/callback", q.Get("redirect_uri"))
	assert.Equal(t, "user-read-private user-read-email", q.Get("scope"))
	assert.Equal(t, "state-123", q.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected Basic auth")
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "abc123", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:8080/callback", r.PostForm.Get("redirect_uri"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "AT1",
			"token_type":    "Bearer",
			"scope":         "user-read-private user-read-email",
			"expires_in":    3600,
			"refresh_token": "RT1",
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""))
	grant, err := c.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "AT1", grant.AccessToken)
	assert.Equal(t, "RT1", grant.RefreshToken)
	assert.Equal(t, 3600, grant.ExpiresIn)
	assert.Equal(t, "user-read-private user-read-email", grant.Scope)
}

func TestExchangeCode_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""))
	_, err := c.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange failed")
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "RT1", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "AT2",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""))
	grant, err := c.Refresh(context.Background(), "RT1")
	require.NoError(t, err)

	assert.Equal(t, "AT2", grant.AccessToken)
	// Spotify only returns a new refresh token when it rotates.
	assert.Empty(t, grant.RefreshToken)
}

func TestRefresh_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh token revoked"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""))
	_, err := c.Refresh(context.Background(), "RT-revoked")

	var refreshErr *domain.RefreshFailedError
	require.True(t, errors.As(err, &refreshErr), "expected RefreshFailedError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, refreshErr.StatusCode)
	assert.Contains(t, refreshErr.Body, "invalid_grant")
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"id":           "user-1",
			"display_name": "Test User",
			"email":        "test@example.com",
			"images":       []map[string]string{{"url": "https://img.example/avatar.png"}},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig("", srv.URL))
	profile, err := c.GetProfile(context.Background(), "AT1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "Test User", profile.DisplayName)
	assert.Equal(t, "test@example.com", profile.Email)
	assert.Equal(t, "https://img.example/avatar.png", profile.ImageURL)
}

func TestGetProfile_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":401}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testConfig("", srv.URL))
	_, err := c.GetProfile(context.Background(), "AT-expired")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get profile failed")
}
