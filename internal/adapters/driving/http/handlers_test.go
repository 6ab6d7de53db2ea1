package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driving"
)

// Mock services for testing

type mockAuthFlowService struct {
	authorizeFn func(ctx context.Context) (*driving.AuthorizeResponse, error)
	callbackFn  func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error)
	logoutFn    func(ctx context.Context, sessionID string) error

	logoutCalls []string
}

func (m *mockAuthFlowService) Authorize(ctx context.Context) (*driving.AuthorizeResponse, error) {
	if m.authorizeFn != nil {
		return m.authorizeFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthFlowService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if m.callbackFn != nil {
		return m.callbackFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthFlowService) Logout(ctx context.Context, sessionID string) error {
	m.logoutCalls = append(m.logoutCalls, sessionID)
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type mockResourceClient struct {
	profileFn func(ctx context.Context, sessionID string) (*domain.UserProfile, error)
}

func (m *mockResourceClient) Profile(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, sessionID)
	}
	return nil, errors.New("not implemented")
}

func TestHealthHandler(t *testing.T) {
	server := &Server{version: "test"}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %s", response["status"])
	}
}

type mockPinger struct {
	err error
}

func (p *mockPinger) Ping(ctx context.Context) error {
	return p.err
}

func TestReadyHandler(t *testing.T) {
	server := &Server{version: "test", db: &mockPinger{}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestReadyHandler_StoreDown(t *testing.T) {
	server := &Server{version: "test", db: &mockPinger{err: errors.New("connection refused")}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	server := &Server{version: "1.2.3"}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()

	server.handleVersion(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response["version"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	authFlow := &mockAuthFlowService{
		authorizeFn: func(ctx context.Context) (*driving.AuthorizeResponse, error) {
			return &driving.AuthorizeResponse{
				AuthorizationURL: "https://accounts.spotify.com/authorize?state=abc",
				State:            "abc",
			}, nil
		},
	}
	server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

	req := httptest.NewRequest("GET", "/login", nil)
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://accounts.spotify.com/authorize?state=abc" {
		t.Errorf("unexpected redirect target: %s", loc)
	}
}

func TestHandleLogin_ServiceError(t *testing.T) {
	authFlow := &mockAuthFlowService{
		authorizeFn: func(ctx context.Context) (*driving.AuthorizeResponse, error) {
			return nil, errors.New("state store down")
		},
	}
	server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

	req := httptest.NewRequest("GET", "/login", nil)
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.Contains(loc, "error=server_error") {
		t.Errorf("expected server_error redirect, got %s", loc)
	}
}

func TestHandleCallback_Success(t *testing.T) {
	authFlow := &mockAuthFlowService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			if req.Code != "code-1" || req.State != "state-1" {
				t.Errorf("unexpected callback request: %+v", req)
			}
			return &driving.CallbackResponse{
				SessionToken: "signed-token",
				SessionID:    "session-1",
				Profile:      &domain.UserProfile{ID: "user-1"},
			}, nil
		},
	}
	server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

	req := httptest.NewRequest("GET", "/callback?code=code-1&state=state-1", nil)
	rr := httptest.NewRecorder()

	server.handleCallback(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "http://localhost:3000/profile" {
		t.Errorf("unexpected redirect target: %s", loc)
	}

	cookies := rr.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "signed-token" {
		t.Errorf("expected cookie value 'signed-token', got %s", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("expected session cookie to be httpOnly")
	}
}

func TestHandleCallback_MissingParams(t *testing.T) {
	// No code in the query string: the flow must reject before touching
	// the provider.
	authFlow := &mockAuthFlowService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			if req.Code == "" || req.State == "" {
				return nil, &driving.FlowError{Reason: driving.ReasonMissingCodeOrState}
			}
			t.Fatal("expected missing params to short-circuit")
			return nil, nil
		},
	}
	server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

	req := httptest.NewRequest("GET", "/callback?state=state-1", nil)
	rr := httptest.NewRecorder()

	server.handleCallback(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.Contains(loc, "error=missing_code_or_state") {
		t.Errorf("expected missing_code_or_state redirect, got %s", loc)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("expected no cookies on a failed callback")
	}
}

func TestHandleCallback_FlowErrors(t *testing.T) {
	tests := []struct {
		name   string
		reason string
	}{
		{"state mismatch", driving.ReasonStateMismatch},
		{"exchange failed", driving.ReasonTokenExchangeFailed},
		{"user fetch failed", driving.ReasonUserFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authFlow := &mockAuthFlowService{
				callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
					return nil, &driving.FlowError{Reason: tt.reason}
				},
			}
			server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

			req := httptest.NewRequest("GET", "/callback?code=c&state=s", nil)
			rr := httptest.NewRecorder()

			server.handleCallback(rr, req)

			if rr.Code != http.StatusFound {
				t.Fatalf("expected status 302, got %d", rr.Code)
			}
			loc := rr.Header().Get("Location")
			if !strings.Contains(loc, "error="+tt.reason) {
				t.Errorf("expected %s redirect, got %s", tt.reason, loc)
			}
		})
	}
}

func TestHandleCallback_UnknownError(t *testing.T) {
	authFlow := &mockAuthFlowService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			return nil, errors.New("store write failed")
		},
	}
	server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

	req := httptest.NewRequest("GET", "/callback?code=c&state=s", nil)
	rr := httptest.NewRecorder()

	server.handleCallback(rr, req)

	loc := rr.Header().Get("Location")
	if !strings.Contains(loc, "error=server_error") {
		t.Errorf("expected server_error redirect, got %s", loc)
	}
}

func TestHandleLogout(t *testing.T) {
	authFlow := &mockAuthFlowService{}
	server := &Server{authFlow: authFlow, frontendURL: "http://localhost:3000"}

	req := httptest.NewRequest("POST", "/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), sessionIDKey, "session-1"))
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if len(authFlow.logoutCalls) != 1 || authFlow.logoutCalls[0] != "session-1" {
		t.Errorf("expected one logout call for session-1, got %v", authFlow.logoutCalls)
	}

	var cleared *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("expected session cookie to be cleared")
	}
	if cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Errorf("expected an expired empty cookie, got MaxAge=%d Value=%q", cleared.MaxAge, cleared.Value)
	}
}

func TestHandleGetMe_Success(t *testing.T) {
	resource := &mockResourceClient{
		profileFn: func(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
			if sessionID != "session-1" {
				t.Errorf("expected session-1, got %s", sessionID)
			}
			return &domain.UserProfile{ID: "user-1", DisplayName: "Test User"}, nil
		},
	}
	server := &Server{resource: resource}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), sessionIDKey, "session-1"))
	rr := httptest.NewRecorder()

	server.handleGetMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var profile domain.UserProfile
	if err := json.NewDecoder(rr.Body).Decode(&profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if profile.ID != "user-1" {
		t.Errorf("expected user-1, got %s", profile.ID)
	}
}

func TestHandleGetMe_NoSession(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("GET", "/api/me", nil)
	rr := httptest.NewRecorder()

	server.handleGetMe(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleGetMe_AuthErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"no credential", domain.ErrNotFound},
		{"no refresh token", domain.ErrMissingRefreshToken},
		{"authentication expired", domain.ErrAuthenticationExpired},
		{"refresh rejected", &domain.RefreshFailedError{StatusCode: 400, Body: "invalid_grant"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := &mockResourceClient{
				profileFn: func(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
					return nil, tt.err
				},
			}
			authFlow := &mockAuthFlowService{}
			server := &Server{resource: resource, authFlow: authFlow}

			req := httptest.NewRequest("GET", "/api/me", nil)
			req = req.WithContext(context.WithValue(req.Context(), sessionIDKey, "session-1"))
			rr := httptest.NewRecorder()

			server.handleGetMe(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rr.Code)
			}
			// The session is beyond repair: credential destroyed, cookie cleared.
			if len(authFlow.logoutCalls) != 1 || authFlow.logoutCalls[0] != "session-1" {
				t.Errorf("expected session teardown, got logout calls %v", authFlow.logoutCalls)
			}
			var cleared bool
			for _, c := range rr.Result().Cookies() {
				if c.Name == SessionCookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			if !cleared {
				t.Error("expected session cookie to be cleared")
			}
		})
	}
}

func TestHandleGetMe_InternalError(t *testing.T) {
	resource := &mockResourceClient{
		profileFn: func(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
			return nil, errors.New("network down")
		},
	}
	server := &Server{resource: resource}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), sessionIDKey, "session-1"))
	rr := httptest.NewRecorder()

	server.handleGetMe(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	data := map[string]string{"foo": "bar"}
	writeJSON(rr, http.StatusCreated, data)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["foo"] != "bar" {
		t.Errorf("expected foo 'bar', got %s", response["foo"])
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["error"] != "invalid input" {
		t.Errorf("expected error 'invalid input', got %s", response["error"])
	}
}
