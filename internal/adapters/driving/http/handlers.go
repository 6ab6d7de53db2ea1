package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driving"
)

// SessionCookieName is the cookie carrying the signed session token.
// The cookie only references the server-side credential; provider tokens
// never reach the browser.
const SessionCookieName = "harmonia_session"

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"authentication expired"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks the credential store backend)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Store unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Authorization flow endpoints

// handleLogin godoc
// @Summary      Start login
// @Description  Generates a CSRF state and redirects the browser to the provider's authorization page
// @Tags         Auth
// @Success      302  "Redirect to the provider"
// @Router       /login [get]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	resp, err := s.authFlow.Authorize(r.Context())
	if err != nil {
		s.redirectLoginError(w, r, driving.ReasonServerError)
		return
	}

	http.Redirect(w, r, resp.AuthorizationURL, http.StatusFound)
}

// handleCallback godoc
// @Summary      Authorization callback
// @Description  Receives the provider redirect, validates the state, exchanges the code for tokens and establishes a session cookie
// @Tags         Auth
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "CSRF state"
// @Success      302  "Redirect to the frontend"
// @Router       /callback [get]
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	req := driving.CallbackRequest{
		Code:  r.URL.Query().Get("code"),
		State: r.URL.Query().Get("state"),
	}

	resp, err := s.authFlow.Callback(r.Context(), req)
	if err != nil {
		var flowErr *driving.FlowError
		if errors.As(err, &flowErr) {
			s.redirectLoginError(w, r, flowErr.Reason)
			return
		}
		s.redirectLoginError(w, r, driving.ReasonServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    resp.SessionToken,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.frontendURL+"/profile", http.StatusFound)
}

// handleLogout godoc
// @Summary      Logout
// @Description  Destroys the session credential and clears the session cookie
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID := GetSessionID(r.Context())
	if sessionID != "" {
		_ = s.authFlow.Logout(r.Context(), sessionID)
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Profile endpoint

// handleGetMe godoc
// @Summary      Get current profile
// @Description  Returns the session owner's profile, refreshing the provider token as needed
// @Tags         Profile
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  ErrorResponse  "Session or authentication expired"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /api/me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	sessionID := GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := s.resource.Profile(r.Context(), sessionID)
	if err != nil {
		var refreshErr *domain.RefreshFailedError
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrMissingRefreshToken),
			errors.Is(err, domain.ErrAuthenticationExpired),
			errors.As(err, &refreshErr):
			// The credential cannot be repaired. Destroy the session so the
			// browser starts a fresh login.
			_ = s.authFlow.Logout(r.Context(), sessionID)
			s.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "authentication expired")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectLoginError sends the browser back to the frontend login page with
// a stable error reason in the query string.
func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, reason string) {
	target := s.frontendURL + "/login?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusFound)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
