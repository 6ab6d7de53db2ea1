package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driving"
	"github.com/harmonia-labs/harmonia-auth/internal/randstr"
)

// Ensure authFlowService implements AuthFlowService
var _ driving.AuthFlowService = (*authFlowService)(nil)

const (
	// stateLength is the length of the generated CSRF state parameter.
	stateLength = 16

	// stateTTL is how long an issued state is accepted on the callback.
	stateTTL = 10 * time.Minute
)

// AuthFlowConfig holds configuration for the auth flow service.
type AuthFlowConfig struct {
	// StateStore persists pending authorization states.
	StateStore driven.AuthStateStore

	// CredentialStore persists session credentials.
	CredentialStore driven.CredentialStore

	// Provider performs the OAuth calls against the streaming platform.
	Provider driven.Provider

	// Signer mints the browser session token.
	Signer driven.SessionSigner

	// RedirectURI is the callback URL registered with the provider.
	RedirectURI string

	// SessionTTL bounds the browser session. Defaults to 30 days.
	SessionTTL time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// authFlowService implements the AuthFlowService interface.
type authFlowService struct {
	stateStore      driven.AuthStateStore
	credentialStore driven.CredentialStore
	provider        driven.Provider
	signer          driven.SessionSigner
	redirectURI     string
	sessionTTL      time.Duration
	logger          *slog.Logger
}

// NewAuthFlowService creates a new auth flow service.
func NewAuthFlowService(cfg AuthFlowConfig) driving.AuthFlowService {
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &authFlowService{
		stateStore:      cfg.StateStore,
		credentialStore: cfg.CredentialStore,
		provider:        cfg.Provider,
		signer:          cfg.Signer,
		redirectURI:     cfg.RedirectURI,
		sessionTTL:      sessionTTL,
		logger:          logger,
	}
}

// Authorize starts an authorization flow.
// The generated state is persisted so the callback can validate it; without
// that comparison the state parameter would be meaningless as CSRF protection.
func (s *authFlowService) Authorize(ctx context.Context) (*driving.AuthorizeResponse, error) {
	state, err := randstr.New(stateLength)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(stateTTL)
	authState := &driven.AuthState{
		State:       state,
		RedirectURI: s.redirectURI,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}

	if err := s.stateStore.Save(ctx, authState); err != nil {
		return nil, fmt.Errorf("save auth state: %w", err)
	}

	return &driving.AuthorizeResponse{
		AuthorizationURL: s.provider.BuildAuthURL(state),
		State:            state,
		ExpiresAt:        expiresAt.Format(time.RFC3339),
	}, nil
}

// Callback handles the provider's redirect back to us.
// Two terminal outcomes: success (credential persisted, session token
// minted) or a *driving.FlowError with a stable reason. A failed exchange is
// surfaced immediately, never retried.
func (s *authFlowService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if req.Code == "" || req.State == "" {
		return nil, &driving.FlowError{
			Reason:      driving.ReasonMissingCodeOrState,
			Description: "callback is missing the code or state parameter",
		}
	}

	// Validate and consume the state (single-use).
	authState, err := s.stateStore.GetAndDelete(ctx, req.State)
	if err != nil {
		return nil, fmt.Errorf("get auth state: %w", err)
	}
	if authState == nil {
		s.logger.Warn("callback rejected: state unknown or expired",
			"state", req.State,
		)
		return nil, &driving.FlowError{
			Reason:      driving.ReasonStateMismatch,
			Description: "state parameter is unknown or expired",
		}
	}

	exchangedAt := time.Now()
	grant, err := s.provider.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, &driving.FlowError{
			Reason:      driving.ReasonTokenExchangeFailed,
			Description: err.Error(),
		}
	}

	// Confirm the new token works before persisting anything.
	profile, err := s.provider.GetProfile(ctx, grant.AccessToken)
	if err != nil {
		return nil, &driving.FlowError{
			Reason:      driving.ReasonUserFetchFailed,
			Description: err.Error(),
		}
	}

	// A fresh session supersedes any previous one; the store write replaces
	// the whole credential at once.
	sessionID := uuid.NewString()
	cred := &domain.SessionCredential{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    exchangedAt.Add(time.Duration(grant.ExpiresIn) * time.Second),
		Scopes:       splitScopes(grant.Scope),
	}
	if err := s.credentialStore.Save(ctx, sessionID, cred); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}

	token, err := s.signer.Sign(sessionID, time.Now().Add(s.sessionTTL))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("session established",
		"session_id", sessionID,
		"user_id", profile.ID,
		"scopes", cred.Scopes,
	)

	return &driving.CallbackResponse{
		SessionToken: token,
		SessionID:    sessionID,
		Profile:      profile,
	}, nil
}

// Logout destroys the session's credential.
func (s *authFlowService) Logout(ctx context.Context, sessionID string) error {
	if err := s.credentialStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// splitScopes splits a space- or comma-separated scope string into a slice.
func splitScopes(scope string) []string {
	fields := strings.FieldsFunc(scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
