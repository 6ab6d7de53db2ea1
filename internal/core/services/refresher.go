package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Ensure Refresher implements TokenRefresher
var _ driven.TokenRefresher = (*Refresher)(nil)

// Refresher replaces expired access tokens using the stored refresh token.
//
// Concurrent refreshes for the same session are coalesced: the first caller
// performs the provider call, later callers wait for and share its result.
// Racing refreshes would otherwise invalidate each other at providers that
// rotate refresh tokens.
type Refresher struct {
	provider driven.Provider
	store    driven.CredentialStore
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]*refreshCall
}

// refreshCall is one in-flight refresh shared by all waiters.
type refreshCall struct {
	done chan struct{}
	cred *domain.SessionCredential
	err  error
}

// NewRefresher creates a token refresher.
func NewRefresher(provider driven.Provider, store driven.CredentialStore, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		provider: provider,
		store:    store,
		logger:   logger,
		inflight: make(map[string]*refreshCall),
	}
}

// Refresh refreshes the session's access token and returns the updated
// credential. On provider rejection the stored credential is left untouched
// and the error is fatal for the session - callers must force
// re-authentication rather than retry.
func (r *Refresher) Refresh(ctx context.Context, sessionID string) (*domain.SessionCredential, error) {
	r.mu.Lock()
	if call, ok := r.inflight[sessionID]; ok {
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.cred, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	r.inflight[sessionID] = call
	r.mu.Unlock()

	call.cred, call.err = r.doRefresh(ctx, sessionID)
	close(call.done)

	r.mu.Lock()
	delete(r.inflight, sessionID)
	r.mu.Unlock()

	return call.cred, call.err
}

func (r *Refresher) doRefresh(ctx context.Context, sessionID string) (*domain.SessionCredential, error) {
	cred, err := r.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrMissingRefreshToken
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred.RefreshToken == "" {
		return nil, domain.ErrMissingRefreshToken
	}

	refreshedAt := time.Now()
	grant, err := r.provider.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		r.logger.Warn("token refresh failed",
			"session_id", sessionID,
			"error", err,
		)
		return nil, err
	}

	updated := &domain.SessionCredential{
		AccessToken:  grant.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    refreshedAt.Add(time.Duration(grant.ExpiresIn) * time.Second),
		Scopes:       cred.Scopes,
	}
	// Providers may rotate the refresh token; keep the old one otherwise.
	if grant.RefreshToken != "" {
		updated.RefreshToken = grant.RefreshToken
	}
	if grant.Scope != "" {
		updated.Scopes = splitScopes(grant.Scope)
	}

	if err := r.store.Save(ctx, sessionID, updated); err != nil {
		return nil, fmt.Errorf("save refreshed credential: %w", err)
	}

	return updated, nil
}
