package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Ensure AuthStateStore implements the interface.
var _ driven.AuthStateStore = (*AuthStateStore)(nil)

// DefaultStateTTL is the default time-to-live for pending auth states.
const DefaultStateTTL = 10 * time.Minute

// AuthStateStore implements driven.AuthStateStore using PostgreSQL.
type AuthStateStore struct {
	db  *DB
	ttl time.Duration
}

// NewAuthStateStore creates a PostgreSQL-backed auth state store.
func NewAuthStateStore(db *DB) *AuthStateStore {
	return &AuthStateStore{db: db, ttl: DefaultStateTTL}
}

// Save stores a new auth state.
func (s *AuthStateStore) Save(ctx context.Context, state *driven.AuthState) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = now.Add(s.ttl)
	}

	query := `
		INSERT INTO auth_states (state, redirect_uri, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		state.State,
		state.RedirectURI,
		state.CreatedAt,
		state.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	return nil
}

// GetAndDelete atomically retrieves and deletes the state.
// Uses DELETE ... RETURNING for atomic single-use semantics.
func (s *AuthStateStore) GetAndDelete(ctx context.Context, state string) (*driven.AuthState, error) {
	query := `
		DELETE FROM auth_states
		WHERE state = $1 AND expires_at > NOW()
		RETURNING state, redirect_uri, created_at, expires_at
	`

	var authState driven.AuthState
	err := s.db.QueryRowContext(ctx, query, state).Scan(
		&authState.State,
		&authState.RedirectURI,
		&authState.CreatedAt,
		&authState.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // State not found or expired
	}
	if err != nil {
		return nil, fmt.Errorf("get and delete auth state: %w", err)
	}
	return &authState, nil
}

// Cleanup removes expired states.
func (s *AuthStateStore) Cleanup(ctx context.Context) error {
	query := `DELETE FROM auth_states WHERE expires_at < NOW()`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cleanup auth states: %w", err)
	}
	return nil
}
