package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements driven.CredentialStore using PostgreSQL.
// Save is a single-row upsert, so all credential fields replace the previous
// ones in one statement.
type CredentialStore struct {
	db *DB
}

// NewCredentialStore creates a PostgreSQL-backed CredentialStore.
func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Save stores or replaces the session's credential.
func (s *CredentialStore) Save(ctx context.Context, sessionID string, cred *domain.SessionCredential) error {
	query := `
		INSERT INTO session_credentials (session_id, access_token, refresh_token, expires_at, scopes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			scopes = EXCLUDED.scopes,
			updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		sessionID,
		cred.AccessToken,
		cred.RefreshToken,
		cred.ExpiresAt,
		pq.Array(cred.Scopes),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Get retrieves the session's credential.
func (s *CredentialStore) Get(ctx context.Context, sessionID string) (*domain.SessionCredential, error) {
	query := `
		SELECT access_token, refresh_token, expires_at, scopes
		FROM session_credentials
		WHERE session_id = $1
	`

	var cred domain.SessionCredential
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.ExpiresAt,
		pq.Array(&cred.Scopes),
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &cred, nil
}

// Delete removes the session's credential.
func (s *CredentialStore) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE FROM session_credentials WHERE session_id = $1`

	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
