package mocks

import (
	"strings"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
)

// MockSessionSigner signs tokens with a trivially reversible format so tests
// can inspect them without real cryptography.
type MockSessionSigner struct{}

func (m *MockSessionSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	return "signed:" + sessionID, nil
}

func (m *MockSessionSigner) Verify(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "signed:")
	if !ok || id == "" {
		return "", domain.ErrSessionInvalid
	}
	return id, nil
}
