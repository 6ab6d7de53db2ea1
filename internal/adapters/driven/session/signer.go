// Package session mints and verifies the signed tokens the browser carries
// in its session cookie.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harmonia-labs/harmonia-auth/internal/core/domain"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// Ensure Signer implements SessionSigner
var _ driven.SessionSigner = (*Signer)(nil)

// sessionClaims carries the session ID through the signed token.
// Provider tokens never appear here - the cookie only references the
// server-side credential.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signer signs session tokens with HMAC-SHA256.
type Signer struct {
	secret []byte
}

// NewSigner creates a session signer with the given secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign creates a signed session token expiring at the given instant.
func (s *Signer) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a session token and returns the session ID.
func (s *Signer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", errors.Join(domain.ErrSessionInvalid, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", domain.ErrSessionInvalid
	}
	return claims.SessionID, nil
}
