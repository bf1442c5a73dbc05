package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// SessionTokenBytes is the token entropy: 32 bytes = 256 bits, 64 hex chars.
const SessionTokenBytes = 32

// GenerateSessionToken returns a random token and the hash that is stored.
func GenerateSessionToken() (token, hash string, err error) {
	b := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	token = hex.EncodeToString(b)
	return token, HashSessionToken(token), nil
}

// HashSessionToken computes the SHA-256 hex digest under which a session is stored.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// issueSession persists a session for accountID expiring SessionTTL from now
// and returns it together with the plaintext token.
func (s *RegistrationService) issueSession(ctx context.Context, accountID uuid.UUID) (*domain.Session, string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", err
	}

	now := s.clock.Now()
	session := &domain.Session{
		TokenHash: tokenHash,
		AccountID: accountID,
		ExpiresAt: now.Add(domain.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}
	return session, token, nil
}
