package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionTTL is the fixed lifetime of a session issued at registration.
const SessionTTL = 24 * time.Hour

// Session binds an opaque token to an account until ExpiresAt. Only the
// SHA-256 hash of the token is persisted.
type Session struct {
	TokenHash string    `json:"-" gorm:"primaryKey;type:char(64)"`
	AccountID uuid.UUID `json:"account_id" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpiredAt reports whether the session is no longer valid at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
