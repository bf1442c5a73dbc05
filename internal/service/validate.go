package service

import (
	"unicode/utf8"

	"github.com/dom/gemrealm/internal/domain"
)

const (
	// MinPasswordLength is counted in Unicode code points.
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// ValidateRegistration checks credential presence and password policy.
func ValidateRegistration(input RegisterInput) error {
	if input.Username == "" || input.Password == "" {
		return domain.ErrMissingCredentials
	}
	if utf8.RuneCountInString(input.Password) < MinPasswordLength {
		return domain.ErrWeakPassword
	}
	if len(input.Password) > MaxPasswordBytes {
		return domain.ErrPasswordTooLong
	}
	return nil
}
