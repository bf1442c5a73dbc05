package service

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest cost accepted for stored credentials.
const MinBcryptCost = 12

// PasswordHasher hashes credentials for storage. Verify is used by login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, raised to MinBcryptCost if lower.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("PASSWORD_HASH_FAILED").With("cost", h.cost).Wrap(err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
