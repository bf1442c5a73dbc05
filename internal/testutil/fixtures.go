package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// FastHasher hashes with bcrypt.MinCost to keep tests quick.
type FastHasher struct{}

func NewFastHasher() FastHasher {
	return FastHasher{}
}

func (FastHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hashed), err
}

func (FastHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AccountBuilder creates test accounts with a builder pattern
type AccountBuilder struct {
	username string
	password string
	owner    bool
	gems     *domain.Amount
}

// NewAccountBuilder creates a new AccountBuilder with default values
func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{
		username: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

func (b *AccountBuilder) WithUsername(name string) *AccountBuilder {
	b.username = name
	return b
}

func (b *AccountBuilder) WithPassword(password string) *AccountBuilder {
	b.password = password
	return b
}

// AsOwner makes the built account the bootstrap owner.
func (b *AccountBuilder) AsOwner() *AccountBuilder {
	b.owner = true
	return b
}

func (b *AccountBuilder) WithGems(gems int64) *AccountBuilder {
	amount := domain.NewAmount(gems)
	b.gems = &amount
	return b
}

// Build inserts the account and returns it with the raw password
func (b *AccountBuilder) Build(t *testing.T, accounts repository.AccountRepository) (*domain.Account, string) {
	t.Helper()

	hashed, err := NewFastHasher().Hash(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	account := domain.NewAccount(b.username, hashed, nil, b.owner, time.Now().UTC())
	if b.gems != nil {
		account.Gems = *b.gems
	}

	if err := accounts.Insert(context.Background(), account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account, b.password
}

// RegisterResponse matches the API registration response
type RegisterResponse struct {
	Success bool `json:"success"`
	User    struct {
		ID           string  `json:"user_id"`
		Username     string  `json:"username"`
		Email        *string `json:"email"`
		Role         string  `json:"role"`
		Gems         string  `json:"gems"`
		Crystals     string  `json:"crystals"`
		XP           string  `json:"xp"`
		Level        int     `json:"level"`
		ReferredByID *string `json:"referred_by_id"`
	} `json:"user"`
}

// ErrorResponse matches the API error envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
