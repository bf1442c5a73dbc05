package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RolePlayer Role = "PLAYER"
)

// Starting economy values.
const (
	OwnerStartingGems   = 1_000_000
	OwnerStartingLevel  = 100
	PlayerStartingGems  = 1_000
	PlayerStartingLevel = 1
	ReferralBonusGems   = 100
)

// Account is a registered user with credentials and economy balances.
// The unique indexes on username and on the owner role are the
// authoritative guards against duplicate registrations and a second owner.
type Account struct {
	ID           uuid.UUID  `json:"user_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string     `json:"username" gorm:"uniqueIndex:idx_accounts_username;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Email        *string    `json:"email"`
	Role         Role       `json:"role" gorm:"type:varchar(16);not null"`
	Gems         Amount     `json:"gems" gorm:"type:numeric(40,0);not null;default:0"`
	Crystals     Amount     `json:"crystals" gorm:"type:numeric(40,0);not null;default:0"`
	XP           Amount     `json:"xp" gorm:"type:numeric(40,0);not null;default:0"`
	Level        int        `json:"level" gorm:"not null;default:1"`
	ReferredByID *uuid.UUID `json:"referred_by_id" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewAccount builds an unsaved account with the starting role and balances.
// The first account ever created is the owner.
func NewAccount(username, passwordHash string, email *string, isFirst bool, now time.Time) *Account {
	a := &Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Crystals:     NewAmount(0),
		XP:           NewAmount(0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if isFirst {
		a.promote()
	} else {
		a.Demote()
	}
	return a
}

func (a *Account) promote() {
	a.Role = RoleOwner
	a.Gems = NewAmount(OwnerStartingGems)
	a.Level = OwnerStartingLevel
}

// Demote resets an account to standard player starting values. Used when
// another registration won the owner slot first.
func (a *Account) Demote() {
	a.Role = RolePlayer
	a.Gems = NewAmount(PlayerStartingGems)
	a.Level = PlayerStartingLevel
}

func (a *Account) IsOwner() bool {
	return a.Role == RoleOwner
}
