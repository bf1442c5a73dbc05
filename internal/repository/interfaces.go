package repository

import (
	"context"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/google/uuid"
)

// AccountRepository persists accounts. Implementations must enforce username
// uniqueness and the single owner slot at the storage layer and report
// violations as domain.ErrUsernameTaken and domain.ErrOwnerSlotTaken.
type AccountRepository interface {
	Insert(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// FindByUsername returns domain.ErrAccountNotFound when no account matches.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	Count(ctx context.Context) (int64, error)
	// ApplyReferral links accountID to referrerID and credits the referrer
	// with bonus gems as one unit. A second call for an already linked account
	// changes nothing.
	ApplyReferral(ctx context.Context, accountID, referrerID uuid.UUID, bonus int64) (*domain.Account, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
}

type Repositories struct {
	Account AccountRepository
	Session SessionRepository
}
