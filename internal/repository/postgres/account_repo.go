package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Insert(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err == nil {
		return nil
	}
	switch uniqueViolation(err) {
	case usernameConstraint:
		return domain.ErrUsernameTaken
	case ownerConstraint:
		return domain.ErrOwnerSlotTaken
	}
	return oops.Code("ACCOUNT_INSERT_FAILED").
		With("username", account.Username).
		Wrap(err)
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "ACCOUNT_GET_BY_ID_FAILED", "id", id.String())
	}
	return &account, nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "username = ?", username).Error
	if err != nil {
		return nil, notFoundOr(err, "ACCOUNT_FIND_BY_USERNAME_FAILED", "username", username)
	}
	return &account, nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).Count(&n).Error; err != nil {
		return 0, oops.Code("ACCOUNT_COUNT_FAILED").Wrap(err)
	}
	return n, nil
}

func (r *accountRepository) ApplyReferral(ctx context.Context, accountID, referrerID uuid.UUID, bonus int64) (*domain.Account, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Only an unlinked account can be linked, so a replay is a no-op.
		linked := tx.Model(&domain.Account{}).
			Where("id = ? AND referred_by_id IS NULL AND id <> ?", accountID, referrerID).
			Updates(map[string]any{"referred_by_id": referrerID, "updated_at": now})
		if linked.Error != nil {
			return linked.Error
		}
		if linked.RowsAffected == 0 {
			return nil
		}

		credited := tx.Model(&domain.Account{}).
			Where("id = ?", referrerID).
			Updates(map[string]any{"gems": gorm.Expr("gems + ?", bonus), "updated_at": now})
		if credited.Error != nil {
			return credited.Error
		}
		if credited.RowsAffected == 0 {
			return domain.ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("ACCOUNT_APPLY_REFERRAL_FAILED").
			With("account_id", accountID.String()).
			With("referrer_id", referrerID.String()).
			Wrap(err)
	}
	return r.GetByID(ctx, accountID)
}

func notFoundOr(err error, code, key, value string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAccountNotFound
	}
	return oops.Code(code).With(key, value).Wrap(err)
}
