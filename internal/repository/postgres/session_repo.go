package postgres

import (
	"context"
	"errors"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("account_id", session.AccountID.String()).
			Wrap(err)
	}
	return nil
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).First(&session, "token_hash = ?", tokenHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}
	return &session, nil
}
