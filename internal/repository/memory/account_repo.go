package memory

import (
	"context"
	"time"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/google/uuid"
)

type AccountRepository struct {
	store *Store
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) Insert(ctx context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernameIndex[account.Username]; ok {
		return domain.ErrUsernameTaken
	}
	if account.IsOwner() && s.ownerID != nil {
		return domain.ErrOwnerSlotTaken
	}

	stored := copyAccount(account)
	s.accounts[stored.ID] = stored
	s.usernameIndex[stored.Username] = stored.ID
	if stored.IsOwner() {
		id := stored.ID
		s.ownerID = &id
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(a), nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(s.accounts[id]), nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.accounts)), nil
}

func (r *AccountRepository) ApplyReferral(ctx context.Context, accountID, referrerID uuid.UUID, bonus int64) (*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	referrer, ok := s.accounts[referrerID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if account.ReferredByID != nil || accountID == referrerID {
		return copyAccount(account), nil
	}

	now := time.Now()
	id := referrerID
	account.ReferredByID = &id
	account.UpdatedAt = now
	referrer.Gems = referrer.Gems.Add(bonus)
	referrer.UpdatedAt = now
	return copyAccount(account), nil
}
