package memory

import (
	"context"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository"
)

type SessionRepository struct {
	store *Store
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *session
	s.sessions[session.TokenHash] = &c
	return nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}
