// Package memory provides in-process repositories with the same constraint
// semantics as the Postgres implementation. Used by tests and local runs.
package memory

import (
	"sync"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/google/uuid"
)

// Store holds accounts and sessions behind a single mutex.
type Store struct {
	mu sync.RWMutex

	accounts      map[uuid.UUID]*domain.Account
	usernameIndex map[string]uuid.UUID
	ownerID       *uuid.UUID
	sessions      map[string]*domain.Session
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[uuid.UUID]*domain.Account),
		usernameIndex: make(map[string]uuid.UUID),
		sessions:      make(map[string]*domain.Session),
	}
}

// NewRepositories returns repositories backed by a fresh Store.
func NewRepositories() *repository.Repositories {
	s := NewStore()
	return &repository.Repositories{
		Account: s.Accounts(),
		Session: s.Sessions(),
	}
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{store: s}
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}
