package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dom/gemrealm/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type SessionRepositorySuite struct {
	suite.Suite
	mini *miniredis.Miniredis
	repo *SessionRepository
	ctx  context.Context
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}

func (s *SessionRepositorySuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.repo = NewSessionRepositoryWithClient(client)
	s.ctx = context.Background()
}

func (s *SessionRepositorySuite) TearDownTest() {
	_ = s.repo.Close()
	s.mini.Close()
}

func newSession(created time.Time) *domain.Session {
	return &domain.Session{
		TokenHash: "ab12",
		AccountID: uuid.New(),
		CreatedAt: created,
		ExpiresAt: created.Add(domain.SessionTTL),
	}
}

func (s *SessionRepositorySuite) TestCreateAndGet() {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	session := newSession(created)

	s.Require().NoError(s.repo.Create(s.ctx, session))

	got, err := s.repo.GetByTokenHash(s.ctx, session.TokenHash)
	s.Require().NoError(err)
	s.Equal(session.AccountID, got.AccountID)
	s.True(session.ExpiresAt.Equal(got.ExpiresAt))
	s.True(session.CreatedAt.Equal(got.CreatedAt))
	s.Equal(session.TokenHash, got.TokenHash)
}

func (s *SessionRepositorySuite) TestCreateSetsTTL() {
	session := newSession(time.Now())
	s.Require().NoError(s.repo.Create(s.ctx, session))

	s.Equal(domain.SessionTTL, s.mini.TTL(sessionKey(session.TokenHash)))

	s.mini.FastForward(domain.SessionTTL + time.Second)
	_, err := s.repo.GetByTokenHash(s.ctx, session.TokenHash)
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *SessionRepositorySuite) TestCreateRejectsDuplicateToken() {
	session := newSession(time.Now())
	s.Require().NoError(s.repo.Create(s.ctx, session))

	other := newSession(time.Now())
	s.Error(s.repo.Create(s.ctx, other))

	got, err := s.repo.GetByTokenHash(s.ctx, session.TokenHash)
	s.Require().NoError(err)
	s.Equal(session.AccountID, got.AccountID)
}

func (s *SessionRepositorySuite) TestGetMissing() {
	_, err := s.repo.GetByTokenHash(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *SessionRepositorySuite) TestCreateRejectsNonPositiveTTL() {
	created := time.Now()
	session := newSession(created)
	session.ExpiresAt = created

	s.Error(s.repo.Create(s.ctx, session))
}
