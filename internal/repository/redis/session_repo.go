// Package redis stores sessions in Redis with a TTL matching their expiry,
// so expired sessions disappear without a cleanup job.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const keyPrefix = "gemrealm"

func sessionKey(tokenHash string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, tokenHash)
}

// SessionRepository is a Redis-backed repository.SessionRepository.
type SessionRepository struct {
	client *redis.Client
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository connects to Redis and verifies the connection.
func NewSessionRepository(cfg Config) (*SessionRepository, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Wrap(err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
	}
	return &SessionRepository{client: client}, nil
}

// NewSessionRepositoryWithClient wraps an existing client (for testing).
func NewSessionRepositoryWithClient(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Close() error {
	return r.client.Close()
}

type sessionRecord struct {
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(sessionRecord{
		AccountID: session.AccountID.String(),
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").With("operation", "marshal session").Wrap(err)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl <= 0 {
		return oops.Code("SESSION_CREATE_FAILED").Errorf("session expires before it is created")
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.TokenHash), data, ttl).Result()
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("account_id", session.AccountID.String()).
			Wrap(err)
	}
	if !ok {
		return oops.Code("SESSION_CREATE_FAILED").Errorf("session token collision")
	}
	return nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").With("operation", "unmarshal session").Wrap(err)
	}
	accountID, err := uuid.Parse(rec.AccountID)
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").With("operation", "parse account id").Wrap(err)
	}
	return &domain.Session{
		TokenHash: tokenHash,
		AccountID: accountID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}
