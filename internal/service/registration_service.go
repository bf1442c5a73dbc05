package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/gemrealm/internal/clock"
	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/logging"
	"github.com/dom/gemrealm/internal/metrics"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const lookupBackoff = 50 * time.Millisecond

type RegistrationService struct {
	accounts      repository.AccountRepository
	sessions      repository.SessionRepository
	hasher        PasswordHasher
	clock         clock.Clock
	logger        *slog.Logger
	metrics       *metrics.Metrics
	lookupRetries uint64
}

type RegistrationOptions struct {
	Hasher  PasswordHasher
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// LookupRetries is how many times a failed username lookup is retried.
	LookupRetries uint64
}

func NewRegistrationService(accounts repository.AccountRepository, sessions repository.SessionRepository, opts RegistrationOptions) *RegistrationService {
	if opts.Hasher == nil {
		opts.Hasher = NewBcryptHasher(MinBcryptCost)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RegistrationService{
		accounts:      accounts,
		sessions:      sessions,
		hasher:        opts.Hasher,
		clock:         opts.Clock,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		lookupRetries: opts.LookupRetries,
	}
}

type RegisterInput struct {
	Username     string
	Password     string
	Email        string
	ReferralCode string
}

type RegisterResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// Register validates the input, creates the account, settles an optional
// referral and issues a session. Once the account is persisted it is never
// rolled back: a later failure leaves an account that can log in but not
// register again.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	result, err := s.register(ctx, input)
	s.metrics.ObserveRegistration(resultLabel(err))
	return result, err
}

func (s *RegistrationService) register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if err := ValidateRegistration(input); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameAvailable(ctx, input.Username); err != nil {
		return nil, err
	}

	account, err := s.createAccount(ctx, input)
	if err != nil {
		return nil, err
	}

	account = s.settleReferral(ctx, account, input.ReferralCode)

	session, token, err := s.issueSession(ctx, account.ID)
	if err != nil {
		return nil, storageError("create session", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID.String()),
		slog.String("role", string(account.Role)),
	)

	return &RegisterResult{
		Account:   account,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// ensureUsernameAvailable gives a friendly early error for duplicates. The
// unique index is what actually prevents them.
func (s *RegistrationService) ensureUsernameAvailable(ctx context.Context, username string) error {
	_, err := s.findByUsername(ctx, username)
	switch {
	case err == nil:
		return domain.ErrUsernameTaken
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	default:
		return storageError("find by username", err)
	}
}

// findByUsername retries transient failures; it is read-only.
func (s *RegistrationService) findByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var account *domain.Account
	backoff := retry.WithMaxRetries(s.lookupRetries, retry.NewExponential(lookupBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		found, err := s.accounts.FindByUsername(ctx, username)
		switch {
		case err == nil:
			account = found
			return nil
		case errors.Is(err, domain.ErrAccountNotFound):
			return err
		default:
			return retry.RetryableError(err)
		}
	})
	return account, err
}

func (s *RegistrationService) createAccount(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, storageError("count accounts", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, oops.Code("REGISTER_HASH_FAILED").Wrap(err)
	}

	account := domain.NewAccount(input.Username, hash, normalizeEmail(input.Email), count == 0, s.clock.Now())

	err = s.accounts.Insert(ctx, account)
	if errors.Is(err, domain.ErrOwnerSlotTaken) {
		// A concurrent registration became the owner first.
		account.Demote()
		err = s.accounts.Insert(ctx, account)
	}
	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, domain.ErrUsernameTaken):
		return nil, domain.ErrUsernameTaken
	default:
		return nil, storageError("insert account", err)
	}
}

// settleReferral links the account to the referrer named by code and credits
// the bonus. Any failure is logged and the account is returned unchanged.
func (s *RegistrationService) settleReferral(ctx context.Context, account *domain.Account, code string) *domain.Account {
	if code == "" {
		return account
	}

	referrer, err := s.findByUsername(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			s.metrics.ObserveReferral(false)
			logging.Warn(s.logger, "referral lookup failed", err)
		}
		return account
	}
	if referrer.ID == account.ID {
		return account
	}

	updated, err := s.accounts.ApplyReferral(ctx, account.ID, referrer.ID, domain.ReferralBonusGems)
	if err != nil {
		s.metrics.ObserveReferral(false)
		logging.Warn(s.logger, "referral not applied", err)
		return account
	}
	s.metrics.ObserveReferral(true)
	return updated
}

func normalizeEmail(email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return &email
}

// storageError marks err as domain.ErrStorage while keeping the cause for logs.
func storageError(operation string, err error) error {
	return oops.Code("REGISTER_STORAGE_FAILED").
		With("operation", operation).
		Wrap(fmt.Errorf("%w: %w", domain.ErrStorage, err))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.ResultInvalidInput
	case errors.Is(err, domain.ErrWeakPassword):
		return metrics.ResultWeakPassword
	case errors.Is(err, domain.ErrUsernameTaken):
		return metrics.ResultUsernameTaken
	default:
		return metrics.ResultError
	}
}
