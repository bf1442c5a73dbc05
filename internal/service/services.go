package service

import (
	"log/slog"

	"github.com/dom/gemrealm/internal/clock"
	"github.com/dom/gemrealm/internal/config"
	"github.com/dom/gemrealm/internal/metrics"
	"github.com/dom/gemrealm/internal/repository"
)

type Services struct {
	Registration *RegistrationService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Services {
	return &Services{
		Registration: NewRegistrationService(repos.Account, repos.Session, RegistrationOptions{
			Hasher:        NewBcryptHasher(cfg.BcryptCost),
			Clock:         clock.New(),
			Logger:        logger,
			Metrics:       m,
			LookupRetries: cfg.LookupRetries,
		}),
	}
}
