package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dom/gemrealm/internal/api"
	"github.com/dom/gemrealm/internal/config"
	"github.com/dom/gemrealm/internal/logging"
	"github.com/dom/gemrealm/internal/metrics"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/dom/gemrealm/internal/repository/postgres"
	"github.com/dom/gemrealm/internal/repository/redis"
	"github.com/dom/gemrealm/internal/service"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup("gemrealm", cfg.LogFormat, cfg.LogLevel, nil)
	slog.SetDefault(logger)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logging.Error(logger, "failed to connect to database", err)
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		logging.Error(logger, "failed to run migrations", err)
		return err
	}

	repos := postgres.NewRepositories(db)
	closeSessions, err := selectSessionStore(cfg, repos)
	if err != nil {
		logging.Error(logger, "failed to open session store", err)
		return err
	}
	defer closeSessions()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	services := service.NewServices(repos, cfg, logger, m)
	router := api.NewRouter(services, cfg, logger, registry)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("session_store", cfg.SessionStore),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}

	logger.Info("server stopped")
	return nil
}

// selectSessionStore swaps in the Redis session store when configured and
// returns a func releasing it.
func selectSessionStore(cfg *config.Config, repos *repository.Repositories) (func(), error) {
	if cfg.SessionStore != config.SessionStoreRedis {
		return func() {}, nil
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	sessions, err := redis.NewSessionRepository(redisCfg)
	if err != nil {
		return nil, err
	}
	repos.Session = sessions
	return func() { _ = sessions.Close() }, nil
}
