package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/gemrealm/internal/api/handlers"
	"github.com/dom/gemrealm/internal/api/middleware"
	"github.com/dom/gemrealm/internal/config"
	"github.com/dom/gemrealm/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(services *service.Services, cfg *config.Config, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	authHandler := handlers.NewAuthHandler(services.Registration, cfg.Cookie(), logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
		})
	})

	return r
}
