package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	StateHandler *StateHandler
}

// NewRouter creates the operational HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", cfg.StateHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", cfg.StateHandler.ExportSnapshot)
		r.Post("/snapshot", cfg.StateHandler.ImportSnapshot)
		r.Get("/storage/usage", cfg.StateHandler.StorageUsage)
		r.Get("/transactions", cfg.StateHandler.ListTransactions)
		r.Post("/reset", cfg.StateHandler.Reset)
	})

	return r
}
