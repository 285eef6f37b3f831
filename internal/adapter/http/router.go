package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkor/tripsettle/internal/adapter/http/handler"
	"github.com/mkor/tripsettle/internal/adapter/http/middleware"
	"github.com/mkor/tripsettle/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TripHandler       *handler.TripHandler
	ExpenseHandler    *handler.ExpenseHandler
	SettlementHandler *handler.SettlementHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	RateLimiter       *middleware.RateLimiter
	RequestLogger     *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RequestLogger != nil {
		r.Use(cfg.RequestLogger.Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Liveness)
		r.Get("/ready", cfg.HealthHandler.Readiness)
	}
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", cfg.TripHandler.Create)
			r.Get("/", cfg.TripHandler.List)
			r.Get("/{id}", cfg.TripHandler.Get)

			// Expenses
			r.Post("/{id}/expenses", cfg.ExpenseHandler.Create)
			r.Get("/{id}/expenses", cfg.ExpenseHandler.ListByTrip)
			r.Get("/{id}/expenses/{expenseID}", cfg.ExpenseHandler.Get)
			r.Put("/{id}/expenses/{expenseID}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}/expenses/{expenseID}", cfg.ExpenseHandler.Delete)

			// Settlement
			r.Get("/{id}/settlement", cfg.SettlementHandler.Latest)
			r.Post("/{id}/settlement/recompute", cfg.SettlementHandler.Recompute)
			r.Get("/{id}/settlement/pairwise", cfg.SettlementHandler.Pairwise)
			r.Get("/{id}/settlement/history", cfg.SettlementHandler.History)
		})
	})

	return r
}
