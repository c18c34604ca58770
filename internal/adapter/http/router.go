package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marketcore/settlement/internal/adapter/http/handler"
	"github.com/marketcore/settlement/internal/adapter/http/middleware"
	"github.com/marketcore/settlement/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler         *handler.WalletHandler
	FinanceHandler        *handler.FinanceHandler
	TransactionHandler    *handler.TransactionHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	RateLimiter           *middleware.RateLimiter
	Logging               *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallets
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Patch("/{id}", cfg.WalletHandler.Update)
		})

		// Per-user reads
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/wallets", cfg.WalletHandler.ListByUser)
			r.Get("/balance", cfg.WalletHandler.GetBalance)
			r.Get("/records", cfg.FinanceHandler.ListRecords)
			r.Get("/records/stats", cfg.FinanceHandler.RecordStats)
			r.Get("/transactions/stats", cfg.TransactionHandler.Stats)
		})

		// Balance movements
		r.Route("/balance", func(r chi.Router) {
			r.Post("/add", cfg.FinanceHandler.AddBalance)
			r.Post("/deduct", cfg.FinanceHandler.DeductBalance)
		})
		r.Post("/transfers", cfg.FinanceHandler.Transfer)
		r.Post("/withdrawals", cfg.FinanceHandler.Withdraw)
		r.Post("/deposits", cfg.FinanceHandler.Deposit)

		// Journal
		r.Route("/records", func(r chi.Router) {
			r.Post("/", cfg.FinanceHandler.AppendRecord)
			r.Get("/{id}", cfg.FinanceHandler.GetRecord)
		})

		// Settlement transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Post("/{id}/confirm", cfg.TransactionHandler.Confirm)
			r.Post("/{id}/fail", cfg.TransactionHandler.Fail)
		})

		// Ledger consistency
		r.Get("/reconciliation", cfg.ReconciliationHandler.Check)
	})

	return r
}
