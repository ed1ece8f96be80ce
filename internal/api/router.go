package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lifedash/portfolio-engine/internal/api/handlers"
	custommiddleware "github.com/lifedash/portfolio-engine/internal/api/middleware"
	"github.com/lifedash/portfolio-engine/internal/config"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
	"github.com/lifedash/portfolio-engine/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, portfolioService *service.PortfolioService, holdingService *service.HoldingService, tradeService *service.TradeService, accountService *service.AccountService, developerService *service.DeveloperService, cache *quotecache.Cache, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService, cache)
			r.Get("/health", systemHandler.Health)
			r.Get("/cache-stats", systemHandler.CacheStats)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			r.Get("/summary", portfolioHandler.Summary)
			r.Post("/refresh", portfolioHandler.Refresh)
			r.Get("/indices", portfolioHandler.Indices)
		})

		r.Route("/holding", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(holdingService, tradeService)
			r.Get("/", holdingHandler.ListHoldings)
			r.Post("/", holdingHandler.CreateHolding)
			r.Delete("/{symbol}", holdingHandler.DeleteHolding)
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(tradeService)
			r.Get("/", transactionHandler.ListTransactions)
			r.Post("/", transactionHandler.CreateTransaction)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(accountService)
			r.Get("/", accountHandler.ListAccounts)
			r.Post("/", accountHandler.CreateAccount)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.GetAccount)
				r.Put("/", accountHandler.UpdateAccount)
				r.Put("/balance", accountHandler.UpdateBalance)
				r.Delete("/", accountHandler.DeleteAccount)
				r.Get("/ledger", accountHandler.Ledger)
				r.Get("/history", accountHandler.History)
			})
		})

		r.Route("/quote", func(r chi.Router) {
			quoteHandler := handlers.NewQuoteHandler(cache)
			r.Get("/{symbol}", quoteHandler.GetQuote)
		})

		r.Route("/developer", func(r chi.Router) {
			developerHandler := handlers.NewDeveloperHandler(developerService)
			r.Get("/settings", developerHandler.GetSettings)
			r.Put("/market-token", developerHandler.SetMarketToken)
		})
	})

	return r
}
