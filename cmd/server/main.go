package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifedash/portfolio-engine/internal/api"
	"github.com/lifedash/portfolio-engine/internal/config"
	"github.com/lifedash/portfolio-engine/internal/database"
	"github.com/lifedash/portfolio-engine/internal/finnhub"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
	"github.com/lifedash/portfolio-engine/internal/repository"
	"github.com/lifedash/portfolio-engine/internal/scheduler"
	"github.com/lifedash/portfolio-engine/internal/secret"
	"github.com/lifedash/portfolio-engine/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Market data client and quote cache
	client := finnhub.NewClient(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Market.FetchTimeout)
	limiter := quotecache.NewLimiter(cfg.Market.CallsPerMinute)
	cache := quotecache.New(client, quoteRepo, limiter, cfg.Cache.TTL, cfg.Market.FetchTimeout)

	var codec *secret.Codec
	if cfg.Market.FernetKey != "" {
		codec, err = secret.NewCodec(cfg.Market.FernetKey)
		if err != nil {
			log.Fatalf("Failed to initialize token codec: %v", err)
		}
	}

	// Create services
	systemService := service.NewSystemService(db)
	developerService := service.NewDeveloperService(settingRepo, codec, client)
	holdingService := service.NewHoldingService(
		transactionRepo,
		holdingRepo,
	)
	tradeService := service.NewTradeService(
		db,
		transactionRepo,
		holdingRepo,
		accountRepo,
		ledgerRepo,
		holdingService,
		cache,
		cfg.Market.AllowNegativeCash,
	)
	accountService := service.NewAccountService(
		accountRepo,
		ledgerRepo,
		historyRepo,
	)
	snapshotService := service.NewSnapshotService(
		accountRepo,
		holdingRepo,
		historyRepo,
		cfg.Snapshot.BaselinePolicy,
	)
	portfolioService := service.NewPortfolioService(
		transactionRepo,
		holdingRepo,
		accountRepo,
		snapshotService,
		cache,
	)

	if err := accountService.EnsureSystemAccounts(); err != nil {
		log.Fatalf("Failed to ensure system accounts: %v", err)
	}

	// A token stored through the developer endpoint overrides the environment key
	if loaded, err := developerService.LoadMarketToken(); err != nil {
		log.Printf("Warning: could not load stored market token: %v", err)
	} else if loaded {
		log.Println("Loaded market API token from settings")
	}

	// Background jobs: rate window reset, cache cleanup, daily snapshots
	sched, err := scheduler.New(cfg, cache, limiter, snapshotService)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Create router
	router := api.NewRouter(systemService, portfolioService, holdingService, tradeService, accountService, developerService, cache, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
