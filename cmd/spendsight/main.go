package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prasetya/spendsight/internal/config"
	"github.com/prasetya/spendsight/internal/currency"
	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/handler"
	"github.com/prasetya/spendsight/internal/infra/cache"
	"github.com/prasetya/spendsight/internal/infra/observability"
	"github.com/prasetya/spendsight/internal/infra/resilience"
	"github.com/prasetya/spendsight/internal/infra/sqlite"
	"github.com/prasetya/spendsight/internal/infra/supabase"
	"github.com/prasetya/spendsight/internal/port"
	"github.com/prasetya/spendsight/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ledgerStore is the combined surface both backends implement.
type ledgerStore interface {
	port.LedgerQuery
	port.LedgerWriter
	port.BudgetStore
}

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Bool("auth_enabled", cfg.AuthEnabled),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "spendsight", cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Ledger backend ---
	var store ledgerStore
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as ledger backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		cb := resilience.NewCircuitBreaker("supabase")
		store = supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
	} else {
		logger.Info("using SQLite as ledger backend",
			zap.String("path", cfg.SQLitePath),
		)
		sqliteStore, err := sqlite.NewStore(cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite store", zap.Error(err))
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	// --- Services ---
	normalizer := currency.NewNormalizer(logger, func(_, reason string) {
		metrics.IncrAmountRejected(reason)
	})

	analyticsSvc := service.NewAnalyticsService(
		store,
		store,
		cache.New[[]domain.LineItem](cfg.CacheTTL),
		metrics,
		bulkhead,
		logger,
	)
	ingestSvc := service.NewIngestService(store, normalizer, metrics, logger)
	tokenSvc := service.NewTokenService([]byte(cfg.JWTSecret), cfg.APIKeyHash, cfg.JWTAccessTTL, logger)

	if cfg.AuthEnabled && cfg.APIKeyHash == "" {
		logger.Warn("auth enabled but API_KEY_HASH is empty, token issuance will always fail")
	}

	// --- Router ---
	router := handler.NewRouter(analyticsSvc, ingestSvc, tokenSvc, store, metrics, cfg.AuthEnabled, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
