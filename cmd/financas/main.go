package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gastrohub/financas-go/internal/config"
	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/handler"
	"github.com/gastrohub/financas-go/internal/infra/cache"
	"github.com/gastrohub/financas-go/internal/infra/observability"
	"github.com/gastrohub/financas-go/internal/infra/resilience"
	"github.com/gastrohub/financas-go/internal/infra/supabase"
	"github.com/gastrohub/financas-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("summary_cache_ttl", cfg.SummaryCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("conflict_retries", cfg.ConflictRetries),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "gastrohub-financas")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	summaryCache := cache.New[*domain.FinancialSummary](cfg.SummaryCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		metrics,
		logger,
	)

	// --- Services ---
	ledgerSvc := service.NewLedgerService(store, summaryCache, metrics, logger, cfg.ConflictRetries)
	verifier := service.NewTokenVerifier(cfg.JWTSecret, logger)

	// --- Router ---
	reportDefaults := handler.ReportDefaults{
		EvolutionMonths: cfg.EvolutionMonths,
		ForecastDays:    cfg.ForecastDays,
	}
	router := handler.NewRouter(ledgerSvc, verifier, metrics, reportDefaults, logger)

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
