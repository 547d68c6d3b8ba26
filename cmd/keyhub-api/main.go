package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/keyhub/internal/api"
	"github.com/edvin/keyhub/internal/config"
	"github.com/edvin/keyhub/internal/core"
	"github.com/edvin/keyhub/internal/db"
	"github.com/edvin/keyhub/internal/llm"
	"github.com/edvin/keyhub/internal/logging"
	"github.com/edvin/keyhub/internal/metrics"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.StoreConfigured() {
		if *migrateFlag {
			logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
			if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
				logger.Fatal().Err(err).Msg("migration failed")
			}
		}

		pool, err = db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		metrics.RegisterPgxPoolMetrics(pool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set; key endpoints will answer 503")
	}

	if !cfg.AuthConfigured() {
		logger.Warn().Msg("OAuth not configured; dashboard login is disabled")
	}

	var llmClient *llm.Client
	if cfg.SummarizerConfigured() {
		llmClient = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	} else {
		logger.Warn().Msg("LLM_API_KEY not set; summarization is disabled")
	}

	plans, err := config.LoadPlans(cfg.PlansFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load plans")
	}

	var coreDB core.DB
	if pool != nil {
		coreDB = pool
	}
	services := core.NewServices(coreDB, cfg, llmClient)
	srv := api.NewServer(logger, pool, services, cfg, plans)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting keyhub API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr)
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-gctx.Done():
			return gctx.Err()
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		if metricsServer != nil {
			metricsServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
