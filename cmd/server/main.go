// Package main is the entry point for the Tehillim Hub API server.
//
// The server tracks each reader's progress through the 150 chapters of
// Tehillim, derives streaks and statistics from it, unlocks achievements,
// and answers daily study-cycle queries.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: repository implementations, cache
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/analist0/tehillim-hub/config"
	"github.com/analist0/tehillim-hub/internal/application/command"
	"github.com/analist0/tehillim-hub/internal/application/query"
	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/cycle"
	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/infrastructure/persistence/memory"
	"github.com/analist0/tehillim-hub/internal/infrastructure/persistence/postgres"
	"github.com/analist0/tehillim-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/analist0/tehillim-hub/internal/interface/http"
	"github.com/analist0/tehillim-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting Tehillim Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE (PostgreSQL, or in-memory fallback for development)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		progressRepo reading.Repository
		unlockLedger achievement.Ledger
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		log.Info("database connection established")

		if cfg.Database.Migrate {
			log.Info("running database migrations...")
			if err := postgres.Migrate(ctx, dbConn); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("migrations completed")
		}

		progressRepo = postgres.NewProgressRepository(dbConn)
		unlockLedger = postgres.NewAchievementRepository(dbConn)
	} else {
		if !cfg.Database.AllowMemoryFallback {
			return fmt.Errorf("DATABASE_URL is required (or set DB_ALLOW_MEMORY_FALLBACK for development)")
		}
		log.Warn("no DATABASE_URL configured, using in-memory store; data will not survive restarts")
		progressRepo = memory.NewProgressStore()
		unlockLedger = memory.NewUnlockLedger()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional, daily reading cache)
	// ─────────────────────────────────────────────────────────────────────────
	var dailyCache query.DailyCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		var cache *redis.Cache
		var cacheErr error
		if cfg.Redis.URL != "" {
			cache, cacheErr = redis.NewCacheFromURL(cfg.Redis.URL)
		} else {
			redisCfg := redis.DefaultConfig()
			redisCfg.Host = cfg.Redis.Host
			redisCfg.Port = cfg.Redis.Port
			redisCfg.Password = cfg.Redis.Password
			redisCfg.DB = cfg.Redis.DB
			redisCfg.PoolSize = cfg.Redis.PoolSize
			redisCfg.DialTimeout = cfg.Redis.DialTimeout
			redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
			redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
			cache, cacheErr = redis.NewCache(redisCfg)
		}
		if cacheErr != nil {
			log.Warn("failed to connect to Redis, daily reading cache disabled", logger.Err(cacheErr))
		} else {
			defer cache.Close()
			dailyCache = cache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	engine := achievement.NewEngine(achievement.DefaultCatalog(), progressRepo, unlockLedger)
	calc := cycle.Default()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpserver.Dependencies{
		RecordProgressHandler:    command.NewRecordProgressHandler(progressRepo),
		MergeIdentityHandler:     command.NewMergeIdentityHandler(progressRepo),
		CheckAchievementsHandler: command.NewCheckAchievementsHandler(engine),
		GetProgressHandler:       query.NewGetProgressHandler(progressRepo),
		ListProgressHandler:      query.NewListProgressHandler(progressRepo),
		GetStatisticsHandler:     query.NewGetStatisticsHandler(progressRepo),
		ListAchievementsHandler:  query.NewListAchievementsHandler(engine),
		GetCyclePositionHandler:  query.NewGetCyclePositionHandler(calc),
		GetDailyReadingHandler:   query.NewGetDailyReadingHandler(calc, dailyCache),
		Logger:                   log.With(logger.Component("http")),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpserver.NewServer(serverCfg, deps)
	serverErr := server.StartAsync()
	log.Info("HTTP server started", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Err(err))
		return err
	}

	log.Info("shutdown complete")
	return nil
}
