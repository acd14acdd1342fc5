package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/fenilmodi00/farcaster-gateway/database"
	"github.com/fenilmodi00/farcaster-gateway/handlers"
	"github.com/fenilmodi00/farcaster-gateway/jobs"
	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	shared.ConfigureLogging(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	registry := shared.NewMetricsRegistry()

	// Cache backend
	store := newCacheStore(cfg.Cache)
	cacheService := services.NewCacheService(store, cfg.Cache.Backend, registry.Service("cache"))

	// Upstream clients
	factory := shared.NewHTTPClientFactory(cfg.Airstack.Timeout)
	airstack := services.NewAirstackClient(cfg.Airstack, factory, registry.Upstream("airstack"))
	neynar := services.NewNeynarClient(cfg.Neynar, factory, registry.Upstream("neynar"))
	warpcast := services.NewWarpcastClient(cfg.Warpcast, factory, registry.Upstream("warpcast"))

	resolver := services.NewCastResolver(cacheService, neynar)
	castService := services.NewCastService(airstack, resolver)
	userService := services.NewUserService(airstack, warpcast)

	logrus.WithFields(logrus.Fields{
		"cache_backend":    cfg.Cache.Backend,
		"upstream_timeout": cfg.Airstack.Timeout,
		"cache_timeout":    cfg.Cache.Timeout,
	}).Info("Gateway services initialized")

	// Background jobs
	jobCtx, stopJobs := context.WithCancel(context.Background())
	metricsJob := jobs.NewMetricsReportJob(registry, cacheService)
	go metricsJob.Start(jobCtx, cfg.MetricsReportInterval)

	app := handlers.NewApp(handlers.Dependencies{
		APIKey:        cfg.APIKey,
		Users:         userService,
		Casts:         castService,
		Cache:         cacheService,
		Metrics:       registry,
		HealthTimeout: cfg.Cache.Timeout,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		logrus.WithField("signal", sig.String()).Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}

	stopJobs()
	metricsJob.Run()
	if err := cacheService.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close cache store")
	}
	factory.CleanupAllClients()
	logrus.Info("Server stopped")
}

// newCacheStore opens the configured backend. A nil store disables caching;
// an unreachable backend never prevents startup.
func newCacheStore(cfg config.CacheConfig) services.KeyValueStore {
	logger := logrus.WithField("backend", cfg.Backend)

	switch cfg.Backend {
	case config.CacheBackendRedis:
		store := database.NewRedisStore(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis is unreachable, cast lookups will bypass the cache until it recovers")
		}
		return store

	case config.CacheBackendPostgres:
		db, err := database.Connect(cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			logger.WithError(err).Warn("Postgres is unreachable, cast resolution caching is disabled")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			logger.WithError(err).Warn("Cache schema migration failed, cast resolution caching is disabled")
			_ = db.Close()
			return nil
		}
		return database.NewPostgresStore(db, cfg.Timeout)

	case config.CacheBackendMemory:
		return services.NewMemoryStore(cfg.MemoryMaxSize)

	default:
		logger.Warn("Cast resolution caching is disabled")
		return nil
	}
}
