package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"regionalgeo/internal/config"
	"regionalgeo/internal/geodb"
	"regionalgeo/internal/handler"
	"regionalgeo/internal/region"
	"regionalgeo/internal/repository"
	"regionalgeo/internal/resolver"
	"regionalgeo/internal/service"
)

var (
	lastLogTime atomic.Value
	logMutex    sync.Mutex
)

func init() {
	lastLogTime.Store(time.Now())
}

func main() {
	// Initialize logger
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := logConfig.Build()
	defer logger.Sync()

	logger.Info("Starting up server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Region mapping
	regions, regionStore, closeRegions := openRegions(ctx, cfg, logger)
	defer closeRegions()

	// Result cache
	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	// Geo databases
	var res service.Resolver
	if cfg.GeoEnabled {
		var opener geodb.Opener = geodb.Files{}
		if cfg.GeoPoolReaders {
			pool := geodb.NewPool(logger)
			defer pool.Close()
			opener = pool
		}

		pipeline := resolver.New(opener, regions, resolver.Paths{
			City: cfg.GeoPathCity,
			ISP:  cfg.GeoPathISP,
		}, logger)

		for _, path := range []string{pipeline.Paths().City, pipeline.Paths().ISP} {
			if err := geodb.Exists(path); err != nil {
				logger.Warn("Geo database not found, lookups will fail until it is installed",
					zap.String("path", path),
					zap.Error(err))
			}
		}
		res = pipeline
	} else {
		logger.Warn("Geo lookup disabled, all lookups will report GEOIP_MISSING")
	}

	metrics := service.NewMetrics(prometheus.DefaultRegisterer)
	geoService := service.NewGeoService(res, store, metrics, logger)

	// Initialize HTTP server
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		// Always log errors and slow requests
		if err != nil || latency > 100*time.Millisecond || c.Response().StatusCode() != 200 {
			logger.Info("request",
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("latency", latency),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return err
		}

		// Check if 10 seconds have passed since last log
		last := lastLogTime.Load().(time.Time)
		if time.Since(last) >= 10*time.Second {
			logMutex.Lock()
			// Double-check after acquiring lock
			if time.Since(last) >= 10*time.Second {
				logger.Info("sampled_request",
					zap.Int("status", c.Response().StatusCode()),
					zap.Duration("latency", latency),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
				)
				lastLogTime.Store(time.Now())
			}
			logMutex.Unlock()
		}

		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Initialize and register handlers
	var regionAPI handler.RegionStore
	if regionStore != nil {
		regionAPI = regionStore
	}
	h := handler.NewHandler(geoService, regionAPI, cfg.RegisteredDomains, logger)
	h.RegisterRoutes(app)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := app.Listen(cfg.ServerPort); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}
}

// openRegions returns the resolver used by the pipeline and, for SQL
// backends, the repository exposed through the region API.
func openRegions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (resolver.RegionResolver, *region.Repository, func()) {
	if cfg.RegionBackend == "static" {
		logger.Info("Using static region mapping", zap.Int("regions", len(cfg.Regions)))
		return region.NewStatic(cfg.Regions), nil, func() {}
	}

	driver, dsn := "postgres", cfg.PostgresURL
	if cfg.RegionBackend == "sqlite" {
		driver, dsn = "sqlite", cfg.RegionDSN
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		logger.Fatal("Failed to connect to region database", zap.String("driver", driver), zap.Error(err))
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	repo := region.NewRepository(db, logger)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate region table", zap.Error(err))
	}

	existing, err := repo.List(ctx)
	if err != nil {
		logger.Fatal("Failed to read region table", zap.Error(err))
	}
	if len(existing) == 0 {
		logger.Info("No regions found in database, seeding defaults", zap.Int("regions", len(cfg.Regions)))
		for _, r := range cfg.Regions {
			if err := repo.Save(ctx, r); err != nil {
				logger.Fatal("Failed to seed regions", zap.Error(err))
			}
		}
	}

	return repo, repo, func() { repo.Close() }
}

// openStore returns the cache collaborator for the configured backend, or nil
// when caching is disabled.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Store, func()) {
	switch cfg.CacheBackend {
	case "none":
		logger.Info("Result cache disabled")
		return nil, func() {}

	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		repo := repository.NewRedisRepository(redis.NewClient(opt), cfg.CacheTTL, logger)
		return repo, func() { repo.Close() }
	}

	driver, dsn := cfg.CacheBackend, cfg.CacheDSN
	if driver == "postgres" && dsn == "" {
		dsn = cfg.PostgresURL
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		logger.Fatal("Failed to connect to cache database", zap.String("driver", driver), zap.Error(err))
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			logger.Fatal("Failed to configure sqlite cache", zap.Error(err))
		}
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	repo := repository.NewSQLRepository(db, cfg.CacheTTL, logger)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate cache table", zap.Error(err))
	}

	// Expire stale rows hourly
	ticker := time.NewTicker(time.Hour)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				removed, err := repo.Cleanup(ctx)
				if err != nil {
					logger.Error("cache cleanup failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					logger.Info("Expired cached envelopes", zap.Int64("removed", removed))
				}
			}
		}
	}()

	return repo, func() { repo.Close() }
}
