package query

import (
	"context"
	"fmt"
	"time"

	"github.com/beachesmls/marketreport/app/query/types"
	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/logging"
	"github.com/beachesmls/marketreport/pkg/metrics"
	"github.com/beachesmls/marketreport/pkg/redis"
	"github.com/beachesmls/marketreport/pkg/report"
	"github.com/beachesmls/marketreport/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	if utils.Env("APP_ENV", "development") != "production" {
		// a missing .env is fine, the environment may already be set
		_ = godotenv.Load()
	}

	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	listingsDB, err := listings.New(ctx, logger, "query", listings.TablesFromEnv())
	if err != nil {
		logger.Fatal("Unable to initialize listings database", zap.Error(err))
	}

	if utils.EnvBool("MLS_ENSURE_INDEXES", false) {
		if err := listingsDB.EnsureIndexes(ctx); err != nil {
			// reports still work without the indexes, only slower
			logger.Error("Unable to ensure listing indexes", zap.Error(err))
		}
	}

	// Initialize Redis client for the shared area cache (optional)
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - area profiles will only be cached in process",
				zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Redis client initialized for the shared area cache")
		}
	} else {
		logger.Info("Redis disabled - area profiles will only be cached in process")
	}

	provider, err := areas.ProviderFromEnv(listingsDB, logging.Component(logger, "area_provider"))
	if err != nil {
		logger.Fatal("Unable to initialize area provider", zap.Error(err))
	}

	app := &types.App{
		ListingsDB:     listingsDB,
		RedisClient:    redisClient,
		MetricsEnabled: utils.EnvBool("METRICS_ENABLED", true),
		Logger:         logger,
	}

	if ttl := utils.EnvDuration("AREA_CACHE_TTL", 5*time.Minute); ttl > 0 {
		var shared areas.SharedCache
		if redisClient != nil {
			shared = redisClient
		}
		app.AreaCache = areas.NewCachedProvider(provider, ttl, shared, logging.Component(logger, "area_cache"))
		provider = app.AreaCache

		app.Cron, err = newSweepCron(app.AreaCache, logger)
		if err != nil {
			logger.Fatal("Unable to schedule area cache sweep", zap.Error(err))
		}
	}

	cfg, err := report.ConfigFromEnv()
	if err != nil {
		logger.Fatal("Invalid report configuration", zap.Error(err))
	}
	app.Reports = report.NewService(listingsDB, provider, cfg, logger)

	return app
}

// newSweepCron drops expired area cache entries on AREA_CACHE_SWEEP.
func newSweepCron(cache *areas.CachedProvider, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	spec := utils.Env("AREA_CACHE_SWEEP", "0 */5 * * * *")
	_, err := c.AddFunc(spec, func() {
		if n := cache.Sweep(); n > 0 {
			metrics.AreaCacheSwept.Add(float64(n))
			logger.Debug("Swept area cache", zap.Int("removed", n), zap.Int("remaining", cache.Len()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse AREA_CACHE_SWEEP %q: %w", spec, err)
	}
	return c, nil
}
