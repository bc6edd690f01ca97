package types

import (
	"context"
	"net/http"
	"time"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/redis"
	"github.com/beachesmls/marketreport/pkg/report"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type App struct {
	ListingsDB *listings.DB
	Reports    *report.Service
	// AreaCache is nil when AREA_CACHE_TTL is 0.
	AreaCache *areas.CachedProvider
	// RedisClient is nil unless REDIS_ENABLED is set.
	RedisClient *redis.Client
	Cron        *cron.Cron

	MetricsEnabled bool
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("Server stopped", zap.Error(err))
		}
	}()
	if a.Cron != nil {
		a.Cron.Start()
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}

	_ = a.Server.Shutdown(shutdownCtx)

	a.Reports.Close()
	a.ListingsDB.Close()

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
