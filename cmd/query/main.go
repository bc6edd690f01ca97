// Command query serves the market report HTTP API over the MLS listings
// snapshot table.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/beachesmls/marketreport/app/query"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	defer cancel()

	app := query.Initialize(ctx)
	app.Logger.Info("Market report API initialized",
		zap.Bool("area_cache", app.AreaCache != nil),
		zap.Bool("redis", app.RedisClient != nil),
		zap.Bool("metrics", app.MetricsEnabled),
	)

	serverErr := query.NewServer(app)
	if serverErr != nil {
		app.Logger.Fatal("Unable to initialize market report server", zap.Error(serverErr))
	}

	app.Start(ctx)
}
