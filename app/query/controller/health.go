package controller

import (
	"net/http"

	"go.uber.org/zap"
)

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.Reports.Ping(ctx); err != nil {
		c.Logger.Warn("Health check failed", zap.String("request_id", requestID(ctx)), zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "errored", "error": "database connection error"})
		return
	}

	// Reports still work without the shared cache, so this is not a failure.
	if c.Cache != nil {
		if err := c.Cache.Health(ctx); err != nil {
			c.Logger.Warn("Cache health check failed", zap.String("request_id", requestID(ctx)), zap.Error(err))
			c.writeJSON(w, http.StatusOK, map[string]string{"status": "degraded", "cache": "unavailable"})
			return
		}
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
