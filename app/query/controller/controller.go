package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/beachesmls/marketreport/app/query/types"
	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/metrics"
	"github.com/beachesmls/marketreport/pkg/property"
	"github.com/beachesmls/marketreport/pkg/report"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Reports is the part of report.Service the handlers use.
type Reports interface {
	Report(ctx context.Context, kind listings.Kind, ref report.AreaRef, p report.Params) ([]property.Property, error)
	Stats(ctx context.Context, ref report.AreaRef, p report.Params) (report.MarketStats, error)
	Dashboard(ctx context.Context, ref report.AreaRef, p report.Params) (*report.Dashboard, error)
	CityReport(ctx context.Context, kind listings.Kind, city string, p report.Params) ([]property.Property, error)
	CityStats(ctx context.Context, city string, p report.Params) (report.MarketStats, error)
	Profile(ctx context.Context, ref report.AreaRef) (*areas.Profile, error)
	Areas(ctx context.Context) ([]areas.Profile, error)
	Listing(ctx context.Context, listingID string) (*property.Property, error)
	Search(ctx context.Context, p report.SearchParams) ([]property.Property, error)
	Cities(ctx context.Context) ([]mls.CityCount, error)
	Ping(ctx context.Context) error
}

var _ Reports = (*report.Service)(nil)

// Cache is the optional shared cache checked by the health endpoint.
type Cache interface {
	Health(ctx context.Context) error
}

type Controller struct {
	App     *types.App
	Reports Reports
	Cache   Cache
	Logger  *zap.Logger
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	c := &Controller{
		App:     app,
		Reports: app.Reports,
		Logger:  app.Logger.With(zap.String("component", "query_api")),
	}
	if app.RedisClient != nil {
		c.Cache = app.RedisClient
	}
	return c
}

const (
	areaReports   = "stats|recent-sales|under-contract|active-listings|coming-soon|price-changes|dashboard"
	marketReports = "stats|recent-sales|under-contract|active-listings|coming-soon|price-changes"
)

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(withRequestID, c.withMetrics)

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods("GET")
	if c.App == nil || c.App.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", c.HandleHealth).Methods("GET")

	api.HandleFunc("/areas", c.HandleAreas).Methods("GET")
	api.HandleFunc("/areas/{areaId}", c.HandleAreaProfile).Methods("GET")
	api.HandleFunc("/areas/{areaId}/{report:"+areaReports+"}", c.HandleAreaReport).Methods("GET")

	api.HandleFunc("/market/{report:"+marketReports+"}", c.HandleMarketReport).Methods("GET")

	// search must be registered before the id route
	api.HandleFunc("/properties/search", c.HandleSearch).Methods("GET")
	api.HandleFunc("/properties/{id}", c.HandleProperty).Methods("GET")
	api.HandleFunc("/cities", c.HandleCities).Methods("GET")

	return r, nil
}

// WithCORS allows browser clients from any origin.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{http.MethodGet, http.MethodOptions}, ", "))

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
