// Package metrics holds the Prometheus collectors for the market report
// service. Collectors register with the default registry at init.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueryDuration tracks report query latency by report kind.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketreport_query_duration_seconds",
		Help:    "Report query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"report"})

	// QueryErrors counts failed report queries by kind of store failure.
	QueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketreport_query_errors_total",
		Help: "Total failed report queries by report and failure kind",
	}, []string{"report", "kind"})

	// QueryRows tracks how many rows a report returned.
	QueryRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketreport_query_rows",
		Help:    "Rows returned per report query",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"report"})

	// StoreRetries counts retried store operations by operation name.
	StoreRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketreport_store_retries_total",
		Help: "Store operations retried after a transient failure",
	}, []string{"op"})

	// HTTPRequests counts requests by route template and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketreport_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})

	// HTTPDuration tracks handler latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketreport_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// AreaCacheResults counts area profile cache lookups by outcome.
	AreaCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketreport_area_cache_total",
		Help: "Area profile cache lookups by result",
	}, []string{"result"})

	// AreaCacheSwept counts expired cache entries removed by the sweep job.
	AreaCacheSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketreport_area_cache_swept_total",
		Help: "Expired area profile cache entries removed",
	})
)

// ObserveQuery records one report query.
func ObserveQuery(report string, started time.Time, rows int, errKind string) {
	QueryDuration.WithLabelValues(report).Observe(time.Since(started).Seconds())
	if errKind != "" {
		QueryErrors.WithLabelValues(report, errKind).Inc()
		return
	}
	QueryRows.WithLabelValues(report).Observe(float64(rows))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
