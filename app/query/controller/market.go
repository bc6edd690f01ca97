package controller

import (
	"net/http"
	"strings"

	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/gorilla/mux"
)

// HandleMarketReport serves the city-keyed /api/market/{report} endpoints.
// city and area are accepted interchangeably.
func (c *Controller) HandleMarketReport(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		c.fail(w, r, err, "market data")
		return
	}
	qs := r.URL.Query()
	city := firstNonEmpty(qs.Get("city"), qs.Get("area"))

	name := mux.Vars(r)["report"]
	kind, ok := listings.ParseKind(name)
	if !ok {
		c.writeError(w, http.StatusNotFound, "unknown report")
		return
	}

	if kind == listings.KindStats {
		stats, err := c.Reports.CityStats(r.Context(), city, params)
		if err != nil {
			c.fail(w, r, err, "market stats")
			return
		}
		c.writeJSON(w, http.StatusOK, stats)
		return
	}

	rows, err := c.Reports.CityReport(r.Context(), kind, city, params)
	if err != nil {
		c.fail(w, r, err, strings.ReplaceAll(name, "-", " "))
		return
	}
	c.writeJSON(w, http.StatusOK, rows)
}
