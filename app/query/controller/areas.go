package controller

import (
	"net/http"

	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/gorilla/mux"
)

const dashboardReport = "dashboard"

// HandleAreas lists the known area profiles.
func (c *Controller) HandleAreas(w http.ResponseWriter, r *http.Request) {
	profiles, err := c.Reports.Areas(r.Context())
	if err != nil {
		c.fail(w, r, err, "area profiles")
		return
	}
	c.writeJSON(w, http.StatusOK, profiles)
}

// HandleAreaProfile returns one area profile.
func (c *Controller) HandleAreaProfile(w http.ResponseWriter, r *http.Request) {
	ref, err := parseAreaRef(r, mux.Vars(r)["areaId"])
	if err != nil {
		c.fail(w, r, err, "area profile")
		return
	}
	profile, err := c.Reports.Profile(r.Context(), ref)
	if err != nil {
		c.fail(w, r, err, "area profile")
		return
	}
	c.writeJSON(w, http.StatusOK, profile)
}

// HandleAreaReport serves /api/areas/{areaId}/{report}. An unknown area is
// 404; a known area without listings is an empty result.
func (c *Controller) HandleAreaReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ref, err := parseAreaRef(r, vars["areaId"])
	if err != nil {
		c.fail(w, r, err, "area profile")
		return
	}
	params, err := parseParams(r)
	if err != nil {
		c.fail(w, r, err, "area profile")
		return
	}

	ctx := r.Context()
	switch name := vars["report"]; name {
	case dashboardReport:
		d, err := c.Reports.Dashboard(ctx, ref, params)
		if err != nil {
			c.fail(w, r, err, "area profile")
			return
		}
		c.writeJSON(w, http.StatusOK, d)
	case string(listings.KindStats):
		stats, err := c.Reports.Stats(ctx, ref, params)
		if err != nil {
			c.fail(w, r, err, "area profile")
			return
		}
		c.writeJSON(w, http.StatusOK, stats)
	default:
		kind, ok := listings.ParseKind(name)
		if !ok {
			c.writeError(w, http.StatusNotFound, "unknown report")
			return
		}
		rows, err := c.Reports.Report(ctx, kind, ref, params)
		if err != nil {
			c.fail(w, r, err, "area profile")
			return
		}
		c.writeJSON(w, http.StatusOK, rows)
	}
}
