package controller

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleProperty returns one resolved listing.
func (c *Controller) HandleProperty(w http.ResponseWriter, r *http.Request) {
	p, err := c.Reports.Listing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		c.fail(w, r, err, "property")
		return
	}
	c.writeJSON(w, http.StatusOK, p)
}

// HandleSearch runs a property search.
func (c *Controller) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearch(r)
	if err != nil {
		c.fail(w, r, err, "properties")
		return
	}
	rows, err := c.Reports.Search(r.Context(), params)
	if err != nil {
		c.fail(w, r, err, "properties")
		return
	}
	c.writeJSON(w, http.StatusOK, rows)
}

// HandleCities lists resolved cities with listing counts.
func (c *Controller) HandleCities(w http.ResponseWriter, r *http.Request) {
	cities, err := c.Reports.Cities(r.Context())
	if err != nil {
		c.fail(w, r, err, "cities")
		return
	}
	c.writeJSON(w, http.StatusOK, cities)
}
