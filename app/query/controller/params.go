package controller

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/report"
)

var (
	errInvalidLimit    = &parseError{msg: "invalid limit"}
	errInvalidMinPrice = &parseError{msg: "invalid minPrice"}
	errInvalidMaxPrice = &parseError{msg: "invalid maxPrice"}
	errInvalidBeds     = &parseError{msg: "invalid minBeds or maxBeds"}
	errInvalidBaths    = &parseError{msg: "invalid minBaths or maxBaths"}
	errInvalidType     = &parseError{msg: "invalid area type, must be one of city, development, subdivision, zone, region, lifestyle"}
)

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// parseParams reads limit, minPrice and maxPrice. A missing limit is 0 and
// the service applies its default and cap.
func parseParams(r *http.Request) (report.Params, error) {
	qs := r.URL.Query()
	var p report.Params

	if v := qs.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return report.Params{}, errInvalidLimit
		}
		p.Limit = n
	}

	var err error
	if p.MinPrice, err = parsePrice(qs.Get("minPrice"), errInvalidMinPrice); err != nil {
		return report.Params{}, err
	}
	if p.MaxPrice, err = parsePrice(qs.Get("maxPrice"), errInvalidMaxPrice); err != nil {
		return report.Params{}, err
	}
	return p, nil
}

func parsePrice(v string, perr *parseError) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, perr
	}
	return &f, nil
}

func parseOptionalInt(v string, perr *parseError) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, perr
	}
	return &n, nil
}

// parseAreaRef combines the path id with the optional ?type= hint.
func parseAreaRef(r *http.Request, areaID string) (report.AreaRef, error) {
	t, err := areas.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		return report.AreaRef{}, errInvalidType
	}
	return report.AreaRef{ID: areaID, Type: t}, nil
}

// parseSearch reads the property search query string.
func parseSearch(r *http.Request) (report.SearchParams, error) {
	qs := r.URL.Query()
	base, err := parseParams(r)
	if err != nil {
		return report.SearchParams{}, err
	}

	p := report.SearchParams{
		City:       firstNonEmpty(qs.Get("city"), qs.Get("area")),
		Status:     strings.TrimSpace(qs.Get("status")),
		MinPrice:   base.MinPrice,
		MaxPrice:   base.MaxPrice,
		HasPool:    qs.Get("hasPool") == "true",
		Waterfront: qs.Get("waterfront") == "true",
		Limit:      base.Limit,
	}
	if p.MinBeds, err = parseOptionalInt(qs.Get("minBeds"), errInvalidBeds); err != nil {
		return report.SearchParams{}, err
	}
	if p.MaxBeds, err = parseOptionalInt(qs.Get("maxBeds"), errInvalidBeds); err != nil {
		return report.SearchParams{}, err
	}
	if p.MinBaths, err = parsePrice(qs.Get("minBaths"), errInvalidBaths); err != nil {
		return report.SearchParams{}, err
	}
	if p.MaxBaths, err = parsePrice(qs.Get("maxBaths"), errInvalidBaths); err != nil {
		return report.SearchParams{}, err
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
