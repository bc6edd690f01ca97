package report

import (
	"context"
	"fmt"
	"time"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/metrics"
	"github.com/beachesmls/marketreport/pkg/property"
)

// SearchParams filters a property search. City takes a slug or a stored
// city name; empty or "all" searches everywhere.
type SearchParams struct {
	City       string
	Status     string
	MinPrice   *float64
	MaxPrice   *float64
	MinBeds    *int
	MaxBeds    *int
	MinBaths   *float64
	MaxBaths   *float64
	HasPool    bool
	Waterfront bool
	Limit      int
}

func (p SearchParams) validate() error {
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidParams)
	}
	if p.MinBeds != nil && p.MaxBeds != nil && *p.MinBeds > *p.MaxBeds {
		return fmt.Errorf("%w: minBeds exceeds maxBeds", ErrInvalidParams)
	}
	if p.MinBaths != nil && p.MaxBaths != nil && *p.MinBaths > *p.MaxBaths {
		return fmt.Errorf("%w: minBaths exceeds maxBaths", ErrInvalidParams)
	}
	return nil
}

// Search runs a property search ordered by listing date, newest first.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]property.Property, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	rows, err := s.store.Search(ctx, listings.SearchQuery{
		Area:       cityProfile(p.City),
		Status:     p.Status,
		MinPrice:   p.MinPrice,
		MaxPrice:   p.MaxPrice,
		MinBeds:    p.MinBeds,
		MaxBeds:    p.MaxBeds,
		MinBaths:   p.MinBaths,
		MaxBaths:   p.MaxBaths,
		HasPool:    p.HasPool,
		Waterfront: p.Waterfront,
		Limit:      s.limit(p.Limit),
	})
	if err != nil {
		metrics.ObserveQuery("search", started, 0, errorKind(err))
		return nil, fmt.Errorf("search: %w", err)
	}
	metrics.ObserveQuery("search", started, len(rows), "")
	return property.MapAll(rows, s.today(), property.Map), nil
}

// cityProfile builds an ad hoc city profile from a slug or name without
// consulting the provider; nil means everywhere.
func cityProfile(city string) *areas.Profile {
	ref := areas.Ref{ID: city}
	if ref.All() {
		return nil
	}
	name := areas.CityName(city)
	p := areas.NewProfile(areas.Slugify(name), areas.TypeCity, name)
	return &p
}
