package report

import (
	"context"

	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/property"
)

// The market operations serve the older city-keyed endpoints. The city is
// mapped through the alias table and never looked up, so an unknown city
// yields empty results rather than ErrNotFound.

// CityReport runs a list report filtered by city.
func (s *Service) CityReport(ctx context.Context, kind listings.Kind, city string, p Params) ([]property.Property, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return s.runReport(ctx, kind, cityProfile(city), p)
}

// CityStats runs the stats aggregate filtered by city.
func (s *Service) CityStats(ctx context.Context, city string, p Params) (MarketStats, error) {
	if err := p.validate(); err != nil {
		return MarketStats{}, err
	}
	return s.runStats(ctx, cityProfile(city), p)
}
