package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/property"
	"go.uber.org/zap"
)

// Dashboard is every report for one area.
type Dashboard struct {
	Area           *areas.Profile      `json:"area"`
	MarketStats    MarketStats         `json:"marketStats"`
	ActiveListings []property.Property `json:"activeListings"`
	RecentSales    []property.Property `json:"recentSales"`
	UnderContract  []property.Property `json:"underContract"`
	ComingSoon     []property.Property `json:"comingSoon"`
	PriceChanges   []property.Property `json:"priceChanges"`
}

func (d *Dashboard) slot(kind listings.Kind) *[]property.Property {
	switch kind {
	case listings.KindActive:
		return &d.ActiveListings
	case listings.KindRecentSales:
		return &d.RecentSales
	case listings.KindUnderContract:
		return &d.UnderContract
	case listings.KindComingSoon:
		return &d.ComingSoon
	case listings.KindPriceChanges:
		return &d.PriceChanges
	}
	return nil
}

// Dashboard resolves the area once and runs the six reports concurrently.
// Each report is its own statement, so counts and rows may come from
// slightly different store states. Any failure fails the whole dashboard.
func (s *Service) Dashboard(ctx context.Context, ref AreaRef, p Params) (*Dashboard, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	area, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	out := &Dashboard{Area: area}
	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	group.Submit(func() {
		if err := groupCtx.Err(); err != nil {
			return
		}
		stats, err := s.runStats(groupCtx, area, p)
		if err != nil {
			fail(err)
			return
		}
		out.MarketStats = stats
	})
	for _, kind := range listings.ListKinds {
		slot := out.slot(kind)
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			rows, err := s.runReport(groupCtx, kind, area, p)
			if err != nil {
				fail(err)
				return
			}
			*slot = rows
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logFailure("Dashboard failed", err, zap.String("area", ref.ID))
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return out, nil
}
