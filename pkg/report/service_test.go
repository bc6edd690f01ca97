package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/beachesmls/marketreport/pkg/db/postgres"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStore struct {
	mu       sync.Mutex
	queries  []listings.ReportQuery
	searches []listings.SearchQuery
	rows     map[listings.Kind][]mls.Snapshot
	stats    mls.StatsRow
	listing  map[string]mls.Snapshot
	cities   []mls.CityCount
	err      error
	failKind listings.Kind
}

func (f *fakeStore) record(q listings.ReportQuery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
}

func (f *fakeStore) Report(_ context.Context, q listings.ReportQuery) ([]mls.Snapshot, error) {
	f.record(q)
	if f.err != nil && (f.failKind == "" || f.failKind == q.Kind) {
		return nil, f.err
	}
	return f.rows[q.Kind], nil
}

func (f *fakeStore) Stats(_ context.Context, q listings.ReportQuery) (mls.StatsRow, error) {
	f.record(q)
	if f.err != nil && (f.failKind == "" || f.failKind == listings.KindStats) {
		return mls.StatsRow{}, f.err
	}
	return f.stats, nil
}

func (f *fakeStore) Listing(_ context.Context, id string) (mls.Snapshot, bool, error) {
	if f.err != nil {
		return mls.Snapshot{}, false, f.err
	}
	s, ok := f.listing[id]
	return s, ok, nil
}

func (f *fakeStore) Search(_ context.Context, q listings.SearchQuery) ([]mls.Snapshot, error) {
	f.searches = append(f.searches, q)
	return f.rows[listings.KindActive], f.err
}

func (f *fakeStore) CityCounts(context.Context) ([]mls.CityCount, error) {
	return f.cities, f.err
}

func (f *fakeStore) Ping(context.Context) error { return f.err }

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	provider, err := areas.LoadStaticProvider("")
	require.NoError(t, err)
	svc := NewService(store, provider, Config{MaxLimit: 100, Location: time.UTC}, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC) }
	t.Cleanup(svc.Close)
	return svc
}

func fptr(f float64) *float64 { return &f }

func TestReportResolvesAreaAndParams(t *testing.T) {
	store := &fakeStore{rows: map[listings.Kind][]mls.Snapshot{
		listings.KindActive: {{ListingID: "1", Status: mls.StatusActive, ListingDate: "2024-06-20", ListPrice: "1,250,000"}},
	}}
	svc := newTestService(t, store)

	props, err := svc.ActiveListings(context.Background(), AreaRef{ID: "jupiter"}, Params{Limit: 1000, MinPrice: fptr(100)})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, 10, props[0].DaysOnMarket)
	assert.Equal(t, 1250000.0, props[0].ListPrice)

	require.Len(t, store.queries, 1)
	q := store.queries[0]
	assert.Equal(t, listings.KindActive, q.Kind)
	require.NotNil(t, q.Area)
	assert.Equal(t, "Jupiter", q.Area.Filters.City)
	assert.Equal(t, 100, q.Limit, "limit is capped")
	assert.Equal(t, 30, q.WindowDays)
	assert.Equal(t, 100.0, *q.MinPrice)
}

func TestReportAllAreas(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	for _, id := range []string{"", "all", "ALL"} {
		_, err := svc.RecentSales(context.Background(), AreaRef{ID: id}, Params{})
		require.NoError(t, err)
	}
	for _, q := range store.queries {
		assert.Nil(t, q.Area)
		assert.Equal(t, listings.DefaultLimit, q.Limit)
	}
}

func TestReportErrors(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	ctx := context.Background()

	_, err := svc.ActiveListings(ctx, AreaRef{ID: "atlantis"}, Params{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ActiveListings(ctx, AreaRef{ID: "jupiter", Type: "county"}, Params{})
	assert.ErrorIs(t, err, ErrInvalidFilterType)

	_, err = svc.Stats(ctx, AreaRef{ID: "jupiter"}, Params{MinPrice: fptr(5), MaxPrice: fptr(1)})
	assert.ErrorIs(t, err, ErrInvalidParams)

	storeErr := &postgres.StoreError{Kind: postgres.KindPool, Op: "report_active-listings", Err: errors.New("acquire timeout")}
	svc = newTestService(t, &fakeStore{err: storeErr})
	_, err = svc.ActiveListings(ctx, AreaRef{ID: "jupiter"}, Params{})
	require.Error(t, err)
	assert.True(t, IsStoreFailure(err))
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPriceChangesCarryDelta(t *testing.T) {
	store := &fakeStore{rows: map[listings.Kind][]mls.Snapshot{
		listings.KindPriceChanges: {{ListingID: "9", Status: mls.StatusActive, PriorListPrice: "500000", ListPrice: "450000"}},
		listings.KindActive:       {{ListingID: "9", Status: mls.StatusActive, PriorListPrice: "500000", ListPrice: "450000"}},
	}}
	svc := newTestService(t, store)

	props, err := svc.PriceChanges(context.Background(), AreaRef{}, Params{})
	require.NoError(t, err)
	require.Len(t, props, 1)
	require.NotNil(t, props[0].PriceDelta)
	assert.Equal(t, -50000.0, props[0].PriceChange)
	assert.Equal(t, -10.0, props[0].PriceChangePercent)

	props, err = svc.ActiveListings(context.Background(), AreaRef{}, Params{})
	require.NoError(t, err)
	assert.Nil(t, props[0].PriceDelta)
}

func TestStatsRounding(t *testing.T) {
	store := &fakeStore{stats: mls.StatsRow{
		ActiveListings:  12,
		SalesLastWindow: 3,
		AvgDaysOnMarket: fptr(41.5),
		AvgListPrice:    fptr(1234567.49),
	}}
	svc := newTestService(t, store)

	stats, err := svc.Stats(context.Background(), AreaRef{ID: "juno-beach"}, Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalActiveListings)
	assert.Equal(t, int64(3), stats.TotalSalesLast30Days)
	assert.Equal(t, int64(42), stats.AverageDaysOnMarket)
	assert.Equal(t, int64(1234567), stats.AverageListPrice)
	assert.Zero(t, stats.AverageSoldPrice)
	assert.Zero(t, stats.MaxListPrice)
	assert.False(t, stats.LastUpdated.IsZero())
	assert.Equal(t, listings.KindStats, store.queries[0].Kind)
}

func TestStatsEmptyAreaIsNotAnError(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	stats, err := svc.Stats(context.Background(), AreaRef{ID: "alicante", Type: areas.TypeDevelopment}, Params{})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalActiveListings)
	assert.Zero(t, stats.AverageDaysOnMarket)
}

func TestListing(t *testing.T) {
	store := &fakeStore{listing: map[string]mls.Snapshot{"42": {ListingID: "42", StreetNumber: "1", StreetName: "Ocean Dr"}}}
	svc := newTestService(t, store)

	p, err := svc.Listing(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "1 Ocean Dr", p.Address)

	_, err = svc.Listing(context.Background(), "43")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchMapsCityAndDefaults(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	beds := 2
	_, err := svc.Search(context.Background(), SearchParams{City: "west-palm-beach", MinBeds: &beds, HasPool: true})
	require.NoError(t, err)
	require.Len(t, store.searches, 1)
	q := store.searches[0]
	require.NotNil(t, q.Area)
	assert.Equal(t, "West Palm Beach", q.Area.Filters.City)
	assert.Equal(t, listings.DefaultLimit, q.Limit)
	assert.True(t, q.HasPool)

	_, err = svc.Search(context.Background(), SearchParams{City: "all"})
	require.NoError(t, err)
	assert.Nil(t, store.searches[1].Area)

	low, high := 4, 2
	_, err = svc.Search(context.Background(), SearchParams{MinBeds: &low, MaxBeds: &high})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestCityReportNeverNotFound(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	props, err := svc.CityReport(context.Background(), listings.KindComingSoon, "nowhere-ville", Params{})
	require.NoError(t, err)
	assert.Empty(t, props)
	assert.Equal(t, "Nowhere Ville", store.queries[0].Area.Filters.City)
}

func TestCities(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	cities, err := svc.Cities(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)
}

func TestDashboard(t *testing.T) {
	store := &fakeStore{
		rows: map[listings.Kind][]mls.Snapshot{
			listings.KindActive:      {{ListingID: "a"}},
			listings.KindRecentSales: {{ListingID: "s1"}, {ListingID: "s2"}},
		},
		stats: mls.StatsRow{ActiveListings: 1},
	}
	svc := newTestService(t, store)

	d, err := svc.Dashboard(context.Background(), AreaRef{ID: "admirals-cove"}, Params{Limit: 5})
	require.NoError(t, err)
	require.NotNil(t, d.Area)
	assert.Equal(t, areas.TypeDevelopment, d.Area.Type)
	assert.Len(t, d.ActiveListings, 1)
	assert.Len(t, d.RecentSales, 2)
	assert.Empty(t, d.ComingSoon)
	assert.Equal(t, int64(1), d.MarketStats.TotalActiveListings)
	assert.Len(t, store.queries, 6)
}

func TestDashboardFailsAsAWhole(t *testing.T) {
	store := &fakeStore{
		err:      &postgres.StoreError{Kind: postgres.KindTimeout, Op: "report_coming-soon", Err: context.DeadlineExceeded},
		failKind: listings.KindComingSoon,
	}
	svc := newTestService(t, store)

	d, err := svc.Dashboard(context.Background(), AreaRef{}, Params{})
	require.Error(t, err)
	assert.Nil(t, d)
	assert.True(t, IsStoreFailure(err))
}

func TestAsOfUsesReportZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	svc := newTestService(t, &fakeStore{})
	svc.cfg.Location = loc
	// 02:00 UTC on July 1st is still June 30th in New York.
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 2, 0, 0, 0, time.UTC) }
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), svc.today())
}
