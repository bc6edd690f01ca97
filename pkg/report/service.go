// Package report exposes one operation per market report. It resolves the
// requested area, runs the single store query for the report and maps the
// rows into their API shape.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/metrics"
	"github.com/beachesmls/marketreport/pkg/property"
	"github.com/beachesmls/marketreport/pkg/utils"
	"go.uber.org/zap"
)

// Store is the listing store. It is implemented by *listings.DB.
type Store interface {
	Report(ctx context.Context, q listings.ReportQuery) ([]mls.Snapshot, error)
	Stats(ctx context.Context, q listings.ReportQuery) (mls.StatsRow, error)
	Listing(ctx context.Context, listingID string) (mls.Snapshot, bool, error)
	Search(ctx context.Context, q listings.SearchQuery) ([]mls.Snapshot, error)
	CityCounts(ctx context.Context) ([]mls.CityCount, error)
	Ping(ctx context.Context) error
}

var _ Store = (*listings.DB)(nil)

// AreaRef names the requested area. An empty ID or "all" means no area
// restriction.
type AreaRef = areas.Ref

// Params are caller options shared by all reports.
type Params struct {
	Limit    int
	MinPrice *float64
	MaxPrice *float64
}

func (p Params) validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidParams)
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidParams)
	}
	return nil
}

// Config tunes a Service.
type Config struct {
	WindowDays   int
	DefaultLimit int
	MaxLimit     int
	Location     *time.Location
	// DashboardWorkers bounds concurrent queries of one dashboard.
	DashboardWorkers int
}

// ConfigFromEnv reads the REPORT_* variables.
func ConfigFromEnv() (Config, error) {
	tz := utils.Env("REPORT_TIMEZONE", "America/New_York")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("load REPORT_TIMEZONE %q: %w", tz, err)
	}
	return Config{
		WindowDays:       utils.EnvInt("REPORT_WINDOW_DAYS", property.DefaultWindowDays),
		DefaultLimit:     utils.EnvInt("REPORT_DEFAULT_LIMIT", listings.DefaultLimit),
		MaxLimit:         utils.EnvInt("REPORT_MAX_LIMIT", 500),
		Location:         loc,
		DashboardWorkers: utils.EnvInt("REPORT_DASHBOARD_WORKERS", 6),
	}, nil
}

func (c Config) withDefaults() Config {
	if c.WindowDays <= 0 {
		c.WindowDays = property.DefaultWindowDays
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = listings.DefaultLimit
	}
	if c.MaxLimit < c.DefaultLimit {
		c.MaxLimit = c.DefaultLimit
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.DashboardWorkers <= 0 {
		c.DashboardWorkers = len(listings.ListKinds) + 1
	}
	return c
}

// Service runs the reports.
type Service struct {
	store  Store
	areas  areas.Provider
	cfg    Config
	logger *zap.Logger
	pool   pond.Pool
	now    func() time.Time
}

// NewService wires a Service. Call Close to release the dashboard pool.
func NewService(store Store, provider areas.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Service{
		store:  store,
		areas:  provider,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "report_service")),
		pool:   pond.NewPool(cfg.DashboardWorkers),
		now:    time.Now,
	}
}

// Close stops the dashboard pool after in-flight work finishes.
func (s *Service) Close() {
	s.pool.StopAndWait()
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// asOf is the current time in the report zone. "Today" and the trailing
// windows are derived from its calendar date.
func (s *Service) asOf() time.Time {
	return s.now().In(s.cfg.Location)
}

// today is the report-zone calendar date at UTC midnight, the form the
// property package compares dates in.
func (s *Service) today() time.Time {
	y, m, d := s.asOf().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.cfg.DefaultLimit
	case requested > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return requested
	}
}

// resolve turns a ref into a profile; nil means no area restriction.
func (s *Service) resolve(ctx context.Context, ref AreaRef) (*areas.Profile, error) {
	t, err := areas.ParseType(string(ref.Type))
	if err != nil {
		return nil, err
	}
	ref.Type = t
	if ref.All() {
		return nil, nil
	}
	return s.areas.Resolve(ctx, ref)
}

func (s *Service) query(kind listings.Kind, area *areas.Profile, p Params) listings.ReportQuery {
	return listings.ReportQuery{
		Kind:       kind,
		Area:       area,
		Limit:      s.limit(p.Limit),
		MinPrice:   p.MinPrice,
		MaxPrice:   p.MaxPrice,
		AsOf:       s.asOf(),
		WindowDays: s.cfg.WindowDays,
	}
}

// Report runs one list report for ref.
func (s *Service) Report(ctx context.Context, kind listings.Kind, ref AreaRef, p Params) ([]property.Property, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	area, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.runReport(ctx, kind, area, p)
}

func (s *Service) runReport(ctx context.Context, kind listings.Kind, area *areas.Profile, p Params) ([]property.Property, error) {
	started := time.Now()
	rows, err := s.store.Report(ctx, s.query(kind, area, p))
	if err != nil {
		metrics.ObserveQuery(string(kind), started, 0, errorKind(err))
		return nil, fmt.Errorf("%s report: %w", kind, err)
	}
	metrics.ObserveQuery(string(kind), started, len(rows), "")

	mapper := property.Map
	if kind == listings.KindPriceChanges {
		mapper = property.MapPriceChange
	}
	return property.MapAll(rows, s.today(), mapper), nil
}

func (s *Service) ActiveListings(ctx context.Context, ref AreaRef, p Params) ([]property.Property, error) {
	return s.Report(ctx, listings.KindActive, ref, p)
}

func (s *Service) RecentSales(ctx context.Context, ref AreaRef, p Params) ([]property.Property, error) {
	return s.Report(ctx, listings.KindRecentSales, ref, p)
}

func (s *Service) UnderContract(ctx context.Context, ref AreaRef, p Params) ([]property.Property, error) {
	return s.Report(ctx, listings.KindUnderContract, ref, p)
}

func (s *Service) ComingSoon(ctx context.Context, ref AreaRef, p Params) ([]property.Property, error) {
	return s.Report(ctx, listings.KindComingSoon, ref, p)
}

// PriceChanges rows carry the price delta fields.
func (s *Service) PriceChanges(ctx context.Context, ref AreaRef, p Params) ([]property.Property, error) {
	return s.Report(ctx, listings.KindPriceChanges, ref, p)
}

// Stats runs the market stats aggregate for ref.
func (s *Service) Stats(ctx context.Context, ref AreaRef, p Params) (MarketStats, error) {
	if err := p.validate(); err != nil {
		return MarketStats{}, err
	}
	area, err := s.resolve(ctx, ref)
	if err != nil {
		return MarketStats{}, err
	}
	return s.runStats(ctx, area, p)
}

func (s *Service) runStats(ctx context.Context, area *areas.Profile, p Params) (MarketStats, error) {
	started := time.Now()
	row, err := s.store.Stats(ctx, s.query(listings.KindStats, area, p))
	if err != nil {
		metrics.ObserveQuery(string(listings.KindStats), started, 0, errorKind(err))
		return MarketStats{}, fmt.Errorf("stats report: %w", err)
	}
	metrics.ObserveQuery(string(listings.KindStats), started, 1, "")
	return newMarketStats(row, s.now()), nil
}

// Profile resolves one area. Unlike the reports, "all" is not an area.
func (s *Service) Profile(ctx context.Context, ref AreaRef) (*areas.Profile, error) {
	t, err := areas.ParseType(string(ref.Type))
	if err != nil {
		return nil, err
	}
	ref.Type = t
	if ref.All() {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref.ID)
	}
	return s.areas.Resolve(ctx, ref)
}

// Areas lists the known area profiles.
func (s *Service) Areas(ctx context.Context) ([]areas.Profile, error) {
	return s.areas.List(ctx)
}

// Listing returns one resolved listing.
func (s *Service) Listing(ctx context.Context, listingID string) (*property.Property, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, fmt.Errorf("%w: empty listing id", ErrNotFound)
	}
	started := time.Now()
	row, found, err := s.store.Listing(ctx, listingID)
	if err != nil {
		metrics.ObserveQuery("listing", started, 0, errorKind(err))
		return nil, fmt.Errorf("listing %s: %w", listingID, err)
	}
	if !found {
		metrics.ObserveQuery("listing", started, 0, "")
		return nil, fmt.Errorf("%w: listing %s", ErrNotFound, listingID)
	}
	metrics.ObserveQuery("listing", started, 1, "")
	p := property.Map(row, s.today())
	return &p, nil
}

// Cities lists resolved cities with listing counts.
func (s *Service) Cities(ctx context.Context) ([]mls.CityCount, error) {
	started := time.Now()
	cities, err := s.store.CityCounts(ctx)
	if err != nil {
		metrics.ObserveQuery("cities", started, 0, errorKind(err))
		return nil, fmt.Errorf("cities: %w", err)
	}
	metrics.ObserveQuery("cities", started, len(cities), "")
	if cities == nil {
		cities = []mls.CityCount{}
	}
	return cities, nil
}

// logFailure logs err unless it is a caller error.
func (s *Service) logFailure(msg string, err error, fields ...zap.Field) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidFilterType) || errors.Is(err, ErrInvalidParams) {
		return
	}
	s.logger.Warn(msg, append(fields, zap.Error(err))...)
}
