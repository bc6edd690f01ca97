package listings

import (
	"strings"
	"testing"
	"time"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, 6, 30, 15, 4, 5, 0, time.UTC)

func testDB() *DB {
	return NewWithClient(nil, Tables{}, nil)
}

func ptr(f float64) *float64 { return &f }

func cityProfile(name string) *areas.Profile {
	p := areas.NewProfile(areas.Slugify(name), areas.TypeCity, name)
	return &p
}

func TestCompileArea(t *testing.T) {
	f, err := CompileArea(nil)
	require.NoError(t, err)
	assert.False(t, f.JoinRequired)
	assert.Zero(t, f.Params())

	f, err = CompileArea(cityProfile("Jupiter"))
	require.NoError(t, err)
	assert.False(t, f.JoinRequired)
	sql, args, next := f.Render(2)
	assert.Equal(t, "(LOWER(TRIM(l.city)) = LOWER(TRIM($3)))", sql)
	assert.Equal(t, []any{"Jupiter"}, args)
	assert.Equal(t, 3, next)

	dev := areas.NewProfile("admirals-cove", areas.TypeDevelopment, "Admirals Cove")
	f, err = CompileArea(&dev)
	require.NoError(t, err)
	assert.True(t, f.JoinRequired)
	sql, args, _ = f.Render(0)
	assert.Equal(t, "(LOWER(TRIM(dev.development_name)) = LOWER(TRIM($1)))", sql)
	assert.Equal(t, []any{"Admirals Cove"}, args)

	lifestyle := areas.Profile{
		ID:   "jupiter-luxury",
		Type: areas.TypeLifestyle,
		Filters: areas.Filters{
			City:       "Jupiter",
			Waterfront: true,
			MinPrice:   ptr(2000000),
		},
	}
	f, err = CompileArea(&lifestyle)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Params())
	sql, args, _ = f.Render(0)
	assert.Contains(t, sql, "l.waterfront = $2")
	assert.Contains(t, sql, "::numeric END) >= $3")
	assert.Equal(t, []any{"Jupiter", "Yes", 2000000.0}, args)

	// Zone profiles join even when loaded with extra city filters.
	zone := areas.Profile{ID: "north", Type: areas.TypeZone, Filters: areas.Filters{City: "Jupiter", ZoneName: "North"}}
	f, err = CompileArea(&zone)
	require.NoError(t, err)
	assert.True(t, f.JoinRequired)
}

func TestCompileAreaKeepsHyphenatedCity(t *testing.T) {
	for _, name := range []string{"Lauderdale-By-The-Sea", "Port St. Lucie", "Hobe Sound"} {
		f, err := CompileArea(cityProfile(name))
		require.NoError(t, err)
		_, args, _ := f.Render(0)
		assert.Equal(t, []any{name}, args, name)
	}
}

func TestCompileAreaRejectsInvalidProfile(t *testing.T) {
	_, err := CompileArea(&areas.Profile{ID: "x", Type: "bogus"})
	require.ErrorIs(t, err, areas.ErrInvalidType)

	_, err = CompileArea(&areas.Profile{ID: "x", Type: areas.TypeZone})
	require.Error(t, err)
}

func TestBuildReportRecentSales(t *testing.T) {
	sql, args, err := testDB().BuildReport(ReportQuery{
		Kind:     KindRecentSales,
		Area:     cityProfile("Jupiter"),
		MinPrice: ptr(500000),
		AsOf:     asOf,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "WITH latest_listings AS ("))
	assert.Contains(t, sql, `FROM "mls"."beaches_residential" t`)
	assert.Contains(t, sql, "PARTITION BY t.listing_id")
	assert.Contains(t, sql, "(l.rn = 1) AND ((LOWER(TRIM(l.city)) = LOWER(TRIM($1))))")
	assert.Contains(t, sql, "l.status = 'Closed'")
	assert.Contains(t, sql, castDate(col("sold_date"))+" >= $2::date")
	assert.Contains(t, sql, "REPLACE(REPLACE(l.sold_price, ',', ''), '$', '')::numeric END) >= $3")
	assert.Contains(t, sql, "LIMIT $4")
	assert.NotContains(t, sql, "LEFT JOIN LATERAL")
	assert.NotContains(t, sql, "$5")

	assert.Equal(t, []any{"Jupiter", time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), 500000.0, 10}, args)
}

func TestBuildReportKinds(t *testing.T) {
	cases := []struct {
		kind     Kind
		contains []string
	}{
		{KindActive, []string{"l.status = 'Active'", castDate(col("listing_date")) + " DESC NULLS LAST"}},
		{KindUnderContract, []string{"l.status IN ('Active Under Contract', 'Pending')", castDate(col("under_contract_date")) + " DESC"}},
		{KindComingSoon, []string{"l.status = 'Coming Soon'"}},
		{KindPriceChanges, []string{
			"l.status = 'Active'",
			castTimestamp(col("price_change_timestamp")) + " >= $1::timestamp",
			"l.prior_list_price <> l.list_price",
			"l.prior_list_price <> ''",
		}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			sql, args, err := testDB().BuildReport(ReportQuery{Kind: tc.kind, AsOf: asOf})
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, sql, s)
			}
			assert.Equal(t, DefaultLimit, args[len(args)-1])
		})
	}
}

func TestBuildReportDevelopmentJoin(t *testing.T) {
	dev := areas.NewProfile("alicante", areas.TypeDevelopment, "Alicante")
	db := NewWithClient(nil, Tables{Listings: "listings", Developments: "ref.devs"}, nil)
	sql, args, err := db.BuildReport(ReportQuery{Kind: KindActive, Area: &dev, AsOf: asOf})
	require.NoError(t, err)

	assert.Contains(t, sql, `FROM "listings" t`)
	assert.Contains(t, sql, `LEFT JOIN LATERAL (`)
	assert.Contains(t, sql, `FROM "ref"."devs" d`)
	assert.Contains(t, sql, "d.parcel_number = TRIM(l.parcel_id)")
	assert.Contains(t, sql, "LIMIT 1\n) dev ON TRUE")
	// The join sits between FROM and WHERE.
	assert.Less(t, strings.Index(sql, "LEFT JOIN LATERAL"), strings.Index(sql, " WHERE (l.rn = 1)"))
	assert.Equal(t, []any{"Alicante", DefaultLimit}, args)
}

func TestBuildReportUnknownKind(t *testing.T) {
	_, _, err := testDB().BuildReport(ReportQuery{Kind: KindStats})
	require.ErrorIs(t, err, errNoKind)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("price-changes")
	assert.True(t, ok)
	assert.Equal(t, KindPriceChanges, k)
	_, ok = ParseKind("nope")
	assert.False(t, ok)
}

func TestWindowStartDefaults(t *testing.T) {
	q := ReportQuery{AsOf: asOf}
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), q.windowStart())
	q.WindowDays = 7
	assert.Equal(t, time.Date(2024, 6, 23, 0, 0, 0, 0, time.UTC), q.windowStart())
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), q.today())
}

func TestBuildStats(t *testing.T) {
	sql, args, err := testDB().BuildStats(ReportQuery{AsOf: asOf})
	require.NoError(t, err)

	assert.Contains(t, sql, "scoped AS (")
	assert.Contains(t, sql, "THEN $1::date - ")
	assert.Contains(t, sql, "sold_on >= $2::date THEN 1 END) AS sales_last_window")
	assert.Contains(t, sql, "price_changed_at >= $3::timestamp")
	assert.Contains(t, sql, "sold_on >= $4::date THEN sold_price END)::float8 AS avg_sold_price")
	assert.Contains(t, sql, "calculated_days_on_market > 0")
	assert.Contains(t, sql, "MAX(CASE WHEN status = 'Active' THEN list_price END)::float8 AS max_list_price")

	today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	since := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []any{today, since, since, since}, args)
}

func TestBuildStatsPriceBoundsByStatus(t *testing.T) {
	sql, args, err := testDB().BuildStats(ReportQuery{
		Area:     cityProfile("Juno Beach"),
		MaxPrice: ptr(1000000),
		AsOf:     asOf,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "LOWER(TRIM(l.city)) = LOWER(TRIM($2))")
	assert.Contains(t, sql, "((l.status = 'Closed') AND ((")
	assert.Contains(t, sql, "l.sold_price")
	assert.Contains(t, sql, "l.status <> 'Closed'")
	require.Len(t, args, 7)
	assert.Equal(t, "Juno Beach", args[1])
	assert.Equal(t, 1000000.0, args[2])
	assert.Equal(t, 1000000.0, args[3])
}

func TestBuildSearch(t *testing.T) {
	beds := 3
	sql, args, err := testDB().BuildSearch(SearchQuery{
		Area:       cityProfile("Tequesta"),
		MinBeds:    &beds,
		MaxPrice:   ptr(900000),
		HasPool:    true,
		Waterfront: true,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "(l.status = $1)")
	assert.Contains(t, sql, "l.private_pool = $4")
	assert.Contains(t, sql, "l.waterfront = $5")
	assert.Contains(t, sql, "LOWER(TRIM(l.city)) = LOWER(TRIM($6))")
	assert.Contains(t, sql, "LIMIT $7")
	assert.Equal(t, []any{"Active", 900000.0, 3, "Yes", "Yes", "Tequesta", DefaultLimit}, args)
}

func TestBuildLookup(t *testing.T) {
	db := testDB()
	sql, args, ok := db.buildLookup(areas.TypeCity, "juno-beach")
	require.True(t, ok)
	assert.Contains(t, sql, `FROM "mls"."beaches_residential"`)
	assert.Contains(t, sql, "LOWER(REPLACE(TRIM(city), ' ', '-')) = LOWER($1)")
	assert.Contains(t, sql, "ORDER BY COUNT(*) DESC")
	assert.Equal(t, []any{"juno-beach"}, args)

	sql, _, ok = db.buildLookup(areas.TypeZone, "center-street-canals")
	require.True(t, ok)
	assert.Contains(t, sql, `FROM "waterfrontdata"."development_data"`)
	assert.Contains(t, sql, "zone_name")

	_, _, ok = db.buildLookup(areas.TypeLifestyle, "jupiter-luxury")
	assert.False(t, ok)
}

func TestBuildCityCounts(t *testing.T) {
	sql := testDB().buildCityCounts()
	assert.Contains(t, sql, "MODE() WITHIN GROUP")
	assert.Contains(t, sql, "GROUP BY LOWER(TRIM(l.city))")
	assert.NotContains(t, sql, "$1")
}

func TestIndexStatement(t *testing.T) {
	specs := testDB().indexSpecs()
	require.Len(t, specs, 5)
	assert.Equal(t,
		`CREATE INDEX IF NOT EXISTS "beaches_residential_listing_ts_idx" ON "mls"."beaches_residential" (listing_id, "timestamp" DESC)`,
		indexStatement(specs[0]))
	assert.Contains(t, indexStatement(specs[4]), `ON "waterfrontdata"."development_data" (parcel_number)`)
}

func TestSplitTable(t *testing.T) {
	s, n := splitTable("mls.beaches_residential")
	assert.Equal(t, "mls", s)
	assert.Equal(t, "beaches_residential", n)
	s, n = splitTable("listings")
	assert.Equal(t, "public", s)
	assert.Equal(t, "listings", n)
}
