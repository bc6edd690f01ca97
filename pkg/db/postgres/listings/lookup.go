package listings

import (
	"context"
	"fmt"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/jackc/pgx/v5"
)

// areaColumn returns the table and column holding names of an area type.
func (db *DB) areaColumn(t areas.Type) (table, column string, ok bool) {
	switch t {
	case areas.TypeCity:
		return db.listingsTable(), "city", true
	case areas.TypeDevelopment:
		return db.developmentsTable(), "development_name", true
	case areas.TypeSubdivision:
		return db.developmentsTable(), "subdivision_name", true
	case areas.TypeZone:
		return db.developmentsTable(), "zone_name", true
	case areas.TypeRegion:
		return db.developmentsTable(), "region_name", true
	}
	return "", "", false
}

func (db *DB) buildLookup(t areas.Type, slug string) (string, []any, bool) {
	table, column, ok := db.areaColumn(t)
	if !ok {
		return "", nil, false
	}
	// The most common spelling wins when the feed stores several casings.
	b := &Builder{}
	b.SQL(fmt.Sprintf("SELECT TRIM(%[1]s) FROM %[2]s WHERE %[1]s IS NOT NULL AND LOWER(REPLACE(TRIM(%[1]s), ' ', '-')) = LOWER(", column, table)).
		Arg(slug).
		SQL(fmt.Sprintf(") GROUP BY TRIM(%[1]s) ORDER BY COUNT(*) DESC, TRIM(%[1]s) LIMIT 1", column))
	sql, args := b.Build()
	return sql, args, true
}

// LookupArea finds the stored name of an area by slug. Lifestyle areas have
// no backing column and are never found here.
func (db *DB) LookupArea(ctx context.Context, t areas.Type, slug string) (string, bool, error) {
	sql, args, ok := db.buildLookup(t, slug)
	if !ok {
		return "", false, nil
	}
	var name string
	found, err := db.QueryOne(ctx, "lookup_"+string(t), sql, args, func(r pgx.Row) error {
		return r.Scan(&name)
	})
	if err != nil {
		return "", false, err
	}
	return name, found && name != "", nil
}

func (db *DB) buildCityCounts() string {
	b := &Builder{}
	b.SQL("WITH ").SQL(latestCTE(db.listingsTable())).
		SQL("\nSELECT MODE() WITHIN GROUP (ORDER BY TRIM(" + col("city") + ")) AS city,").
		SQL("\n       COUNT(CASE WHEN " + col("status") + " = " + literal(mls.StatusActive) + " THEN 1 END) AS active,").
		SQL("\n       COUNT(*) AS total").
		SQL("\nFROM latest_listings " + listingAlias).
		Where(currentRows(), SQL("NULLIF(TRIM("+col("city")+"), '') IS NOT NULL")).
		SQL("\nGROUP BY LOWER(TRIM(" + col("city") + "))").
		SQL("\nORDER BY city")
	sql, _ := b.Build()
	return sql
}

// CityCounts lists resolved cities with listing counts. Cities stored with
// different casing are merged.
func (db *DB) CityCounts(ctx context.Context) ([]mls.CityCount, error) {
	var out []mls.CityCount
	err := db.QueryFunc(ctx, "city_counts", db.buildCityCounts(), nil, func(r pgx.Rows) error {
		var c mls.CityCount
		if err := r.Scan(&c.City, &c.Active, &c.Total); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// DistinctCities implements areas.Lookuper.
func (db *DB) DistinctCities(ctx context.Context) ([]string, error) {
	counts, err := db.CityCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.City
	}
	return out, nil
}

var _ areas.Lookuper = (*DB)(nil)
