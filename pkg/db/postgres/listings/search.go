package listings

import (
	"context"
	"strings"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
)

// SearchQuery filters resolved listings on property attributes.
type SearchQuery struct {
	Area       *areas.Profile
	Status     string // defaults to Active
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

func numericBound(column string, op Op, v any) Expr {
	return Predicate{Column: col(column), Op: op, Value: v, Match: MatchNumeric}.Expr()
}

// BuildSearch assembles the property search statement.
func (db *DB) BuildSearch(q SearchQuery) (string, []any, error) {
	filter, err := CompileArea(q.Area)
	if err != nil {
		return "", nil, err
	}

	status := strings.TrimSpace(q.Status)
	if status == "" {
		status = mls.StatusActive
	}

	conds := []Expr{currentRows(), E(col("status")+" = ", Arg(status))}
	if q.MinPrice != nil {
		conds = append(conds, numericBound("list_price", OpGte, *q.MinPrice))
	}
	if q.MaxPrice != nil {
		conds = append(conds, numericBound("list_price", OpLte, *q.MaxPrice))
	}
	if q.MinBeds != nil {
		conds = append(conds, numericBound("total_bedrooms", OpGte, *q.MinBeds))
	}
	if q.MaxBeds != nil {
		conds = append(conds, numericBound("total_bedrooms", OpLte, *q.MaxBeds))
	}
	if q.MinBaths != nil {
		conds = append(conds, numericBound("baths_total", OpGte, *q.MinBaths))
	}
	if q.MaxBaths != nil {
		conds = append(conds, numericBound("baths_total", OpLte, *q.MaxBaths))
	}
	if q.HasPool {
		conds = append(conds, E(col("private_pool")+" = ", Arg(mls.YesValue)))
	}
	if q.Waterfront {
		conds = append(conds, E(col("waterfront")+" = ", Arg(mls.YesValue)))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	b := &Builder{}
	db.resolvedFrom(b, snapshotSelectList())
	conds = append(conds, db.areaScope(b, filter))
	b.Where(conds...)
	b.SQL("\nORDER BY " + castDate(col("listing_date")) + " DESC NULLS LAST, " + col("listing_id"))
	b.SQL("\nLIMIT ").Arg(limit)

	sql, args := b.Build()
	return sql, args, nil
}

// Search runs a property search.
func (db *DB) Search(ctx context.Context, q SearchQuery) ([]mls.Snapshot, error) {
	sql, args, err := db.BuildSearch(q)
	if err != nil {
		return nil, err
	}
	return db.scanSnapshots(ctx, "search", sql, args, q.Limit)
}
