package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// indexSpec is a supporting index for the report queries.
type indexSpec struct {
	table   string
	suffix  string
	columns string
}

func (db *DB) indexSpecs() []indexSpec {
	return []indexSpec{
		{table: db.Tables.Listings, suffix: "listing_ts_idx", columns: `listing_id, "timestamp" DESC`},
		{table: db.Tables.Listings, suffix: "status_idx", columns: "status"},
		{table: db.Tables.Listings, suffix: "city_lower_idx", columns: "LOWER(TRIM(city))"},
		{table: db.Tables.Listings, suffix: "parcel_idx", columns: "parcel_id"},
		{table: db.Tables.Developments, suffix: "parcel_number_idx", columns: "parcel_number"},
	}
}

func indexStatement(spec indexSpec) string {
	_, table := splitTable(spec.table)
	name := pgx.Identifier{table + "_" + spec.suffix}.Sanitize()
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", name, ident(spec.table), spec.columns)
}

// EnsureIndexes creates the indexes the resolver and area join rely on.
// It needs CREATE privilege on both tables and is opt-in.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	for _, spec := range db.indexSpecs() {
		stmt := indexStatement(spec)
		if err := db.Exec(ctx, "ensure_index", stmt); err != nil {
			return fmt.Errorf("ensure index on %s(%s): %w", spec.table, spec.columns, err)
		}
		db.Logger.Info("Index ensured", zap.String("table", spec.table), zap.String("columns", spec.columns))
	}
	return nil
}

// IndexInfo is one existing index.
type IndexInfo struct {
	Table      string `json:"table"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Indexes lists the indexes currently defined on both source tables.
func (db *DB) Indexes(ctx context.Context) ([]IndexInfo, error) {
	var out []IndexInfo
	for _, table := range []string{db.Tables.Listings, db.Tables.Developments} {
		schema, name := splitTable(table)
		err := db.QueryFunc(ctx, "list_indexes",
			"SELECT indexname, indexdef FROM pg_indexes WHERE schemaname = $1 AND tablename = $2 ORDER BY indexname",
			[]any{schema, name},
			func(r pgx.Rows) error {
				info := IndexInfo{Table: table}
				if err := r.Scan(&info.Name, &info.Definition); err != nil {
					return err
				}
				out = append(out, info)
				return nil
			})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DedupSummary compares raw snapshot rows with resolved listings.
type DedupSummary struct {
	RawRows         int64            `json:"rawRows"`
	NullListingIDs  int64            `json:"nullListingIds"`
	DistinctListing int64            `json:"distinctListings"`
	ByStatus        map[string]int64 `json:"byStatus"`
}

// Dedup counts raw rows, rows without an id and resolved listings per status.
func (db *DB) Dedup(ctx context.Context) (DedupSummary, error) {
	summary := DedupSummary{ByStatus: map[string]int64{}}
	table := db.listingsTable()

	_, err := db.QueryOne(ctx, "dedup_totals",
		fmt.Sprintf("SELECT COUNT(*), COUNT(*) FILTER (WHERE listing_id IS NULL), COUNT(DISTINCT listing_id) FROM %s", table),
		nil,
		func(r pgx.Row) error {
			return r.Scan(&summary.RawRows, &summary.NullListingIDs, &summary.DistinctListing)
		})
	if err != nil {
		return summary, err
	}

	b := &Builder{}
	b.SQL("WITH ").SQL(latestCTE(table)).
		SQL("\nSELECT COALESCE(" + col("status") + ", ''), COUNT(*) FROM latest_listings " + listingAlias).
		Where(currentRows()).
		SQL("\nGROUP BY 1 ORDER BY 2 DESC")
	sql, _ := b.Build()

	err = db.QueryFunc(ctx, "dedup_status", sql, nil, func(r pgx.Rows) error {
		var status string
		var n int64
		if err := r.Scan(&status, &n); err != nil {
			return err
		}
		summary.ByStatus[strings.TrimSpace(status)] += n
		return nil
	})
	return summary, err
}
