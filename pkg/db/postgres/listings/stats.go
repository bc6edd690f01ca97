package listings

import (
	"context"
	"fmt"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// daysOnMarketExpr mirrors property.DaysOnMarket in SQL. today is a bound
// date so the aggregate and the row mapper share one clock.
func daysOnMarketExpr(today Expr) Expr {
	listed := castDate(col("listing_date"))
	sold := castDate(col("sold_date"))
	contract := castDate(col("under_contract_date"))
	return E(
		"CASE",
		"\n\t\tWHEN "+col("status")+" = "+literal(mls.StatusClosed)+" AND "+sold+" IS NOT NULL AND "+listed+" IS NOT NULL",
		"\n\t\tTHEN "+sold+" - "+listed,
		"\n\t\tWHEN "+col("status")+" IN ("+literalList(mls.StatusActiveUnderContract, mls.StatusPending)+") AND "+contract+" IS NOT NULL AND "+listed+" IS NOT NULL",
		"\n\t\tTHEN "+contract+" - "+listed,
		"\n\t\tWHEN "+col("status")+" = "+literal(mls.StatusActive)+" AND "+listed+" IS NOT NULL",
		"\n\t\tTHEN ", today, "::date - "+listed,
		"\n\tEND",
	)
}

// statsPriceBounds applies caller bounds to sold_price for closed listings
// and to list_price for everything else.
func statsPriceBounds(q ReportQuery) Expr {
	if q.MinPrice == nil && q.MaxPrice == nil {
		return Expr{}
	}
	return Or(
		And(statusIs(mls.StatusClosed), priceBounds("sold_price", q.MinPrice, q.MaxPrice)),
		And(SQL(col("status")+" <> "+literal(mls.StatusClosed)), priceBounds("list_price", q.MinPrice, q.MaxPrice)),
	)
}

// BuildStats assembles the market stats aggregate. Resolution, filtering and
// every bucket are computed in one statement so the counts agree with each
// other.
func (db *DB) BuildStats(q ReportQuery) (string, []any, error) {
	filter, err := CompileArea(q.Area)
	if err != nil {
		return "", nil, err
	}

	since := Arg(q.windowStart())
	b := &Builder{}
	b.SQL("WITH ").SQL(latestCTE(db.listingsTable())).SQL(",\nscoped AS (\n\tSELECT ")
	b.SQL(fmt.Sprintf("%s AS status, %s AS list_price, %s AS sold_price, %s AS sold_on, %s AS price_changed_at, %s AS prior_list_price, %s AS raw_list_price,\n\t",
		col("status"),
		castNumeric(col("list_price")),
		castNumeric(col("sold_price")),
		castDate(col("sold_date")),
		castTimestamp(col("price_change_timestamp")),
		col("prior_list_price"),
		col("list_price"),
	))
	b.Expr(daysOnMarketExpr(Arg(q.today()))).SQL(" AS calculated_days_on_market")
	b.SQL("\n\tFROM latest_listings ").SQL(listingAlias)
	area := db.areaScope(b, filter)
	b.Where(currentRows(), area, statsPriceBounds(q))
	b.SQL("\n)\nSELECT\n\t")

	closedInWindow := E("status = "+literal(mls.StatusClosed)+" AND sold_on >= ", since, "::date")
	b.SQL("COUNT(CASE WHEN status = " + literal(mls.StatusActive) + " THEN 1 END) AS active_listings,\n\t")
	b.SQL("COUNT(CASE WHEN ").Expr(closedInWindow).SQL(" THEN 1 END) AS sales_last_window,\n\t")
	b.SQL("COUNT(CASE WHEN status IN (" + literalList(mls.StatusActiveUnderContract, mls.StatusPending) + ") THEN 1 END) AS under_contract,\n\t")
	b.SQL("COUNT(CASE WHEN status = " + literal(mls.StatusComingSoon) + " THEN 1 END) AS coming_soon,\n\t")
	b.SQL("COUNT(CASE WHEN status = " + literal(mls.StatusActive) + " AND price_changed_at >= ").Expr(since).
		SQL("::timestamp AND prior_list_price IS NOT NULL AND prior_list_price <> '' AND prior_list_price <> raw_list_price THEN 1 END) AS price_changes_last_window,\n\t")
	b.SQL("AVG(CASE WHEN status = " + literal(mls.StatusActive) + " AND calculated_days_on_market > 0 THEN calculated_days_on_market END)::float8 AS avg_days_on_market,\n\t")
	b.SQL("AVG(CASE WHEN ").Expr(closedInWindow).SQL(" THEN sold_price END)::float8 AS avg_sold_price,\n\t")
	b.SQL("AVG(CASE WHEN status = " + literal(mls.StatusActive) + " THEN list_price END)::float8 AS avg_list_price,\n\t")
	b.SQL("MIN(CASE WHEN status = " + literal(mls.StatusActive) + " THEN list_price END)::float8 AS min_list_price,\n\t")
	b.SQL("MAX(CASE WHEN status = " + literal(mls.StatusActive) + " THEN list_price END)::float8 AS max_list_price")
	b.SQL("\nFROM scoped")

	sql, args := b.Build()
	return sql, args, nil
}

// Stats runs the market stats aggregate. An area with no listings yields
// zero counts and NULL averages.
func (db *DB) Stats(ctx context.Context, q ReportQuery) (mls.StatsRow, error) {
	q.Kind = KindStats
	sql, args, err := db.BuildStats(q)
	if err != nil {
		return mls.StatsRow{}, err
	}
	db.Logger.Debug("Running stats query", zap.String("sql", sql), zap.Int("params", len(args)))

	var row mls.StatsRow
	_, err = db.QueryOne(ctx, "report_stats", sql, args, func(r pgx.Row) error {
		return r.Scan(row.ScanTargets()...)
	})
	return row, err
}
