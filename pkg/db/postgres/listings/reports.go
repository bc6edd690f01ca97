package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Kind is a report kind.
type Kind string

const (
	KindActive        Kind = "active-listings"
	KindRecentSales   Kind = "recent-sales"
	KindUnderContract Kind = "under-contract"
	KindComingSoon    Kind = "coming-soon"
	KindPriceChanges  Kind = "price-changes"
	KindStats         Kind = "stats"
)

// ListKinds are the kinds that return rows, in dashboard order.
var ListKinds = []Kind{KindActive, KindRecentSales, KindUnderContract, KindComingSoon, KindPriceChanges}

// ParseKind accepts a report kind as it appears in URLs.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindActive, KindRecentSales, KindUnderContract, KindComingSoon, KindPriceChanges, KindStats:
		return k, true
	}
	return "", false
}

const DefaultLimit = 50

var errNoKind = errors.New("unknown report kind")

// ReportQuery is one report request after area resolution.
type ReportQuery struct {
	Kind     Kind
	Area     *areas.Profile
	Limit    int
	MinPrice *float64
	MaxPrice *float64
	// AsOf is "today"; trailing windows end on its date.
	AsOf       time.Time
	WindowDays int
}

func (q ReportQuery) windowStart() time.Time {
	days := q.WindowDays
	if days <= 0 {
		days = 30
	}
	y, m, d := q.AsOf.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
}

func (q ReportQuery) today() time.Time {
	y, m, d := q.AsOf.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (q ReportQuery) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// kindSpec is the per-kind part of a list report.
type kindSpec struct {
	// where returns the status and date predicates.
	where func(q ReportQuery) Expr
	// priceColumn is the column caller price bounds apply to.
	priceColumn string
	// orderBy is the date expression sorted descending.
	orderBy string
}

var kindSpecs = map[Kind]kindSpec{
	KindActive: {
		where:       func(ReportQuery) Expr { return statusIs(mls.StatusActive) },
		priceColumn: "list_price",
		orderBy:     castDate(col("listing_date")),
	},
	KindRecentSales: {
		where: func(q ReportQuery) Expr {
			return And(statusIs(mls.StatusClosed), E(castDate(col("sold_date"))+" >= ", Arg(q.windowStart()), "::date"))
		},
		priceColumn: "sold_price",
		orderBy:     castDate(col("sold_date")),
	},
	KindUnderContract: {
		where:       func(ReportQuery) Expr { return statusIn(mls.StatusActiveUnderContract, mls.StatusPending) },
		priceColumn: "list_price",
		orderBy:     castDate(col("under_contract_date")),
	},
	KindComingSoon: {
		where:       func(ReportQuery) Expr { return statusIs(mls.StatusComingSoon) },
		priceColumn: "list_price",
		orderBy:     castDate(col("listing_date")),
	},
	KindPriceChanges: {
		where:       priceChangeCondition,
		priceColumn: "list_price",
		orderBy:     castTimestamp(col("price_change_timestamp")),
	},
}

func statusIs(status string) Expr {
	return SQL(col("status") + " = " + literal(status))
}

func statusIn(statuses ...string) Expr {
	return SQL(col("status") + " IN (" + literalList(statuses...) + ")")
}

// priceChangeCondition selects active listings whose price changed inside the
// window. prior_list_price and list_price are compared as text.
func priceChangeCondition(q ReportQuery) Expr {
	prior := col("prior_list_price")
	return And(
		statusIs(mls.StatusActive),
		E(castTimestamp(col("price_change_timestamp"))+" >= ", Arg(q.windowStart()), "::timestamp"),
		SQL(prior+" IS NOT NULL AND "+prior+" <> '' AND "+prior+" <> "+col("list_price")),
	)
}

// priceBounds applies caller bounds to one price column.
func priceBounds(column string, min, max *float64) Expr {
	var exprs []Expr
	if min != nil {
		exprs = append(exprs, Predicate{Column: col(column), Op: OpGte, Value: *min, Match: MatchNumeric}.Expr())
	}
	if max != nil {
		exprs = append(exprs, Predicate{Column: col(column), Op: OpLte, Value: *max, Match: MatchNumeric}.Expr())
	}
	return And(exprs...)
}

// BuildReport assembles the single statement for a list report.
func (db *DB) BuildReport(q ReportQuery) (string, []any, error) {
	spec, ok := kindSpecs[q.Kind]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", errNoKind, q.Kind)
	}
	filter, err := CompileArea(q.Area)
	if err != nil {
		return "", nil, err
	}

	b := &Builder{}
	db.resolvedFrom(b, snapshotSelectList())
	area := db.areaScope(b, filter)
	b.Where(currentRows(), area, spec.where(q), priceBounds(spec.priceColumn, q.MinPrice, q.MaxPrice))
	b.SQL("\nORDER BY " + spec.orderBy + " DESC NULLS LAST, " + col("listing_id"))
	b.SQL("\nLIMIT ").Arg(q.limit())

	sql, args := b.Build()
	return sql, args, nil
}

// Report runs a list report and returns the resolved rows.
func (db *DB) Report(ctx context.Context, q ReportQuery) ([]mls.Snapshot, error) {
	sql, args, err := db.BuildReport(q)
	if err != nil {
		return nil, err
	}
	db.Logger.Debug("Running report query", zap.String("report", string(q.Kind)), zap.String("sql", sql), zap.Int("params", len(args)))
	return db.scanSnapshots(ctx, "report_"+string(q.Kind), sql, args, q.limit())
}

func (db *DB) scanSnapshots(ctx context.Context, op, sql string, args []any, sizeHint int) ([]mls.Snapshot, error) {
	rows := make([]mls.Snapshot, 0, sizeHint)
	err := db.QueryFunc(ctx, op, sql, args, func(r pgx.Rows) error {
		var s mls.Snapshot
		if err := r.Scan(s.ScanTargets()...); err != nil {
			return err
		}
		rows = append(rows, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Listing returns the resolved row of one listing.
func (db *DB) Listing(ctx context.Context, listingID string) (mls.Snapshot, bool, error) {
	b := &Builder{}
	db.resolvedFrom(b, snapshotSelectList())
	b.Where(currentRows(), E(col("listing_id")+"::text = ", Arg(listingID)))
	b.SQL("\nLIMIT 1")
	sql, args := b.Build()

	var s mls.Snapshot
	found, err := db.QueryOne(ctx, "listing", sql, args, func(r pgx.Row) error {
		return r.Scan(s.ScanTargets()...)
	})
	return s, found, err
}
