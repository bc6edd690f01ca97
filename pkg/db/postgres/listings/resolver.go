package listings

import (
	"fmt"
	"strings"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/jackc/pgx/v5"
)

const listingAlias = "l"

// latestCTE collapses the raw table to one row per listing_id: the row with
// the greatest timestamp. ctid breaks timestamp ties; rows are never updated
// in place, so it is stable. Rows without a listing_id never leave the CTE.
func latestCTE(table string) string {
	return fmt.Sprintf(`latest_listings AS (
	SELECT t.*,
	       ROW_NUMBER() OVER (
	         PARTITION BY t.listing_id
	         ORDER BY t."timestamp" DESC NULLS LAST, t.ctid DESC
	       ) AS rn
	FROM %s t
	WHERE t.listing_id IS NOT NULL
)`, table)
}

// currentRows restricts the CTE to the resolved row of each listing.
func currentRows() Expr {
	return SQL(col("rn") + " = 1")
}

// col qualifies a listing column.
func col(name string) string {
	if name == "timestamp" || name == "view" {
		return listingAlias + "." + pgx.Identifier{name}.Sanitize()
	}
	return listingAlias + "." + name
}

// snapshotSelectList reads every snapshot column as text, NULL as ''.
func snapshotSelectList() string {
	cols := make([]string, len(mls.SnapshotColumns))
	for i, name := range mls.SnapshotColumns {
		quoted := pgx.Identifier{name}.Sanitize()
		cols[i] = fmt.Sprintf("COALESCE(%s.%s::text, '') AS %s", listingAlias, quoted, quoted)
	}
	return strings.Join(cols, ",\n       ")
}

// resolvedFrom starts a statement at "WITH latest_listings AS (...) SELECT
// <select> FROM latest_listings l".
func (db *DB) resolvedFrom(b *Builder, selectList string) *Builder {
	return b.SQL("WITH ").SQL(latestCTE(db.listingsTable())).
		SQL("\nSELECT ").SQL(selectList).
		SQL("\nFROM latest_listings ").SQL(listingAlias)
}
