package listings

import (
	"fmt"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/models/mls"
)

const developmentAlias = "dev"

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Match says how a predicate compares its column.
type Match int

const (
	// MatchExact compares the stored text as is.
	MatchExact Match = iota
	// MatchFold compares case-insensitively with surrounding spaces ignored.
	MatchFold
	// MatchNumeric casts the stored text through the numeric guard.
	MatchNumeric
)

// Predicate is one (field, operator, value) condition.
type Predicate struct {
	Column string
	Op     Op
	Value  any
	Match  Match
}

// Expr renders the predicate with its value bound.
func (p Predicate) Expr() Expr {
	switch p.Match {
	case MatchFold:
		return E("LOWER(TRIM("+p.Column+")) "+string(p.Op)+" LOWER(TRIM(", Arg(p.Value), "))")
	case MatchNumeric:
		return E(castNumeric(p.Column)+" "+string(p.Op)+" ", Arg(p.Value))
	default:
		return E(p.Column+" "+string(p.Op)+" ", Arg(p.Value))
	}
}

// AreaFilter is a compiled area profile.
type AreaFilter struct {
	// JoinRequired means the predicates reference development records.
	JoinRequired bool
	Predicates   []Predicate
}

// Expr is the conjunction of the predicates.
func (f AreaFilter) Expr() Expr {
	exprs := make([]Expr, len(f.Predicates))
	for i, p := range f.Predicates {
		exprs[i] = p.Expr()
	}
	return And(exprs...)
}

// Params is how many positional parameters the filter consumes.
func (f AreaFilter) Params() int {
	return len(f.Predicates)
}

// Render renders the filter with placeholders starting at $offset+1 and
// returns the next free offset.
func (f AreaFilter) Render(offset int) (string, []any, int) {
	return Render(f.Expr(), offset)
}

// CompileArea turns a profile into predicates. A nil profile means no area
// restriction.
func CompileArea(profile *areas.Profile) (AreaFilter, error) {
	if profile == nil {
		return AreaFilter{}, nil
	}
	if err := profile.Validate(); err != nil {
		return AreaFilter{}, fmt.Errorf("compile area %s: %w", profile.ID, err)
	}

	// City is compared as stored; slugs are resolved before a profile is built.
	f := AreaFilter{JoinRequired: profile.Type.RequiresDevelopmentJoin()}
	fl := profile.Filters
	if fl.City != "" {
		f.Predicates = append(f.Predicates, Predicate{Column: col("city"), Op: OpEq, Value: fl.City, Match: MatchFold})
	}
	for _, dev := range []struct{ column, value string }{
		{"development_name", fl.DevelopmentName},
		{"subdivision_name", fl.SubdivisionName},
		{"zone_name", fl.ZoneName},
		{"region_name", fl.RegionName},
	} {
		if dev.value == "" {
			continue
		}
		f.JoinRequired = true
		f.Predicates = append(f.Predicates, Predicate{Column: developmentAlias + "." + dev.column, Op: OpEq, Value: dev.value, Match: MatchFold})
	}
	if fl.Waterfront {
		f.Predicates = append(f.Predicates, Predicate{Column: col("waterfront"), Op: OpEq, Value: mls.YesValue})
	}
	if fl.MinPrice != nil {
		f.Predicates = append(f.Predicates, Predicate{Column: col("list_price"), Op: OpGte, Value: *fl.MinPrice, Match: MatchNumeric})
	}
	if fl.MaxPrice != nil {
		f.Predicates = append(f.Predicates, Predicate{Column: col("list_price"), Op: OpLte, Value: *fl.MaxPrice, Match: MatchNumeric})
	}
	return f, nil
}

// normalizedAddress is the listing-side address used when parcel_id is
// missing: street number and name, trimmed, inner whitespace collapsed.
func normalizedAddress(number, name string) string {
	return fmt.Sprintf(`LOWER(REGEXP_REPLACE(TRIM(COALESCE(%s, '') || ' ' || COALESCE(%s, '')), '\s+', ' ', 'g'))`, number, name)
}

// developmentJoin attaches at most one development record to each listing.
// parcel_id is matched when present; otherwise the normalized street address
// is compared to property_address_line_1. When several records match, the
// first in (development_name, property_address_line_1) order wins. Address
// matching is approximate and silently finds nothing for some listings.
func (db *DB) developmentJoin() string {
	parcel := col("parcel_id")
	return fmt.Sprintf(`
LEFT JOIN LATERAL (
	SELECT d.development_name, d.subdivision_name, d.zone_name, d.region_name
	FROM %[1]s d
	WHERE (NULLIF(TRIM(%[2]s), '') IS NOT NULL AND d.parcel_number = TRIM(%[2]s))
	   OR (NULLIF(TRIM(%[2]s), '') IS NULL
	       AND %[3]s = LOWER(REGEXP_REPLACE(TRIM(d.property_address_line_1), '\s+', ' ', 'g')))
	ORDER BY d.development_name NULLS LAST, d.property_address_line_1 NULLS LAST
	LIMIT 1
) %[4]s ON TRUE`, db.developmentsTable(), parcel, normalizedAddress(col("street_number"), col("street_name")), developmentAlias)
}

// areaScope adds the join, when needed, to b and returns the area condition.
func (db *DB) areaScope(b *Builder, f AreaFilter) Expr {
	if f.JoinRequired {
		b.SQL(db.developmentJoin())
	}
	return f.Expr()
}
