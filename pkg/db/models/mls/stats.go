package mls

// StatsRow is the single row returned by the market stats aggregate.
// Averages and extremes are NULL when no row qualifies.
type StatsRow struct {
	ActiveListings         int64    `db:"active_listings"`
	SalesLastWindow        int64    `db:"sales_last_window"`
	UnderContract          int64    `db:"under_contract"`
	ComingSoon             int64    `db:"coming_soon"`
	PriceChangesLastWindow int64    `db:"price_changes_last_window"`
	AvgDaysOnMarket        *float64 `db:"avg_days_on_market"`
	AvgSoldPrice           *float64 `db:"avg_sold_price"`
	AvgListPrice           *float64 `db:"avg_list_price"`
	MinListPrice           *float64 `db:"min_list_price"`
	MaxListPrice           *float64 `db:"max_list_price"`
}

func (s *StatsRow) ScanTargets() []any {
	return []any{
		&s.ActiveListings,
		&s.SalesLastWindow,
		&s.UnderContract,
		&s.ComingSoon,
		&s.PriceChangesLastWindow,
		&s.AvgDaysOnMarket,
		&s.AvgSoldPrice,
		&s.AvgListPrice,
		&s.MinListPrice,
		&s.MaxListPrice,
	}
}

// CityCount is one distinct resolved city with its active listing count.
type CityCount struct {
	City   string `db:"city" json:"city"`
	Active int64  `db:"active" json:"active"`
	Total  int64  `db:"total" json:"total"`
}
