package report

import (
	"time"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/shopspring/decimal"
)

// MarketStats is the stats report. Averages and extremes are rounded to
// whole numbers and are 0 when nothing qualifies.
type MarketStats struct {
	TotalActiveListings     int64     `json:"totalActiveListings"`
	TotalSalesLast30Days    int64     `json:"totalSalesLast30Days"`
	TotalUnderContract      int64     `json:"totalUnderContract"`
	TotalComingSoon         int64     `json:"totalComingSoon"`
	TotalPriceChangesLast30 int64     `json:"totalPriceChangesLast30Days"`
	AverageDaysOnMarket     int64     `json:"averageDaysOnMarket"`
	AverageSoldPrice        int64     `json:"averageSoldPrice"`
	AverageListPrice        int64     `json:"averageListPrice"`
	MinListPrice            int64     `json:"minListPrice"`
	MaxListPrice            int64     `json:"maxListPrice"`
	LastUpdated             time.Time `json:"lastUpdated"`
}

func round(v *float64) int64 {
	if v == nil {
		return 0
	}
	return decimal.NewFromFloat(*v).Round(0).IntPart()
}

func newMarketStats(row mls.StatsRow, now time.Time) MarketStats {
	return MarketStats{
		TotalActiveListings:     row.ActiveListings,
		TotalSalesLast30Days:    row.SalesLastWindow,
		TotalUnderContract:      row.UnderContract,
		TotalComingSoon:         row.ComingSoon,
		TotalPriceChangesLast30: row.PriceChangesLastWindow,
		AverageDaysOnMarket:     round(row.AvgDaysOnMarket),
		AverageSoldPrice:        round(row.AvgSoldPrice),
		AverageListPrice:        round(row.AvgListPrice),
		MinListPrice:            round(row.MinListPrice),
		MaxListPrice:            round(row.MaxListPrice),
		LastUpdated:             now.UTC(),
	}
}
