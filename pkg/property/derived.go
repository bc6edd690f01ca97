package property

import (
	"time"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/shopspring/decimal"
)

// DefaultWindowDays is the trailing window for recent sales and price
// changes.
const DefaultWindowDays = 30

// DaysOnMarket computes whole days on market from the status-relevant end
// date. Missing dates give 0.
func DaysOnMarket(s mls.Snapshot, today time.Time) int {
	listed := Date(s.ListingDate)
	if listed == nil {
		return 0
	}

	var end *time.Time
	switch s.Status {
	case mls.StatusClosed:
		end = Date(s.SoldDate)
	case mls.StatusActiveUnderContract, mls.StatusPending:
		end = Date(s.UnderContractDate)
	case mls.StatusActive:
		t := civil(today)
		end = &t
	}
	if end == nil {
		return 0
	}
	return wholeDays(*listed, *end)
}

// wholeDays expects both times at UTC midnight.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// PriceDelta describes a list price change.
type PriceDelta struct {
	PreviousPrice      float64 `json:"previousPrice"`
	CurrentPrice       float64 `json:"currentPrice"`
	PriceChange        float64 `json:"priceChange"`
	PriceChangePercent float64 `json:"priceChangePercent"`
}

// PriceChange compares prior_list_price with list_price. The percentage is
// rounded to one decimal place and is 0 when there is no positive prior
// price.
func PriceChange(s mls.Snapshot) PriceDelta {
	previous := Float(s.PriorListPrice)
	current := Float(s.ListPrice)

	change := decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(previous))
	delta := PriceDelta{
		PreviousPrice: previous,
		CurrentPrice:  current,
		PriceChange:   change.InexactFloat64(),
	}
	if previous > 0 {
		delta.PriceChangePercent = change.
			Div(decimal.NewFromFloat(previous)).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			InexactFloat64()
	}
	return delta
}

// WindowStart is the first day inside a trailing window of days ending on
// asOf, at UTC midnight.
func WindowStart(asOf time.Time, days int) time.Time {
	return civil(asOf).AddDate(0, 0, -days)
}

// QualifiesAsPriceChange applies the price-changes report rules in process.
// prior_list_price and list_price are compared as text, so "500000" and
// "500000.00" count as a change.
func QualifiesAsPriceChange(s mls.Snapshot, asOf time.Time, windowDays int) bool {
	if s.Status != mls.StatusActive {
		return false
	}
	if s.PriorListPrice == "" || s.PriorListPrice == s.ListPrice {
		return false
	}
	changed := Time(s.PriceChangeTimestamp)
	if changed == nil {
		return false
	}
	return !changed.Before(WindowStart(asOf, windowDays))
}

// SoldWithin reports whether a closed listing sold inside the window.
func SoldWithin(s mls.Snapshot, asOf time.Time, windowDays int) bool {
	if s.Status != mls.StatusClosed {
		return false
	}
	sold := Date(s.SoldDate)
	return sold != nil && !sold.Before(WindowStart(asOf, windowDays))
}
