// Package property turns resolved MLS listing rows into the API's property
// representation.
package property

import (
	"strings"
	"time"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
)

// Property is a listing as served to clients.
type Property struct {
	ID               string     `json:"id"`
	MLSID            string     `json:"mlsId"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	Subdivision      string     `json:"subdivision"`
	Bedrooms         int        `json:"bedrooms"`
	Bathrooms        float64    `json:"bathrooms"`
	HalfBaths        float64    `json:"halfBaths"`
	HasPool          bool       `json:"hasPool"`
	LivingArea       int        `json:"livingArea"`
	TotalArea        int        `json:"totalArea"`
	LotSize          int        `json:"lotSize"`
	YearBuilt        int        `json:"yearBuilt"`
	Waterfront       bool       `json:"waterfront"`
	Waterfrontage    *string    `json:"waterfrontage"`
	ListPrice        float64    `json:"listPrice"`
	SoldPrice        float64    `json:"soldPrice"`
	OriginalPrice    float64    `json:"originalPrice"`
	PriorPrice       float64    `json:"priorPrice"`
	ListingDate      *time.Time `json:"listingDate"`
	SoldDate         *time.Time `json:"soldDate"`
	ContractDate     *time.Time `json:"contractDate"`
	StatusChangeDate *time.Time `json:"statusChangeDate"`
	DaysOnMarket     int        `json:"daysOnMarket"`
	CumulativeDOM    int        `json:"cumulativeDom"`
	Status           string     `json:"status"`
	PropertyType     *string    `json:"propertyType"`
	Construction     *string    `json:"construction"`
	Parking          *string    `json:"parking"`
	GarageSpaces     int        `json:"garageSpaces"`
	Description      *string    `json:"description"`
	InteriorFeatures *string    `json:"interiorFeatures"`
	ExteriorFeatures *string    `json:"exteriorFeatures"`
	Heating          *string    `json:"heating"`
	Cooling          *string    `json:"cooling"`
	Flooring         *string    `json:"flooring"`
	View             *string    `json:"view"`
	GatedCommunity   bool       `json:"gatedCommunity"`
	HOA              float64    `json:"hoa"`
	Taxes            float64    `json:"taxes"`
	TaxYear          int        `json:"taxYear"`
	Zoning           *string    `json:"zoning"`
	ParcelID         *string    `json:"parcelId"`
	MLSNumber        string     `json:"mlsNumber"`
	ListingAgent     *string    `json:"listingAgent"`
	ListingOffice    *string    `json:"listingOffice"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	LastUpdated      *time.Time `json:"lastUpdated"`

	// Set only on rows from the price-changes report.
	*PriceDelta
}

// Address joins street number and name, with "#unit" when present.
func Address(s mls.Snapshot) string {
	addr := strings.TrimSpace(strings.TrimSpace(s.StreetNumber) + " " + strings.TrimSpace(s.StreetName))
	if unit := strings.TrimSpace(s.UnitNumber); unit != "" {
		addr += " #" + strings.TrimPrefix(unit, "#")
	}
	return addr
}

// Map converts a resolved row. It never fails; malformed values take their
// defaults. today anchors days on market for active listings.
func Map(s mls.Snapshot, today time.Time) Property {
	return Property{
		ID:               s.ListingID,
		MLSID:            s.MLSIdentifier,
		Address:          Address(s),
		City:             strings.TrimSpace(s.City),
		Subdivision:      TitleCase(s.Subdivision),
		Bedrooms:         Int(s.TotalBedrooms),
		Bathrooms:        Float(s.BathsTotal),
		HalfBaths:        Float(s.BathsHalf),
		HasPool:          Yes(s.PrivatePool),
		LivingArea:       Int(s.SqftLiving),
		TotalArea:        Int(s.SqftTotal),
		LotSize:          Int(s.LotSqft),
		YearBuilt:        Int(s.YearBuilt),
		Waterfront:       Yes(s.Waterfront),
		Waterfrontage:    Text(s.Waterfrontage),
		ListPrice:        Float(s.ListPrice),
		SoldPrice:        Float(s.SoldPrice),
		OriginalPrice:    Float(s.OriginalListPrice),
		PriorPrice:       Float(s.PriorListPrice),
		ListingDate:      Date(s.ListingDate),
		SoldDate:         Date(s.SoldDate),
		ContractDate:     Date(s.UnderContractDate),
		StatusChangeDate: Date(s.StatusChangeDate),
		DaysOnMarket:     DaysOnMarket(s, today),
		CumulativeDOM:    Int(s.CumulativeDOM),
		Status:           s.Status,
		PropertyType:     Text(s.PropertyType),
		Construction:     Text(s.Construction),
		Parking:          Text(s.Parking),
		GarageSpaces:     Int(s.GarageSpaces),
		Description:      Text(s.PublicRemarks),
		InteriorFeatures: Text(s.InteriorFeatures),
		ExteriorFeatures: Text(s.ExteriorFeatures),
		Heating:          Text(s.Heating),
		Cooling:          Text(s.Cooling),
		Flooring:         Text(s.Flooring),
		View:             Text(s.View),
		GatedCommunity:   Yes(s.GatedCommunity),
		HOA:              Float(s.HOAMonthly),
		Taxes:            Float(s.Taxes),
		TaxYear:          Int(s.TaxYear),
		Zoning:           Text(s.Zoning),
		ParcelID:         Text(s.ParcelID),
		MLSNumber:        s.MLSIdentifier,
		ListingAgent:     Text(s.ListingMemberName),
		ListingOffice:    Text(s.ListingOfficeName),
		Latitude:         Float(s.GeoLat),
		Longitude:        Float(s.GeoLon),
		LastUpdated:      Time(s.Timestamp),
	}
}

// MapPriceChange is Map plus the price delta.
func MapPriceChange(s mls.Snapshot, today time.Time) Property {
	p := Map(s, today)
	delta := PriceChange(s)
	p.PriceDelta = &delta
	return p
}

// MapAll maps rows in order.
func MapAll(rows []mls.Snapshot, today time.Time, mapper func(mls.Snapshot, time.Time) Property) []Property {
	out := make([]Property, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper(row, today))
	}
	return out
}
