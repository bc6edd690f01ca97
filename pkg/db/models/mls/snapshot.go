package mls

// Listing statuses as they appear in the feed. The set is open; anything else
// is carried through as an opaque string.
const (
	StatusActive              = "Active"
	StatusClosed              = "Closed"
	StatusActiveUnderContract = "Active Under Contract"
	StatusPending             = "Pending"
	StatusComingSoon          = "Coming Soon"
)

// YesValue is how the feed encodes a true flag.
const YesValue = "Yes"

// SnapshotColumns lists the raw listing columns read by every report, in
// the order Snapshot.ScanTargets returns its fields.
var SnapshotColumns = []string{
	"listing_id",
	"mls_identifier",
	"timestamp",
	"status",
	"city",
	"subdivision",
	"parcel_id",
	"street_number",
	"street_name",
	"unit_number",
	"total_bedrooms",
	"baths_total",
	"baths_half",
	"private_pool",
	"sqft_living",
	"sqft_total",
	"lot_sqft",
	"year_built",
	"waterfront",
	"waterfrontage",
	"list_price",
	"sold_price",
	"original_list_price",
	"prior_list_price",
	"listing_date",
	"sold_date",
	"under_contract_date",
	"status_change_date",
	"price_change_timestamp",
	"cumulative_dom",
	"property_type",
	"construction",
	"parking",
	"garage_spaces",
	"public_remarks",
	"interior_features",
	"exterior_features",
	"heating",
	"cooling",
	"flooring",
	"view",
	"gated_community",
	"hoa_poa_coa_monthly",
	"taxes",
	"tax_year",
	"zoning",
	"listingmembername",
	"listingofficename",
	"geo_lat",
	"geo_lon",
}

// Snapshot is one resolved listing row. Every field is text exactly as
// stored; NULL arrives as the empty string.
type Snapshot struct {
	ListingID            string `db:"listing_id"`
	MLSIdentifier        string `db:"mls_identifier"`
	Timestamp            string `db:"timestamp"`
	Status               string `db:"status"`
	City                 string `db:"city"`
	Subdivision          string `db:"subdivision"`
	ParcelID             string `db:"parcel_id"`
	StreetNumber         string `db:"street_number"`
	StreetName           string `db:"street_name"`
	UnitNumber           string `db:"unit_number"`
	TotalBedrooms        string `db:"total_bedrooms"`
	BathsTotal           string `db:"baths_total"`
	BathsHalf            string `db:"baths_half"`
	PrivatePool          string `db:"private_pool"`
	SqftLiving           string `db:"sqft_living"`
	SqftTotal            string `db:"sqft_total"`
	LotSqft              string `db:"lot_sqft"`
	YearBuilt            string `db:"year_built"`
	Waterfront           string `db:"waterfront"`
	Waterfrontage        string `db:"waterfrontage"`
	ListPrice            string `db:"list_price"`
	SoldPrice            string `db:"sold_price"`
	OriginalListPrice    string `db:"original_list_price"`
	PriorListPrice       string `db:"prior_list_price"`
	ListingDate          string `db:"listing_date"`
	SoldDate             string `db:"sold_date"`
	UnderContractDate    string `db:"under_contract_date"`
	StatusChangeDate     string `db:"status_change_date"`
	PriceChangeTimestamp string `db:"price_change_timestamp"`
	CumulativeDOM        string `db:"cumulative_dom"`
	PropertyType         string `db:"property_type"`
	Construction         string `db:"construction"`
	Parking              string `db:"parking"`
	GarageSpaces         string `db:"garage_spaces"`
	PublicRemarks        string `db:"public_remarks"`
	InteriorFeatures     string `db:"interior_features"`
	ExteriorFeatures     string `db:"exterior_features"`
	Heating              string `db:"heating"`
	Cooling              string `db:"cooling"`
	Flooring             string `db:"flooring"`
	View                 string `db:"view"`
	GatedCommunity       string `db:"gated_community"`
	HOAMonthly           string `db:"hoa_poa_coa_monthly"`
	Taxes                string `db:"taxes"`
	TaxYear              string `db:"tax_year"`
	Zoning               string `db:"zoning"`
	ListingMemberName    string `db:"listingmembername"`
	ListingOfficeName    string `db:"listingofficename"`
	GeoLat               string `db:"geo_lat"`
	GeoLon               string `db:"geo_lon"`
}

// ScanTargets returns pointers to the fields in SnapshotColumns order.
func (s *Snapshot) ScanTargets() []any {
	return []any{
		&s.ListingID,
		&s.MLSIdentifier,
		&s.Timestamp,
		&s.Status,
		&s.City,
		&s.Subdivision,
		&s.ParcelID,
		&s.StreetNumber,
		&s.StreetName,
		&s.UnitNumber,
		&s.TotalBedrooms,
		&s.BathsTotal,
		&s.BathsHalf,
		&s.PrivatePool,
		&s.SqftLiving,
		&s.SqftTotal,
		&s.LotSqft,
		&s.YearBuilt,
		&s.Waterfront,
		&s.Waterfrontage,
		&s.ListPrice,
		&s.SoldPrice,
		&s.OriginalListPrice,
		&s.PriorListPrice,
		&s.ListingDate,
		&s.SoldDate,
		&s.UnderContractDate,
		&s.StatusChangeDate,
		&s.PriceChangeTimestamp,
		&s.CumulativeDOM,
		&s.PropertyType,
		&s.Construction,
		&s.Parking,
		&s.GarageSpaces,
		&s.PublicRemarks,
		&s.InteriorFeatures,
		&s.ExteriorFeatures,
		&s.Heating,
		&s.Cooling,
		&s.Flooring,
		&s.View,
		&s.GatedCommunity,
		&s.HOAMonthly,
		&s.Taxes,
		&s.TaxYear,
		&s.Zoning,
		&s.ListingMemberName,
		&s.ListingOfficeName,
		&s.GeoLat,
		&s.GeoLon,
	}
}
