package models

// ListingRecord is one fully processed property candidate. It is built
// field by field by the listing pipeline and treated as immutable once
// the pipeline returns it.
type ListingRecord struct {
	PrimaryDetailURL   string
	SecondaryDetailURL string
	HasName            bool

	// Price is expressed in units of 10,000 yen.
	Price                int
	EstimatedMarketPrice float64
	MarketToPriceRatio   float64
	EstimatedYield       float64

	BuildingName string
	Address      string

	// ExclusiveArea is in square metres.
	ExclusiveArea               float64
	PricePerArea                float64
	EstimatedMarketPricePerArea float64
	AverageRentPerArea          float64

	BuiltDate      string
	CurrentStatus  string
	DeliveryTiming string
	Remark1        string

	// MarketPriceKnown and RentKnown record whether the secondary site
	// actually supplied the corresponding value. A zero value with the flag
	// unset means "not measured", not "measured as zero".
	MarketPriceKnown bool
	RentKnown        bool
}

// NewListingRecord returns an empty record for a discovered listing URL.
func NewListingRecord(primaryURL string) ListingRecord {
	return ListingRecord{PrimaryDetailURL: primaryURL}
}

// CanCalculate reports whether the derived metrics may be computed.
func (r ListingRecord) CanCalculate() bool {
	return r.Price > 0 && r.ExclusiveArea > 0
}

// InsightReport holds the run summary computed over the exported records.
type InsightReport struct {
	TotalListings   int
	Correlated      int
	WithMarketPrice int
	WithRent        int
	AveragePrice    float64
	MinPrice        int
	MaxPrice        int
	AverageRatio    float64
	AverageYield    float64
	MostUndervalued *ListingRecord
	TopYield        []*ListingRecord
	ListingsByWard  map[string]int
}
