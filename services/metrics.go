package services

import "realestate-scraper/models"

// Metrics are the values derived from a completed record.
type Metrics struct {
	EstimatedMarketPrice float64
	MarketToPriceRatio   float64
	EstimatedYield       float64
	PricePerArea         float64
}

// Calculate derives the valuation metrics for a record with a positive price
// and exclusive area. The caller must check CanCalculate first.
//
// Price and market price are in 10,000 yen units, rent is in yen per m², so
// the yield divides by price×10000. Unavailable secondary values are zero and
// produce zero metrics.
func Calculate(r models.ListingRecord) Metrics {
	price := float64(r.Price)
	area := r.ExclusiveArea

	estimated := r.EstimatedMarketPricePerArea * area
	return Metrics{
		EstimatedMarketPrice: estimated,
		MarketToPriceRatio:   estimated / price * 100,
		EstimatedYield:       (r.AverageRentPerArea * area) / (price * 10000) * 100,
		PricePerArea:         price / area,
	}
}

// Apply returns a copy of r with the derived metrics filled in.
func (m Metrics) Apply(r models.ListingRecord) models.ListingRecord {
	r.EstimatedMarketPrice = m.EstimatedMarketPrice
	r.MarketToPriceRatio = m.MarketToPriceRatio
	r.EstimatedYield = m.EstimatedYield
	r.PricePerArea = m.PricePerArea
	return r
}
