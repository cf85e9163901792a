package realestate

import (
	"context"
	"fmt"

	"realestate-scraper/extract"
	"realestate-scraper/models"
	"realestate-scraper/services"
	"realestate-scraper/utils"
)

// Processor runs the per-listing pipeline: detail page, core fields, name
// gate, table fields, valuation lookup and derived metrics.
type Processor struct {
	correlator *Correlator
	offsets    extract.TableOffsets
	logger     *utils.Logger
}

// NewProcessor creates a Processor reading the detail table through offsets.
func NewProcessor(correlator *Correlator, offsets extract.TableOffsets, logger *utils.Logger) *Processor {
	return &Processor{correlator: correlator, offsets: offsets, logger: logger}
}

// Process builds the record for one listing URL. A record whose name is
// empty comes back with HasName unset and nothing else filled in.
func (p *Processor) Process(ctx context.Context, b Browser, listingURL string) (models.ListingRecord, error) {
	rec := models.NewListingRecord(listingURL)

	doc, err := b.Fetch(ctx, listingURL, WaitBody)
	if err != nil {
		return rec, fmt.Errorf("listing %s: %w", listingURL, err)
	}

	name, err := extract.Name(doc)
	if err != nil {
		return rec, fmt.Errorf("listing %s: %w", listingURL, err)
	}
	if name == "" {
		p.logger.Debug("[listing] No building name, skipping %s", listingURL)
		return rec, nil
	}

	price, err := extract.Price(doc)
	if err != nil {
		return rec, fmt.Errorf("listing %s: %w", listingURL, err)
	}

	table, err := extract.Table(doc, p.offsets)
	if err != nil {
		return rec, fmt.Errorf("listing %s: %w", listingURL, err)
	}

	rec.HasName = true
	rec.BuildingName = name
	rec.Price = price
	rec.Address = table.Location
	rec.ExclusiveArea = table.ExclusiveArea
	rec.BuiltDate = table.BuiltDate
	rec.CurrentStatus = table.CurrentStatus
	rec.DeliveryTiming = table.DeliveryTiming
	rec.Remark1 = table.Remark1

	p.logger.Debug("[listing] %s | %d万円 | %s | %.2f㎡ | %s", name, price, rec.Address, rec.ExclusiveArea, rec.BuiltDate)
	p.logger.Debug("[listing] status: %s | delivery: %s | remark: %s", rec.CurrentStatus, rec.DeliveryTiming, rec.Remark1)

	val, err := p.correlator.Correlate(ctx, b, name)
	if err != nil {
		return rec, fmt.Errorf("listing %s: %w", listingURL, err)
	}
	rec.SecondaryDetailURL = val.SecondaryDetailURL
	rec.EstimatedMarketPricePerArea = val.MarketPricePerArea
	rec.MarketPriceKnown = val.MarketPriceKnown
	rec.AverageRentPerArea = val.RentPerArea
	rec.RentKnown = val.RentKnown

	if !rec.CanCalculate() {
		p.logger.Warn("[listing] %s: price or area is zero, metrics not calculated", name)
		return rec, nil
	}
	return services.Calculate(rec).Apply(rec), nil
}
