package realestate

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"realestate-scraper/extract"
	"realestate-scraper/utils"
)

// ReviewBaseURL is the valuation site's origin.
const ReviewBaseURL = "https://www.mansion-review.jp"

// ReviewSearchURL returns the valuation site's building-name search URL.
func ReviewSearchURL(name string) string {
	return ReviewBaseURL + "/search/result/?mname=" + url.QueryEscape(name) +
		"&direct_search_mname=1&bunjo_type=0&search=1#result"
}

// Valuation is what the valuation site knows about one building.
type Valuation struct {
	SecondaryDetailURL string

	MarketPricePerArea float64
	MarketPriceKnown   bool
	RentPerArea        float64
	RentKnown          bool
}

// Correlator re-finds a listing on the valuation site by building name and
// reads its benchmark values.
type Correlator struct {
	session    *Session
	logger     *utils.Logger
	rentColumn int

	// fromDetail reads the benchmark values from the matched building's page
	// instead of the search results.
	fromDetail bool
}

// NewCorrelator creates a Correlator bound to session.
func NewCorrelator(session *Session, logger *utils.Logger, fromDetail bool) *Correlator {
	return &Correlator{
		session:    session,
		logger:     logger,
		rentColumn: extract.RentColumn,
		fromDetail: fromDetail,
	}
}

// Correlate searches the valuation site for name. The first search result is
// taken as the match; when there is none the valuation stays empty and the
// caller carries on.
func (c *Correlator) Correlate(ctx context.Context, b Browser, name string) (Valuation, error) {
	var v Valuation

	searchURL := ReviewSearchURL(name)
	doc, err := b.Fetch(ctx, searchURL, WaitBody)
	if err != nil {
		return v, fmt.Errorf("review search for %q: %w", name, err)
	}

	doc, err = c.session.Ensure(ctx, b, searchURL, doc)
	if err != nil {
		return v, err
	}

	if !c.fromDetail {
		if err := c.readValuation(doc, name, &v); err != nil {
			return v, err
		}
	}

	links, err := extract.ResultLinks(doc, ReviewBaseURL)
	if err != nil {
		return v, fmt.Errorf("review results for %q: %w", name, err)
	}
	if len(links) == 0 {
		c.logger.Debug("[correlator] No match on the valuation site for %q", name)
		if c.fromDetail {
			c.logger.Warn("[correlator] %q: no valuation data", name)
		}
		return v, nil
	}
	if len(links) > 1 {
		c.logger.Debug("[correlator] %d matches for %q, using the first", len(links), name)
	}

	v.SecondaryDetailURL = links[0]
	detail, err := b.Fetch(ctx, v.SecondaryDetailURL, WaitBody)
	if err != nil {
		return v, fmt.Errorf("review detail %s: %w", v.SecondaryDetailURL, err)
	}

	if c.fromDetail {
		if err := c.readValuation(detail, name, &v); err != nil {
			return v, err
		}
	}
	return v, nil
}

// readValuation reads the two optional benchmark values. Absence is logged
// and leaves the value unmeasured; an unparsable value is fatal.
func (c *Correlator) readValuation(doc *goquery.Document, name string, v *Valuation) error {
	market, ok, err := extract.EstimatedPricePerArea(doc)
	if err != nil {
		return fmt.Errorf("valuation for %q: %w", name, err)
	}
	if ok {
		v.MarketPricePerArea, v.MarketPriceKnown = market, true
		c.logger.Debug("[correlator] Estimated market price: %.0f万円/㎡", market)
	} else {
		c.logger.Warn("[correlator] %q: estimated market price per ㎡ not shown", name)
	}

	rent, ok, err := extract.AverageRentPerArea(doc, c.rentColumn)
	if err != nil {
		return fmt.Errorf("valuation for %q: %w", name, err)
	}
	if ok {
		v.RentPerArea, v.RentKnown = rent, true
		c.logger.Debug("[correlator] Average rent: %.0f円/㎡", rent)
	} else {
		c.logger.Warn("[correlator] %q: average rent per ㎡ not shown", name)
	}
	return nil
}
