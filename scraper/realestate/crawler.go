package realestate

import (
	"context"
	"fmt"
	"strconv"

	"realestate-scraper/extract"
	"realestate-scraper/models"
	"realestate-scraper/utils"
)

const (
	// PrimaryBaseURL is the catalog site's origin.
	PrimaryBaseURL = "https://www.fudousan.or.jp"

	// DefaultSearchURL lists condominiums for sale in Tokyo's 23 wards.
	DefaultSearchURL = PrimaryBaseURL + "/property/buy/13/area/list?" +
		"m_adr%5B%5D=13101&m_adr%5B%5D=13102&m_adr%5B%5D=13103&m_adr%5B%5D=13104" +
		"&m_adr%5B%5D=13105&m_adr%5B%5D=13106&m_adr%5B%5D=13107&m_adr%5B%5D=13108" +
		"&m_adr%5B%5D=13109&m_adr%5B%5D=13110&m_adr%5B%5D=13111&m_adr%5B%5D=13112" +
		"&m_adr%5B%5D=13113&m_adr%5B%5D=13114&m_adr%5B%5D=13115&m_adr%5B%5D=13116" +
		"&m_adr%5B%5D=13117&m_adr%5B%5D=13118&m_adr%5B%5D=13119&m_adr%5B%5D=13120" +
		"&m_adr%5B%5D=13121&m_adr%5B%5D=13122&m_adr%5B%5D=13123&ptm%5B%5D=0103" +
		"&price_b_from=&price_b_to=&keyword=&eki_walk=&bus_walk=" +
		"&exclusive_area_from=&exclusive_area_to=&exclusive_area_from=&exclusive_area_to=&built="

	pageParam = "&page="
)

// PageURL returns the search-results URL for a 1-based page number.
func PageURL(searchURL string, page int) string {
	return searchURL + pageParam + strconv.Itoa(page)
}

// CrawlConfig holds everything a crawl run needs besides the browser.
type CrawlConfig struct {
	SearchURL string
	MaxItems  int
	MaxPages  int

	Credentials         Credentials
	LoginWait           utils.Poller
	Offsets             extract.TableOffsets
	ValuationFromDetail bool
}

// Result is the outcome of a crawl run. On failure it still carries the
// records completed before the error.
type Result struct {
	Records []models.ListingRecord
	Named   int
	Pages   int
}

// Crawler walks the search-result pages and runs the listing pipeline for
// every discovered listing until the named-listing cap or the page cap is
// reached.
type Crawler struct {
	cfg        CrawlConfig
	newBrowser BrowserFactory
	logger     *utils.Logger
}

// NewCrawler creates a Crawler. newBrowser is called once per page.
func NewCrawler(cfg CrawlConfig, newBrowser BrowserFactory, logger *utils.Logger) (*Crawler, error) {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.MaxItems <= 0 || cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("crawler: caps must be positive (items=%d, pages=%d)", cfg.MaxItems, cfg.MaxPages)
	}
	if err := cfg.Offsets.Validate(); err != nil {
		return nil, err
	}
	return &Crawler{cfg: cfg, newBrowser: newBrowser, logger: logger}, nil
}

// Run crawls until a cap is reached or the pages are exhausted. Any error
// ends the run immediately; the records collected so far are returned with
// it so the caller can decide whether to export them.
func (c *Crawler) Run(ctx context.Context) (Result, error) {
	var res Result
	seen := utils.NewURLSet()

	c.logger.Info("[crawler] Starting crawl: up to %d named listings over %d pages",
		c.cfg.MaxItems, c.cfg.MaxPages)

	for page := 1; page <= c.cfg.MaxPages; page++ {
		records, named, err := c.crawlPage(ctx, page, res.Named, seen)
		res.Records = append(res.Records, records...)
		res.Named = named
		res.Pages = page
		if err != nil {
			return res, err
		}

		c.logger.Info("[crawler] Page %d done: %d named listings so far", page, res.Named)

		if res.Named >= c.cfg.MaxItems {
			c.logger.Info("[crawler] Reached the cap of %d listings", c.cfg.MaxItems)
			break
		}
	}

	c.logger.Info("[crawler] Crawl complete: %d listings from %d pages", res.Named, res.Pages)
	return res, nil
}

// crawlPage processes one search-results page in a fresh browser. It takes
// the running named count and returns the updated one.
func (c *Crawler) crawlPage(ctx context.Context, page, named int, seen *utils.URLSet) ([]models.ListingRecord, int, error) {
	b, err := c.newBrowser(ctx)
	if err != nil {
		return nil, named, fmt.Errorf("page %d: start browser: %w", page, err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			c.logger.Warn("[crawler] Closing browser: %v", cerr)
		}
	}()

	session := NewSession(c.cfg.Credentials, c.cfg.LoginWait, c.logger)
	processor := NewProcessor(
		NewCorrelator(session, c.logger, c.cfg.ValuationFromDetail),
		c.cfg.Offsets,
		c.logger,
	)

	pageURL := PageURL(c.cfg.SearchURL, page)
	c.logger.Info("[crawler] Scraping page %d", page)

	doc, err := b.Fetch(ctx, pageURL, WaitBody)
	if err != nil {
		return nil, named, fmt.Errorf("page %d: %w", page, err)
	}

	links, err := extract.ListingLinks(doc, PrimaryBaseURL)
	if err != nil {
		return nil, named, fmt.Errorf("page %d: %w", page, err)
	}
	if len(links) == 0 {
		c.logger.Error("[crawler] No listing links found, the selector may have changed")
		return nil, named, &models.NoListingsFoundError{Page: page, URL: pageURL, Selector: extract.ListingLinkSelector}
	}
	c.logger.Debug("[crawler] Page %d: %d listing links", page, len(links))

	var records []models.ListingRecord
	for _, link := range links {
		if !seen.Add(link) {
			c.logger.Debug("[crawler] Skipping duplicate: %s", link)
			continue
		}

		c.logger.Debug("[crawler] No.%d %s", named+1, link)
		rec, err := processor.Process(ctx, b, link)
		if err != nil {
			return records, named, err
		}

		if rec.HasName {
			named++
			records = append(records, rec)
		}

		if named >= c.cfg.MaxItems {
			break
		}
	}
	return records, named, nil
}
