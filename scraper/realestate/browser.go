package realestate

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// WaitBody is the wait condition used when a page has no better marker.
const WaitBody = "body"

// Browser is the page source the crawler drives. One Browser is one
// browser-driver lifetime; the valuation-site session lives and dies with it.
// Every method blocks until its wait condition holds or a bounded timeout
// elapses.
type Browser interface {
	// Fetch navigates to url, waits for waitSelector and returns the
	// rendered document.
	Fetch(ctx context.Context, url, waitSelector string) (*goquery.Document, error)
	// Current returns the document currently displayed, without navigating.
	Current(ctx context.Context) (*goquery.Document, error)
	// Click waits for selector to become visible and clicks it.
	Click(ctx context.Context, selector string) error
	// Fill waits for the input at selector, clears it and types value.
	Fill(ctx context.Context, selector, value string) error
	Close() error
}

// BrowserFactory starts a fresh browser. The crawler calls it once per
// search-results page.
type BrowserFactory func(ctx context.Context) (Browser, error)
