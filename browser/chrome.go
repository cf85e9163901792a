// Package browser drives a headless Chrome through chromedp and hands the
// rendered pages to the scraper as goquery documents.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a Chrome instance.
type Options struct {
	Headless  bool
	ChromeBin string
	UserAgent string

	// PageTimeout bounds a navigation plus its readiness wait.
	PageTimeout time.Duration
	// ControlTimeout bounds the wait for a clickable or fillable control.
	ControlTimeout time.Duration
}

// Chrome is one browser process with a single tab.
type Chrome struct {
	opts   Options
	pacer  *utils.Pacer
	logger *utils.Logger

	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	currentURL  string
}

// New starts a browser. The caller must Close it.
func New(ctx context.Context, opts Options, pacer *utils.Pacer, logger *utils.Logger) (*Chrome, error) {
	if opts.ChromeBin == "" {
		opts.ChromeBin = findChromeBinary()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 30 * time.Second
	}
	if opts.ControlTimeout <= 0 {
		opts.ControlTimeout = opts.PageTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ChromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	// Suppress chromedp log noise
	tab, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser (%s): %w", opts.ChromeBin, err)
	}
	logger.Debug("[browser] Started %s (headless=%v)", opts.ChromeBin, opts.Headless)

	return &Chrome{
		opts:        opts,
		pacer:       pacer,
		logger:      logger,
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Fetch navigates to url, waits until waitSelector is ready and returns the
// rendered page.
func (c *Chrome) Fetch(ctx context.Context, url, waitSelector string) (*goquery.Document, error) {
	c.pacer.Wait()
	c.logger.Debug("[browser] GET %s", url)

	var html string
	err := c.run(ctx, c.opts.PageTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, wrapTimeout(err, url, waitSelector, c.opts.PageTimeout)
	}
	c.currentURL = url
	return parse(html)
}

// Current returns the page as it is rendered now, without navigating.
func (c *Chrome) Current(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := c.run(ctx, c.opts.PageTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, wrapTimeout(err, c.currentURL, "html", c.opts.PageTimeout)
	}
	return parse(html)
}

// Click waits for selector to become visible and clicks it.
func (c *Chrome) Click(ctx context.Context, selector string) error {
	err := c.run(ctx, c.opts.ControlTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Fill replaces the contents of the input matching selector with value.
// The value is never logged.
func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	err := c.run(ctx, c.opts.ControlTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// Close shuts the tab and the browser process down.
func (c *Chrome) Close() error {
	c.cancelTab()
	c.cancelAlloc()
	c.logger.Debug("[browser] Closed")
	return nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.tab, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func wrapTimeout(err error, url, waitFor string, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.NavigationTimeoutError{URL: url, WaitFor: waitFor, Timeout: timeout, Err: err}
	}
	return fmt.Errorf("load %s: %w", url, err)
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
