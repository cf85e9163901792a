package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"realestate-scraper/browser"
	"realestate-scraper/config"
	"realestate-scraper/extract"
	"realestate-scraper/models"
	"realestate-scraper/scraper/realestate"
	"realestate-scraper/services"
	"realestate-scraper/storage"
	"realestate-scraper/utils"
)

func main() {
	app := &cli.App{
		Name:  "realestate-scraper",
		Usage: "crawl condominium listings, price them against a valuation site and export a spreadsheet",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-items", Usage: "stop after this many named listings (overrides MAX_ITEMS)"},
			&cli.IntFlag{Name: "max-pages", Usage: "visit at most this many result pages (overrides MAX_PAGES)"},
			&cli.BoolFlag{Name: "headless", Usage: "run the browser headless (overrides HEADLESS)"},
			&cli.StringFlag{Name: "output-dir", Usage: "directory for exported files (overrides OUTPUT_DIR)"},
			&cli.BoolFlag{Name: "export-partial", Usage: "export the records collected before a fatal error"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := utils.NewLogger()
	cfg := config.Load()
	applyFlags(c, cfg)
	logger.SetDebug(cfg.Debug)

	logger.Info("=== Real-estate Scraping System starting ===")
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return err
	}
	logger.Info("Config: items: %d | pages: %d | headless: %v | rate: %dms | output: %s",
		cfg.MaxItems, cfg.MaxPages, cfg.Headless, cfg.RateLimitMs, cfg.OutputDir)

	pacer := utils.NewPacer(cfg.RateLimitMs)
	newBrowser := func(ctx context.Context) (realestate.Browser, error) {
		b, err := browser.New(ctx, browser.Options{
			Headless:       cfg.Headless,
			ChromeBin:      cfg.ChromeBin,
			PageTimeout:    cfg.PageTimeout,
			ControlTimeout: cfg.LoginTimeout,
		}, pacer, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	crawler, err := realestate.NewCrawler(realestate.CrawlConfig{
		MaxItems: cfg.MaxItems,
		MaxPages: cfg.MaxPages,
		Credentials: realestate.Credentials{
			Email:    cfg.Email,
			Password: cfg.Password,
		},
		LoginWait:           utils.Poller{Interval: cfg.PollInterval, Timeout: cfg.LoginTimeout},
		Offsets:             extract.DefaultTableOffsets,
		ValuationFromDetail: cfg.ValuationDetail,
	}, newBrowser, logger)
	if err != nil {
		logger.Error("Failed to create crawler: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, crawlErr := crawler.Run(ctx)
	if crawlErr != nil {
		logCrawlError(logger, crawlErr)
		if !cfg.ExportPartial {
			logger.Error("Nothing exported. Set EXPORT_PARTIAL_ON_FAILURE=true to keep the %d completed listings", len(res.Records))
			return crawlErr
		}
		logger.Warn("Exporting %d listings completed before the failure", len(res.Records))
	}

	if len(res.Records) == 0 {
		logger.Warn("No listings were collected, nothing to export")
		return crawlErr
	}

	if err := export(cfg, res.Records, logger); err != nil {
		logger.Error("Export failed: %v", err)
		return err
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(res.Records))

	fmt.Printf("  Done. %d listings from %d pages → %s\n\n", len(res.Records), res.Pages, cfg.OutputDir)
	return crawlErr
}

// applyFlags lets explicitly set command-line flags override the environment.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("max-items") {
		cfg.MaxItems = c.Int("max-items")
	}
	if c.IsSet("max-pages") {
		cfg.MaxPages = c.Int("max-pages")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("export-partial") {
		cfg.ExportPartial = c.Bool("export-partial")
	}
}

func logCrawlError(logger *utils.Logger, err error) {
	if models.IsFatal(err) {
		logger.Error("Crawl stopped: %v", err)
		return
	}
	logger.Error("Crawl aborted: %v", err)
}

// export writes the workbook, then the optional CSV copy and database rows.
// Only a workbook failure is returned; the other sinks log and carry on.
func export(cfg *config.Config, records []models.ListingRecord, logger *utils.Logger) error {
	now := time.Now()
	opts := storage.RowOptions{BlankUnmeasured: cfg.BlankUnmeasured}

	xlsx := storage.NewXLSXWriter(cfg.OutputDir, opts, logger)
	if err := xlsx.Write(records, storage.DestinationName(now, cfg.DestinationLabel, ".xlsx")); err != nil {
		return err
	}

	if cfg.ExportCSV {
		dest := storage.DestinationName(now, cfg.DestinationLabel, ".csv")
		if err := storage.NewCSVWriter(cfg.OutputDir, opts).Write(records, dest); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Listings saved to %s", dest)
		}
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			return nil
		}
		defer pgWriter.Close()

		if err := pgWriter.Write(records, storage.DestinationName(now, cfg.DestinationLabel, "")); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Listings stored in PostgreSQL (table: listing_records)")
		}
	}
	return nil
}
