package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"realestate-scraper/models"
)

// recordColumns are the listing_records columns written by the upsert, in
// argument order.
var recordColumns = []string{
	"primary_detail_url",
	"secondary_detail_url",
	"price",
	"estimated_market_price",
	"market_to_price_ratio",
	"estimated_yield",
	"building_name",
	"address",
	"exclusive_area",
	"price_per_area",
	"estimated_market_price_per_area",
	"average_rent_per_area",
	"built_date",
	"current_status",
	"delivery_timing",
	"remark1",
	"market_price_known",
	"rent_known",
	"export_name",
}

// PostgresWriter persists records to PostgreSQL. A listing seen again in a
// later run updates its existing row.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listing_records (
			id                              SERIAL PRIMARY KEY,
			primary_detail_url              TEXT          UNIQUE NOT NULL,
			secondary_detail_url            TEXT          NOT NULL DEFAULT '',
			price                           INTEGER       NOT NULL,
			estimated_market_price          NUMERIC(14,4) NOT NULL DEFAULT 0,
			market_to_price_ratio           NUMERIC(10,4) NOT NULL DEFAULT 0,
			estimated_yield                 NUMERIC(10,4) NOT NULL DEFAULT 0,
			building_name                   TEXT          NOT NULL,
			address                         TEXT          NOT NULL DEFAULT '',
			exclusive_area                  NUMERIC(10,2) NOT NULL,
			price_per_area                  NUMERIC(12,4) NOT NULL DEFAULT 0,
			estimated_market_price_per_area NUMERIC(12,2) NOT NULL DEFAULT 0,
			average_rent_per_area           NUMERIC(12,2) NOT NULL DEFAULT 0,
			built_date                      TEXT          NOT NULL DEFAULT '',
			current_status                  TEXT          NOT NULL DEFAULT '',
			delivery_timing                 TEXT          NOT NULL DEFAULT '',
			remark1                         TEXT          NOT NULL DEFAULT '',
			market_price_known              BOOLEAN       NOT NULL DEFAULT FALSE,
			rent_known                      BOOLEAN       NOT NULL DEFAULT FALSE,
			export_name                     TEXT          NOT NULL DEFAULT '',
			updated_at                      TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listing_records_price ON listing_records(price);
		CREATE INDEX IF NOT EXISTS idx_listing_records_ratio ON listing_records(market_to_price_ratio);
		CREATE INDEX IF NOT EXISTS idx_listing_records_yield ON listing_records(estimated_yield);
	`)
	return err
}

// Write upserts all records in batches. destination is stored as the
// export_name of every row.
func (pw *PostgresWriter) Write(records []models.ListingRecord, destination string) error {
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.upsertBatch(records[i:end], destination); err != nil {
			return fmt.Errorf("postgres: upsert batch at %d: %w", i, err)
		}
	}
	return nil
}

func (pw *PostgresWriter) upsertBatch(batch []models.ListingRecord, destination string) error {
	args := make([]interface{}, 0, len(batch)*len(recordColumns))
	for _, r := range batch {
		args = append(args, recordArgs(r, destination)...)
	}
	_, err := pw.db.Exec(upsertQuery(len(batch)), args...)
	return err
}

// upsertQuery builds a multi-row INSERT for n records that updates rows
// whose primary_detail_url already exists.
func upsertQuery(n int) string {
	width := len(recordColumns)

	valueStrings := make([]string, 0, n)
	for row := 0; row < n; row++ {
		placeholders := make([]string, width)
		for col := range placeholders {
			placeholders[col] = fmt.Sprintf("$%d", row*width+col+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
	}

	updates := make([]string, 0, width)
	for _, col := range recordColumns[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, "updated_at = NOW()")

	return fmt.Sprintf(`
		INSERT INTO listing_records (%s)
		VALUES %s
		ON CONFLICT (primary_detail_url) DO UPDATE SET %s
	`, strings.Join(recordColumns, ", "), strings.Join(valueStrings, ","), strings.Join(updates, ", "))
}

func recordArgs(r models.ListingRecord, destination string) []interface{} {
	return []interface{}{
		r.PrimaryDetailURL,
		r.SecondaryDetailURL,
		r.Price,
		r.EstimatedMarketPrice,
		r.MarketToPriceRatio,
		r.EstimatedYield,
		r.BuildingName,
		r.Address,
		r.ExclusiveArea,
		r.PricePerArea,
		r.EstimatedMarketPricePerArea,
		r.AverageRentPerArea,
		r.BuiltDate,
		r.CurrentStatus,
		r.DeliveryTiming,
		r.Remark1,
		r.MarketPriceKnown,
		r.RentKnown,
		destination,
	}
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
