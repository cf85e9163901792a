package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"realestate-scraper/models"
)

// CSVWriter writes records to a CSV file under dir, one file per export.
type CSVWriter struct {
	dir  string
	opts RowOptions
}

// NewCSVWriter creates a writer for dir. Intermediate directories are
// created on the first write.
func NewCSVWriter(dir string, opts RowOptions) *CSVWriter {
	return &CSVWriter{dir: dir, opts: opts}
}

// utf8BOM lets Excel on Japanese Windows detect the encoding.
const utf8BOM = "\uFEFF"

// Write creates (or truncates) dir/destination and writes a UTF-8 BOM, the
// header row and one row per record.
func (c *CSVWriter) Write(records []models.ListingRecord, destination string) (err error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	path := filepath.Join(c.dir, destination)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csv: close %q: %w", path, cerr)
		}
	}()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("csv: write bom: %w", err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for i, r := range records {
		cells := Row(i+1, r, c.opts)
		row := make([]string, len(cells))
		for j, v := range cells {
			row[j] = formatCell(v)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}
