package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

const (
	xlsxSheet = "Sheet1"
	xlsxFont  = "Meiryo"
)

// XLSXWriter writes records to an Excel workbook, the primary export.
type XLSXWriter struct {
	dir    string
	opts   RowOptions
	logger *utils.Logger
}

// NewXLSXWriter creates a writer for dir.
func NewXLSXWriter(dir string, opts RowOptions, logger *utils.Logger) *XLSXWriter {
	return &XLSXWriter{dir: dir, opts: opts, logger: logger}
}

// Write saves the records to dir/destination. Every used cell gets the
// Meiryo font and a thin border.
func (x *XLSXWriter) Write(records []models.ListingRecord, destination string) error {
	if err := os.MkdirAll(x.dir, 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i, r := range records {
		row := Row(i+1, r, x.opts)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+1, err)
		}
	}

	if err := x.applyStyle(f, len(records)+1); err != nil {
		return err
	}

	path := filepath.Join(x.dir, destination)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	x.logger.Info("[xlsx] Saved %d rows to %s", len(records), path)
	return nil
}

func (x *XLSXWriter) applyStyle(f *excelize.File, rows int) error {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: xlsxFont},
		Border: []excelize.Border{
			border("left"), border("top"), border("right"), border("bottom"),
		},
	})
	if err != nil {
		return fmt.Errorf("xlsx: create style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(Columns), rows)
	if err != nil {
		return fmt.Errorf("xlsx: style range: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, style); err != nil {
		return fmt.Errorf("xlsx: apply style: %w", err)
	}

	// URL columns
	if err := f.SetColWidth(xlsxSheet, "B", "C", 45); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	return nil
}
