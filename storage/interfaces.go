package storage

import (
	"time"

	"realestate-scraper/models"
)

// RecordWriter is the interface any export sink must satisfy. destination is
// the sink-specific name of the export (a file name, a batch label).
type RecordWriter interface {
	Write(records []models.ListingRecord, destination string) error
}

// DefaultLabel is appended to the export timestamp.
const DefaultLabel = "東京都_マンション"

// DestinationName returns the export name for a run started at t, e.g.
// "20240105_0930_東京都_マンション.xlsx".
func DestinationName(t time.Time, label, ext string) string {
	if label == "" {
		label = DefaultLabel
	}
	return t.Format("20060102_1504") + "_" + label + ext
}
