// Package extract turns rendered listing and valuation pages into typed
// record fields. Every function is a pure read of the document it is given.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"realestate-scraper/models"
)

// mapLinkLabel is the "surrounding map" link text appended to the address cell.
const mapLinkLabel = "周辺地図"

// loggedInLabel is the account-menu text shown while a session is active.
const loggedInLabel = "ログイン中"

// TableFields holds the values read from the detail page's value-cell list.
type TableFields struct {
	Location       string
	ExclusiveArea  float64
	BuiltDate      string
	CurrentStatus  string
	DeliveryTiming string
	Remark1        string
}

// Name returns the building name. An empty string means the listing has no
// name and must be skipped; a missing heading is fatal.
func Name(doc *goquery.Document) (string, error) {
	node := doc.Find(NameSelector).First()
	if node.Length() == 0 {
		return "", &models.MissingFieldError{Field: FieldName, Selector: NameSelector}
	}
	name := normaliseText(node.Text())
	name = strings.ReplaceAll(name, "?", "")
	return strings.TrimSpace(name), nil
}

// Price returns the listing price in units of 10,000 yen.
func Price(doc *goquery.Document) (int, error) {
	node := doc.Find(PriceSelector).First()
	if node.Length() == 0 {
		return 0, &models.MissingFieldError{Field: FieldPrice, Selector: PriceSelector}
	}
	return ParsePrice(node.Text())
}

// Table reads the six positional fields of the detail table.
func Table(doc *goquery.Document, offsets TableOffsets) (TableFields, error) {
	var fields TableFields

	cells := doc.Find(TableCellSelector)
	if cells.Length() == 0 {
		return fields, &models.MissingFieldError{Field: FieldTable, Selector: TableCellSelector}
	}

	cell := func(field string, idx int) (string, error) {
		if idx < 0 || idx >= cells.Length() {
			return "", &models.MissingFieldError{
				Field:    field,
				Selector: TableCellSelector,
				Detail:   fmt.Sprintf("offset %d out of range (%d cells)", idx, cells.Length()),
			}
		}
		return normaliseText(cells.Eq(idx).Text()), nil
	}

	location, err := cell(FieldLocation, offsets.Location)
	if err != nil {
		return fields, err
	}
	fields.Location = strings.TrimSpace(strings.ReplaceAll(location, mapLinkLabel, ""))

	area, err := cell(FieldArea, offsets.Area)
	if err != nil {
		return fields, err
	}
	if fields.ExclusiveArea, err = ParseArea(area); err != nil {
		return fields, err
	}

	if fields.BuiltDate, err = cell(FieldBuiltDate, offsets.BuiltDate); err != nil {
		return fields, err
	}
	if fields.CurrentStatus, err = cell(FieldStatus, offsets.Status); err != nil {
		return fields, err
	}
	if fields.DeliveryTiming, err = cell(FieldDelivery, offsets.Delivery); err != nil {
		return fields, err
	}
	if fields.Remark1, err = cell(FieldRemark, offsets.Remark); err != nil {
		return fields, err
	}

	return fields, nil
}

// EstimatedPricePerArea returns the valuation site's estimated market price
// per m² (10,000 yen units). ok is false when the page does not show one.
func EstimatedPricePerArea(doc *goquery.Document) (value float64, ok bool, err error) {
	node := doc.Find(MarketPerAreaSelector).First()
	if node.Length() == 0 {
		return 0, false, nil
	}
	n, err := ParseMarketPerArea(node.Text())
	if err != nil {
		return 0, false, err
	}
	return float64(n), true, nil
}

// RentColumn is the position of the per-m² rent in the "average" row.
const RentColumn = 3

// AverageRentPerArea returns the average rent per m² (yen) from the
// valuation table's average row. ok is false when the row, the column, or a
// yen amount inside it is absent.
func AverageRentPerArea(doc *goquery.Document, column int) (value float64, ok bool, err error) {
	cells := doc.Find(AverageRowCellSelector)
	if column < 0 || column >= cells.Length() {
		return 0, false, nil
	}
	n, found, err := ParseRent(cells.Eq(column).Text())
	if err != nil || !found {
		return 0, false, err
	}
	return float64(n), true, nil
}

// ListingLinks returns the absolute detail URLs on a search-results page,
// in page order. baseURL must be an absolute URL.
func ListingLinks(doc *goquery.Document, baseURL string) ([]string, error) {
	return links(doc, ListingLinkSelector, baseURL)
}

// ResultLinks returns the valuation site's search-result links in result
// order, resolved against baseURL.
func ResultLinks(doc *goquery.Document, baseURL string) ([]string, error) {
	return links(doc, ResultLinkSelector, baseURL)
}

// LoggedIn reports whether the page shows the logged-in account marker.
// A missing marker counts as logged out.
func LoggedIn(doc *goquery.Document) bool {
	node := doc.Find(LoginMarkerSelector).First()
	if node.Length() == 0 {
		return false
	}
	return normaliseText(node.Text()) == loggedInLabel
}

func links(doc *goquery.Document, selector, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("base url %q: %w", baseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}

	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		out = append(out, base.ResolveReference(ref).String())
	})
	return out, nil
}
