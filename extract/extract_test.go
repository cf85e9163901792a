package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"realestate-scraper/models"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func readFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", name, err)
	}
	return docFromString(t, string(data))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"1億2,300万円", 12300},
		{"3,400万円", 3400},
		{"価格 4,980 万円（税込）", 4980},
		{"2億円", 20000},
		{"1億50万円", 10050},
		{"980万円", 980},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.raw)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParsePriceRejectsUnparsable(t *testing.T) {
	for _, raw := range []string{"価格未定", "", ",万円"} {
		_, err := ParsePrice(raw)
		var numErr *models.NumericConversionError
		if !errors.As(err, &numErr) {
			t.Errorf("ParsePrice(%q): expected NumericConversionError, got %v", raw, err)
		}
	}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"75.5㎡", 75.5},
		{"62.12㎡（壁芯）", 62.12},
		{"専有面積 40㎡", 40},
	}

	for _, tt := range tests {
		got, err := ParseArea(tt.raw)
		if err != nil {
			t.Errorf("ParseArea(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseArea(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseAreaResidualCharacterIsFatal(t *testing.T) {
	// The pattern accepts any single separator, so "75,5㎡" matches but
	// cannot be parsed.
	_, err := ParseArea("75,5㎡")
	var numErr *models.NumericConversionError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected NumericConversionError, got %v", err)
	}
	if numErr.Err == nil {
		t.Error("expected the underlying parse error to be kept")
	}
}

func TestParseRent(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		found bool
	}{
		{"3,450円", 3450, true},
		{"平均 4,012円/㎡", 4012, true},
		{"980円", 980, true},
		{"-", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, found, err := ParseRent(tt.raw)
		if err != nil {
			t.Errorf("ParseRent(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want || found != tt.found {
			t.Errorf("ParseRent(%q) = (%d, %v); want (%d, %v)", tt.raw, got, found, tt.want, tt.found)
		}
	}
}

func TestNameTrimsAndStrips(t *testing.T) {
	doc := docFromString(t, `<h1 class="detail-h1">
		 パークハウス?目黒 </h1>`)

	got, err := Name(doc)
	if err != nil {
		t.Fatalf("Name error: %v", err)
	}
	if got != "パークハウス目黒" {
		t.Errorf("Name = %q; want %q", got, "パークハウス目黒")
	}
}

func TestNameEmptyIsNotAnError(t *testing.T) {
	doc := docFromString(t, `<h1 class="detail-h1">   </h1>`)

	got, err := Name(doc)
	if err != nil {
		t.Fatalf("Name error: %v", err)
	}
	if got != "" {
		t.Errorf("Name = %q; want empty", got)
	}
}

func TestMandatoryFieldsMissing(t *testing.T) {
	doc := docFromString(t, `<html><body><p>maintenance</p></body></html>`)

	var missing *models.MissingFieldError

	if _, err := Name(doc); !errors.As(err, &missing) || missing.Field != FieldName {
		t.Errorf("Name: expected MissingFieldError for %s, got %v", FieldName, err)
	}
	if _, err := Price(doc); !errors.As(err, &missing) || missing.Field != FieldPrice {
		t.Errorf("Price: expected MissingFieldError for %s, got %v", FieldPrice, err)
	}
	if _, err := Table(doc, DefaultTableOffsets); !errors.As(err, &missing) || missing.Field != FieldTable {
		t.Errorf("Table: expected MissingFieldError for %s, got %v", FieldTable, err)
	}
}

// TestDetailFixtureOffsets pins DefaultTableOffsets to a saved detail page.
// When the site layout changes, update the fixture and the offsets together.
func TestDetailFixtureOffsets(t *testing.T) {
	doc := readFixture(t, "detail.html")

	name, err := Name(doc)
	if err != nil || name != "グランドメゾン南青山" {
		t.Errorf("Name = %q, %v", name, err)
	}

	price, err := Price(doc)
	if err != nil || price != 12300 {
		t.Errorf("Price = %d, %v; want 12300", price, err)
	}

	fields, err := Table(doc, DefaultTableOffsets)
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}

	want := TableFields{
		Location:       "東京都港区南青山二丁目",
		ExclusiveArea:  75.5,
		BuiltDate:      "2005年3月",
		CurrentStatus:  "居住中",
		DeliveryTiming: "相談",
		Remark1:        "リフォーム済み",
	}
	if fields != want {
		t.Errorf("Table = %+v;\nwant %+v", fields, want)
	}
}

func TestTableOffsetOutOfRange(t *testing.T) {
	doc := readFixture(t, "detail.html")

	offsets := DefaultTableOffsets
	offsets.Remark = 500

	_, err := Table(doc, offsets)
	var missing *models.MissingFieldError
	if !errors.As(err, &missing) || missing.Field != FieldRemark {
		t.Fatalf("expected MissingFieldError for %s, got %v", FieldRemark, err)
	}
}

func TestTableCustomOffsets(t *testing.T) {
	doc := docFromString(t, `<div class="detail-info"><table>
		<tr><td class="info-val">港区六本木</td></tr>
		<tr><td class="info-val">55.0㎡</td></tr>
		<tr><td class="info-val">1999年</td></tr>
		<tr><td class="info-val">空室</td></tr>
		<tr><td class="info-val">即時</td></tr>
		<tr><td class="info-val">なし</td></tr>
	</table></div>`)

	fields, err := Table(doc, TableOffsets{Location: 0, Area: 1, BuiltDate: 2, Status: 3, Delivery: 4, Remark: 5})
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if fields.Location != "港区六本木" || fields.ExclusiveArea != 55 || fields.Remark1 != "なし" {
		t.Errorf("unexpected fields %+v", fields)
	}
}

func TestExtractionIsIdempotent(t *testing.T) {
	doc := readFixture(t, "detail.html")

	first, err := Table(doc, DefaultTableOffsets)
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}
	second, err := Table(doc, DefaultTableOffsets)
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if first != second {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}

	p1, _ := Price(doc)
	p2, _ := Price(doc)
	if p1 != p2 {
		t.Errorf("repeated price extraction differs: %d vs %d", p1, p2)
	}
}

const valuationPage = `<html><body>
<span class="user-text">ログイン中</span>
<p class="tanka">推定 <span class="js_automatic_assessment_sale_nominal_meter_tanka">1,120</span>万円/㎡</p>
<table class="mansionOrderContentList">
  <tbody class="average"><tr>
    <td>平均</td><td>2LDK</td><td>65㎡</td><td>4,250円</td>
  </tr></tbody>
</table>
<h3 class="title"><a href="/mansion/1001.html">パークハウス目黒</a></h3>
<h3 class="title"><a href="https://www.mansion-review.jp/mansion/1002.html">パークハウス目黒II</a></h3>
</body></html>`

func TestValuationFields(t *testing.T) {
	doc := docFromString(t, valuationPage)

	market, ok, err := EstimatedPricePerArea(doc)
	if err != nil || !ok || market != 1120 {
		t.Errorf("EstimatedPricePerArea = (%v, %v, %v); want (1120, true, nil)", market, ok, err)
	}

	rent, ok, err := AverageRentPerArea(doc, RentColumn)
	if err != nil || !ok || rent != 4250 {
		t.Errorf("AverageRentPerArea = (%v, %v, %v); want (4250, true, nil)", rent, ok, err)
	}

	if !LoggedIn(doc) {
		t.Error("LoggedIn should be true")
	}

	links, err := ResultLinks(doc, "https://www.mansion-review.jp")
	if err != nil {
		t.Fatalf("ResultLinks error: %v", err)
	}
	want := []string{
		"https://www.mansion-review.jp/mansion/1001.html",
		"https://www.mansion-review.jp/mansion/1002.html",
	}
	if len(links) != len(want) {
		t.Fatalf("ResultLinks = %v; want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("ResultLinks[%d] = %q; want %q", i, links[i], want[i])
		}
	}
}

func TestValuationFieldsAbsent(t *testing.T) {
	doc := docFromString(t, `<html><body><span class="user-text">ログイン</span></body></html>`)

	if _, ok, err := EstimatedPricePerArea(doc); ok || err != nil {
		t.Errorf("EstimatedPricePerArea: expected unavailable, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := AverageRentPerArea(doc, RentColumn); ok || err != nil {
		t.Errorf("AverageRentPerArea: expected unavailable, got ok=%v err=%v", ok, err)
	}
	if LoggedIn(doc) {
		t.Error("LoggedIn should be false")
	}
	if links, err := ResultLinks(doc, "https://www.mansion-review.jp"); err != nil || len(links) != 0 {
		t.Errorf("expected no result links, got %v", links)
	}
}

func TestMarketPerAreaUnparsableIsFatal(t *testing.T) {
	doc := docFromString(t, `<p class="tanka"><span class="js_automatic_assessment_sale_nominal_meter_tanka">算出中</span></p>`)

	_, _, err := EstimatedPricePerArea(doc)
	var numErr *models.NumericConversionError
	if !errors.As(err, &numErr) {
		t.Errorf("expected NumericConversionError, got %v", err)
	}
}

func TestListingLinksResolvedInOrder(t *testing.T) {
	doc := docFromString(t, `<ul>
		<li><a class="prop-title-link" href="/property/buy/13/1">A</a></li>
		<li><a class="prop-title-link" href="">empty</a></li>
		<li><a class="prop-title-link" href="/property/buy/13/2">B</a></li>
		<li><a class="other-link" href="/ignored">C</a></li>
	</ul>`)

	links, err := ListingLinks(doc, "https://www.fudousan.or.jp")
	if err != nil {
		t.Fatalf("ListingLinks error: %v", err)
	}
	want := []string{
		"https://www.fudousan.or.jp/property/buy/13/1",
		"https://www.fudousan.or.jp/property/buy/13/2",
	}
	if len(links) != 2 || links[0] != want[0] || links[1] != want[1] {
		t.Errorf("ListingLinks = %v; want %v", links, want)
	}
}

func TestLinksRejectMalformedBase(t *testing.T) {
	doc := docFromString(t, `<a class="prop-title-link" href="/property/buy/13/1">A</a>`)

	for _, base := range []string{"://broken", "/relative/only", ""} {
		if links, err := ListingLinks(doc, base); err == nil {
			t.Errorf("ListingLinks(%q) = %v; expected an error", base, links)
		}
	}
}

func TestDefaultOffsetsValid(t *testing.T) {
	if err := DefaultTableOffsets.Validate(); err != nil {
		t.Errorf("DefaultTableOffsets invalid: %v", err)
	}
	bad := DefaultTableOffsets
	bad.Status = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative offset")
	}
}
