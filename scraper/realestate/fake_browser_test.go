package realestate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"realestate-scraper/extract"
	"realestate-scraper/utils"
)

const (
	loggedInMarker  = `<span class="user-text">ログイン中</span>`
	loggedOutMarker = `<span class="user-text">ログイン</span>`
)

var errNotVisible = errors.New("element not visible")

// fakeBrowser serves canned HTML by URL and records every interaction.
type fakeBrowser struct {
	pages       map[string]string
	fallback    string
	afterSubmit *string
	missing     map[string]bool
	fetchErr    map[string]error

	// blockCurrent makes Current hang until its context ends, like a page
	// that is still navigating after the login submit.
	blockCurrent bool

	current string
	fetched []string
	clicks  []string
	fills   map[string]string
	closed  bool
}

func newFakeBrowser(pages map[string]string) *fakeBrowser {
	return &fakeBrowser{
		pages:    pages,
		missing:  map[string]bool{},
		fetchErr: map[string]error{},
		fills:    map[string]string{},
	}
}

func (f *fakeBrowser) Fetch(_ context.Context, url, _ string) (*goquery.Document, error) {
	f.fetched = append(f.fetched, url)
	if err := f.fetchErr[url]; err != nil {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		html = f.fallback
	}
	f.current = html
	return parseHTML(html)
}

func (f *fakeBrowser) Current(ctx context.Context) (*goquery.Document, error) {
	if f.blockCurrent {
		<-ctx.Done()
		return nil, fmt.Errorf("load : %w", context.Canceled)
	}
	return parseHTML(f.current)
}

func (f *fakeBrowser) Click(_ context.Context, selector string) error {
	if f.missing[selector] {
		return errNotVisible
	}
	f.clicks = append(f.clicks, selector)
	if selector == submitSelector && f.afterSubmit != nil {
		f.current = *f.afterSubmit
	}
	return nil
}

func (f *fakeBrowser) Fill(_ context.Context, selector, value string) error {
	if f.missing[selector] {
		return errNotVisible
	}
	f.fills[selector] = value
	return nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

func (f *fakeBrowser) countFetches(url string) int {
	n := 0
	for _, u := range f.fetched {
		if u == url {
			n++
		}
	}
	return n
}

func parseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := parseHTML(html)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func testPoller() utils.Poller {
	return utils.Poller{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
}

func testCredentials() Credentials {
	return Credentials{Email: "buyer@example.com", Password: "s3cret-pass"}
}

// detailPage renders a primary-site detail page whose value cells sit at
// the default offsets.
func detailPage(name, price, address, area string) string {
	values := map[int]string{
		extract.DefaultTableOffsets.Location:  address + " 周辺地図",
		extract.DefaultTableOffsets.Area:      area,
		extract.DefaultTableOffsets.BuiltDate: "2010年4月",
		extract.DefaultTableOffsets.Status:    "空室",
		extract.DefaultTableOffsets.Delivery:  "即時",
		extract.DefaultTableOffsets.Remark:    "ペット可",
	}

	var b strings.Builder
	b.WriteString(`<html><body>`)
	fmt.Fprintf(&b, `<h1 class="detail-h1">%s</h1>`, name)
	fmt.Fprintf(&b, `<div class="price">%s</div>`, price)
	b.WriteString(`<div class="detail-info"><table>`)
	for i := 0; i < 50; i++ {
		v, ok := values[i]
		if !ok {
			v = fmt.Sprintf("cell-%d", i)
		}
		fmt.Fprintf(&b, `<tr><td class="info-val">%s</td></tr>`, v)
	}
	b.WriteString(`</table></div></body></html>`)
	return b.String()
}

// reviewSearchPage renders a logged-in valuation-site search page.
func reviewSearchPage(marketPerArea, rent string, links ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body>` + loggedInMarker)
	if marketPerArea != "" {
		fmt.Fprintf(&b, `<p class="tanka"><span class="js_automatic_assessment_sale_nominal_meter_tanka">%s</span></p>`, marketPerArea)
	}
	if rent != "" {
		fmt.Fprintf(&b, `<table class="mansionOrderContentList"><tbody class="average"><tr>
			<td>平均</td><td>-</td><td>-</td><td>%s</td></tr></tbody></table>`, rent)
	}
	for i, l := range links {
		fmt.Fprintf(&b, `<h3 class="title"><a href="%s">result %d</a></h3>`, l, i)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// searchPage renders a primary-site search-results page.
func searchPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul>`)
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<li><a class="prop-title-link" href="%s">listing</a></li>`, h)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}
