package extract

// CSS selectors for both sites, kept in one place so layout changes on either
// site are a single edit.
const (
	// Primary site search results
	ListingLinkSelector = `a.prop-title-link`

	// Primary site detail page
	NameSelector      = `h1.detail-h1`
	PriceSelector     = `div.price`
	TableCellSelector = `div[class="detail-info"] td[class^="info-val"]`

	// Secondary site
	LoginMarkerSelector    = `span.user-text`
	ResultLinkSelector     = `h3[class="title"] a`
	MarketPerAreaSelector  = `p.tanka span.js_automatic_assessment_sale_nominal_meter_tanka`
	AverageRowCellSelector = `table.mansionOrderContentList tbody.average td`
)

// Field names used in error values and log lines.
const (
	FieldName          = "building_name"
	FieldPrice         = "price"
	FieldTable         = "detail_table"
	FieldLocation      = "address"
	FieldArea          = "exclusive_area"
	FieldBuiltDate     = "built_date"
	FieldStatus        = "current_status"
	FieldDelivery      = "delivery_timing"
	FieldRemark        = "remark1"
	FieldMarketPerArea = "estimated_market_price_per_area"
	FieldRentPerArea   = "average_rent_per_area"
)
