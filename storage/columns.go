package storage

import (
	"strconv"

	"realestate-scraper/models"
)

// Columns are the export headers. The first column is the 1-based row index.
var Columns = []string{
	"No.",
	"物件詳細URL【不動産ジャパン】",
	"物件詳細URL【マンションレビュー】",
	"価格",
	"推定相場価格",
	"相場価格/価格",
	"推定利回り",
	"建物名",
	"所在地",
	"専有面積",
	"㎡単価",
	"推定相場㎡単価",
	"賃料平均㎡単価",
	"築年月",
	"現況",
	"引渡し時期",
	"備考1",
}

// RowOptions controls how a record is rendered.
type RowOptions struct {
	// BlankUnmeasured leaves cells empty for values the valuation site did
	// not supply, instead of writing 0.
	BlankUnmeasured bool
}

// Row renders one record in Columns order. index is 1-based. Empty cells
// are nil.
func Row(index int, r models.ListingRecord, opts RowOptions) []any {
	var market, ratio, marketPerArea any = r.EstimatedMarketPrice, r.MarketToPriceRatio, r.EstimatedMarketPricePerArea
	var yield, rent any = r.EstimatedYield, r.AverageRentPerArea

	if opts.BlankUnmeasured {
		if !r.MarketPriceKnown {
			market, ratio, marketPerArea = nil, nil, nil
		}
		if !r.RentKnown {
			yield, rent = nil, nil
		}
	}

	return []any{
		index,
		r.PrimaryDetailURL,
		r.SecondaryDetailURL,
		r.Price,
		market,
		ratio,
		yield,
		r.BuildingName,
		r.Address,
		r.ExclusiveArea,
		r.PricePerArea,
		marketPerArea,
		rent,
		r.BuiltDate,
		r.CurrentStatus,
		r.DeliveryTiming,
		r.Remark1,
	}
}

// formatCell renders a cell value as text.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
