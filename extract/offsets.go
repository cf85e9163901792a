package extract

import "fmt"

// TableOffsets maps each tabular field to its position in the detail page's
// flat list of value cells. The page exposes no labels we can key on, so the
// positions are pinned by a fixture test; when the layout drifts, this is
// the only place to change.
type TableOffsets struct {
	Location  int
	Area      int
	BuiltDate int
	Status    int
	Delivery  int
	Remark    int
}

// DefaultTableOffsets matches the current fudousan.or.jp condominium layout.
var DefaultTableOffsets = TableOffsets{
	Location:  3,
	Area:      9,
	BuiltDate: 25,
	Status:    38,
	Delivery:  44,
	Remark:    49,
}

// Validate rejects negative offsets.
func (o TableOffsets) Validate() error {
	for name, v := range o.byField() {
		if v < 0 {
			return fmt.Errorf("extract: negative table offset %d for %s", v, name)
		}
	}
	return nil
}

func (o TableOffsets) byField() map[string]int {
	return map[string]int{
		FieldLocation:  o.Location,
		FieldArea:      o.Area,
		FieldBuiltDate: o.BuiltDate,
		FieldStatus:    o.Status,
		FieldDelivery:  o.Delivery,
		FieldRemark:    o.Remark,
	}
}
