package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"realestate-scraper/models"
)

var (
	// priceRegexp captures the optional 億 (hundred-million) and 万
	// (ten-thousand) groups of a yen amount such as "1億2,300万円".
	priceRegexp = regexp.MustCompile(`(?:([\d,]+)億)?(?:([\d,]+)万)?円`)
	// areaRegexp captures a decimal followed by the square-metre sign.
	areaRegexp = regexp.MustCompile(`\d+.?\d*㎡`)
	// rentRegexp captures a yen amount such as "3,450円".
	rentRegexp = regexp.MustCompile(`[\d,]*\d+円`)
)

// ParsePrice converts a price text to units of 10,000 yen.
// "1億2,300万円" yields 12300 and "3,400万円" yields 3400.
func ParsePrice(text string) (int, error) {
	text = compactText(text)
	for _, m := range priceRegexp.FindAllStringSubmatch(text, -1) {
		oku, man := m[1], m[2]
		if oku == "" && man == "" {
			continue
		}

		total := 0
		if oku != "" {
			n, err := atoiDigits(oku)
			if err != nil {
				return 0, &models.NumericConversionError{Field: FieldPrice, Raw: m[0], Err: err}
			}
			total += n * 10000
		}
		if man != "" {
			n, err := atoiDigits(man)
			if err != nil {
				return 0, &models.NumericConversionError{Field: FieldPrice, Raw: m[0], Err: err}
			}
			total += n
		}
		return total, nil
	}
	return 0, &models.NumericConversionError{Field: FieldPrice, Raw: text}
}

// ParseArea converts an area text such as "75.5㎡（壁芯）" to square metres.
func ParseArea(text string) (float64, error) {
	text = compactText(text)
	match := areaRegexp.FindString(text)
	if match == "" {
		return 0, &models.NumericConversionError{Field: FieldArea, Raw: text}
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(match, "㎡"), 64)
	if err != nil {
		return 0, &models.NumericConversionError{Field: FieldArea, Raw: match, Err: err}
	}
	return v, nil
}

// ParseRent converts a rent text such as "3,450円/㎡" to yen. The boolean is
// false when the text holds no yen amount at all.
func ParseRent(text string) (int, bool, error) {
	text = compactText(text)
	match := rentRegexp.FindString(text)
	if match == "" {
		return 0, false, nil
	}
	n, err := atoiDigits(strings.TrimSuffix(match, "円"))
	if err != nil {
		return 0, false, &models.NumericConversionError{Field: FieldRentPerArea, Raw: match, Err: err}
	}
	return n, true, nil
}

// ParseMarketPerArea converts the valuation site's "123" or "1,234" figure
// (10,000 yen per m²).
func ParseMarketPerArea(text string) (int, error) {
	n, err := atoiDigits(compactText(text))
	if err != nil {
		return 0, &models.NumericConversionError{Field: FieldMarketPerArea, Raw: text, Err: err}
	}
	return n, nil
}

func atoiDigits(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(s, ",", ""))
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// compactText removes every whitespace rune; numeric texts are matched
// against their unit patterns without it.
func compactText(s string) string {
	return strings.Join(strings.Fields(s), "")
}
