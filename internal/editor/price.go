package editor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iliyamo/seatmap-editor/internal/model"
)

var numericPrice = regexp.MustCompile(`^\d+(\.\d+)?$`)

// NumericPrice parses s when it looks like a plain decimal price ("55",
// "42.50").  Currency symbols, ranges and words are not numeric.
func NumericPrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericPrice.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AggregateRowPrices sets every seating row's price to the highest numeric
// seat price in it, keeping the seat's spelling of that price.  Rows without
// any numeric seat price are left alone.  Each section's price follows the
// highest numeric row price in the same way.  It returns how many rows were
// given a price.
func AggregateRowPrices(doc *model.Document) int {
	rows := 0
	for _, sk := range doc.SectionKeys {
		sec := doc.Sections[sk]
		if sec.IsAOI() {
			continue
		}
		var (
			secMax  float64
			secText string
		)
		for _, rk := range sec.RowKeys {
			row := sec.Rows[rk]
			var (
				best float64
				text string
			)
			for _, id := range row.SeatKeys {
				p := row.Seats[id].PriceText()
				if v, ok := NumericPrice(p); ok && (text == "" || v > best) {
					best, text = v, strings.TrimSpace(p)
				}
			}
			if text == "" {
				continue
			}
			row.Price = &text
			rows++
			if secText == "" || best > secMax {
				secMax, secText = best, text
			}
		}
		if secText != "" {
			p := secText
			sec.Price = &p
		}
	}
	return rows
}
