package editor

import (
	"sort"
	"strings"

	"github.com/iliyamo/seatmap-editor/internal/model"
)

// RowSummary is one line of the seat/price summary table.
type RowSummary struct {
	Section     string   `json:"section"`
	Row         string   `json:"row"`
	Price       string   `json:"price,omitempty"`
	Seats       int      `json:"seats"`
	Available   int      `json:"available"`
	Unavailable int      `json:"unavailable"`
	Blocked     int      `json:"blocked"`
	Prices      []string `json:"prices"`
}

// SectionSummary aggregates the rows of one seating section.
type SectionSummary struct {
	Name        string       `json:"name"`
	Price       string       `json:"price,omitempty"`
	Seats       int          `json:"seats"`
	Available   int          `json:"available"`
	Unavailable int          `json:"unavailable"`
	Blocked     int          `json:"blocked"`
	Rows        []RowSummary `json:"rows"`
}

// Summary is the seat/price table rendered after an edit.
type Summary struct {
	Sections    []SectionSummary `json:"sections"`
	Seats       int              `json:"seats"`
	Available   int              `json:"available"`
	Unavailable int              `json:"unavailable"`
	Blocked     int              `json:"blocked"`
}

// Summarize counts seats per row and section.  Area-of-interest sections are
// left out.  Distinct seat prices are listed numerically first, then any
// non-numeric spellings alphabetically.
func Summarize(doc *model.Document) Summary {
	sum := Summary{Sections: []SectionSummary{}}
	for _, sk := range doc.SectionKeys {
		sec := doc.Sections[sk]
		if sec.IsAOI() {
			continue
		}
		ss := SectionSummary{Name: sec.DisplayName(), Rows: []RowSummary{}}
		if sec.Price != nil {
			ss.Price = *sec.Price
		}
		for _, rk := range sec.RowKeys {
			row := sec.Rows[rk]
			rs := RowSummary{Section: ss.Name, Row: rk, Prices: []string{}}
			if row.Price != nil {
				rs.Price = *row.Price
			}
			seen := map[string]bool{}
			for _, id := range row.SeatKeys {
				seat := row.Seats[id]
				rs.Seats++
				if seat.Available() {
					rs.Available++
				} else {
					rs.Unavailable++
				}
				if IsBlocked(seat) {
					rs.Blocked++
				}
				if p := strings.TrimSpace(seat.PriceText()); p != "" && !seen[p] {
					seen[p] = true
					rs.Prices = append(rs.Prices, p)
				}
			}
			sortPrices(rs.Prices)
			ss.Seats += rs.Seats
			ss.Available += rs.Available
			ss.Unavailable += rs.Unavailable
			ss.Blocked += rs.Blocked
			ss.Rows = append(ss.Rows, rs)
		}
		sum.Seats += ss.Seats
		sum.Available += ss.Available
		sum.Unavailable += ss.Unavailable
		sum.Blocked += ss.Blocked
		sum.Sections = append(sum.Sections, ss)
	}
	return sum
}

func sortPrices(ps []string) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, aok := NumericPrice(ps[i])
		b, bok := NumericPrice(ps[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return ps[i] < ps[j]
		}
	})
}
