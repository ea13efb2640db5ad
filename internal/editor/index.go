package editor

import (
	"go.uber.org/zap"

	"github.com/iliyamo/seatmap-editor/internal/model"
	"github.com/iliyamo/seatmap-editor/internal/seatrange"
)

// SeatRef points at an indexed seat and the section/row that own it.
type SeatRef struct {
	Key         seatrange.SeatKey
	SectionName string
	Section     *model.Section
	RowKey      string
	Row         *model.Row
	SeatID      string
	Seat        *model.Seat
}

// Display renders the seat as operators type it, e.g. "Stalls A12".
func (r *SeatRef) Display() string { return r.Key.Display(r.SectionName) }

// Collision records two seats whose labels normalize to the same key.  The
// later seat in document order replaces the earlier one in the index.
type Collision struct {
	Seat     string `json:"seat"`
	Kept     string `json:"kept"`
	Replaced string `json:"replaced"`
}

// Index maps seat keys to seats for one loaded document.  It is built once
// per load and never updated incrementally.
type Index struct {
	refs       map[seatrange.SeatKey]*SeatRef
	order      []seatrange.SeatKey
	sections   []string
	resolver   *seatrange.Resolver
	Collisions []Collision
	// Unindexed counts seats whose label matches neither supported shape.
	Unindexed int
}

// BuildIndex walks every seat of every seating section.  Area-of-interest
// sections are skipped; seats with unsupported labels are counted but left
// out.
func BuildIndex(doc *model.Document, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	idx := &Index{refs: map[seatrange.SeatKey]*SeatRef{}}
	for _, sk := range doc.SectionKeys {
		sec := doc.Sections[sk]
		if sec.IsAOI() {
			continue
		}
		name := sec.DisplayName()
		idx.sections = append(idx.sections, name)
		for _, rk := range sec.RowKeys {
			row := sec.Rows[rk]
			for _, id := range row.SeatKeys {
				seat := row.Seats[id]
				prefix, number, ok := seatrange.ParseLabel(seat.Number)
				if !ok {
					idx.Unindexed++
					log.Debug("seat label not indexed",
						zap.String("section", name), zap.String("row", rk), zap.String("label", seat.Number))
					continue
				}
				key := seatrange.NewKey(name, prefix, number)
				ref := &SeatRef{Key: key, SectionName: name, Section: sec, RowKey: rk, Row: row, SeatID: id, Seat: seat}
				if prev, dup := idx.refs[key]; dup {
					c := Collision{Seat: ref.Display(), Kept: ref.path(), Replaced: prev.path()}
					idx.Collisions = append(idx.Collisions, c)
					log.Warn("seat key collision; later seat replaces earlier one",
						zap.String("seat", c.Seat), zap.String("kept", c.Kept), zap.String("replaced", c.Replaced))
				} else {
					idx.order = append(idx.order, key)
				}
				idx.refs[key] = ref
			}
		}
	}
	idx.resolver = seatrange.NewResolver(idx.sections)
	return idx
}

func (r *SeatRef) path() string {
	return r.Section.Key + "/" + r.RowKey + "/" + r.SeatID
}

// Lookup returns the seat indexed under k.
func (idx *Index) Lookup(k seatrange.SeatKey) (*SeatRef, bool) {
	ref, ok := idx.refs[k]
	return ref, ok
}

// Len is the number of distinct indexed keys.
func (idx *Index) Len() int { return len(idx.order) }

// Each visits indexed seats in document order.
func (idx *Index) Each(fn func(*SeatRef)) {
	for _, k := range idx.order {
		fn(idx.refs[k])
	}
}

// Sections lists the seating section display names in document order.
func (idx *Index) Sections() []string { return append([]string(nil), idx.sections...) }

// Resolver matches range text against this document's sections.
func (idx *Index) Resolver() *seatrange.Resolver { return idx.resolver }

// Parse parses range text against this document's sections.
func (idx *Index) Parse(text string) seatrange.Result {
	return seatrange.Parse(text, idx.resolver)
}

// DisplayKey renders k with its section's display name, for keys that may
// not be present in the index.
func (idx *Index) DisplayKey(k seatrange.SeatKey) string {
	if ref, ok := idx.refs[k]; ok {
		return ref.Display()
	}
	return k.Display(idx.resolver.Display(k.Section))
}
