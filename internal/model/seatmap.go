package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Seat status codes written by the editor.
const (
	StatusAvailable   = "av"
	StatusUnavailable = "uav"
)

// SectionTypeAOI marks a non-seating area of interest (stage, bar, exits).
const SectionTypeAOI = "aoi"

// ErrMalformedDocument is returned when uploaded bytes are not a JSON object.
var ErrMalformedDocument = errors.New("malformed seat map document")

// Seat is a single seat inside a row.  Number is the raw label printed on the
// map (e.g. "A12", "ROW 3 - 91", "(VIP) C12").  Price, Label and Notes are
// nil when absent from the source document.
type Seat struct {
	Number string
	Status string
	Price  *string
	Label  *string
	Notes  *string

	raw object
}

// Available reports whether the seat's status reads as "av".  A missing or
// unknown status counts as not available.
func (s *Seat) Available() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), StatusAvailable)
}

// PriceText returns the seat price or "" when none is set.
func (s *Seat) PriceText() string {
	if s.Price == nil {
		return ""
	}
	return *s.Price
}

// Text joins number, label and notes; used for blocked-seat detection.
func (s *Seat) Text() string {
	parts := []string{s.Number}
	if s.Label != nil {
		parts = append(parts, *s.Label)
	}
	if s.Notes != nil {
		parts = append(parts, *s.Notes)
	}
	return strings.Join(parts, " ")
}

func (s *Seat) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*s = Seat{raw: o}
	s.Number, _ = textValue(o.vals["number"])
	s.Status, _ = textValue(o.vals["status"])
	s.Price = optionalText(o.vals["price"])
	s.Label = optionalText(o.vals["label"])
	s.Notes = optionalText(o.vals["notes"])
	return nil
}

func (s Seat) MarshalJSON() ([]byte, error) {
	o := s.raw.clone()
	if s.Number != "" || o.has("number") {
		if err := o.setString("number", s.Number); err != nil {
			return nil, err
		}
	}
	if s.Status != "" || o.has("status") {
		if err := o.setString("status", s.Status); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		key string
		val *string
	}{{"price", s.Price}, {"label", s.Label}, {"notes", s.Notes}} {
		if f.val == nil {
			continue
		}
		if err := o.setString(f.key, *f.val); err != nil {
			return nil, err
		}
	}
	return o.bytes(), nil
}

// Row groups seats under a row key.  SeatKeys preserves document order.
type Row struct {
	Seats    map[string]*Seat
	SeatKeys []string
	Price    *string

	raw object
}

func (r *Row) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*r = Row{raw: o, Seats: map[string]*Seat{}}
	r.Price = optionalText(o.vals["price"])
	if seats, ok := o.vals["seats"]; ok && isObject(seats) {
		so, err := decodeObject(seats)
		if err != nil {
			return fmt.Errorf("seats: %w", err)
		}
		for _, k := range so.keys {
			if !isObject(so.vals[k]) {
				continue
			}
			var seat Seat
			if err := json.Unmarshal(so.vals[k], &seat); err != nil {
				return fmt.Errorf("seat %q: %w", k, err)
			}
			r.Seats[k] = &seat
			r.SeatKeys = append(r.SeatKeys, k)
		}
	}
	return nil
}

func (r Row) MarshalJSON() ([]byte, error) {
	o := r.raw.clone()
	if len(r.SeatKeys) > 0 {
		so := object{}
		if prev, ok := r.raw.vals["seats"]; ok && isObject(prev) {
			if dec, err := decodeObject(prev); err == nil {
				so = dec
			}
		}
		for _, k := range r.SeatKeys {
			b, err := encodeValue(r.Seats[k])
			if err != nil {
				return nil, err
			}
			so.set(k, b)
		}
		o.set("seats", so.bytes())
	}
	if r.Price != nil {
		if err := o.setString("price", *r.Price); err != nil {
			return nil, err
		}
	}
	return o.bytes(), nil
}

// Section is a named seating area.  RowKeys preserves document order.
type Section struct {
	Key     string
	Name    string
	Type    string
	Rows    map[string]*Row
	RowKeys []string
	Price   *string

	raw object
}

// IsAOI reports whether the section is a non-seating area of interest.
func (s *Section) IsAOI() bool {
	return strings.EqualFold(strings.TrimSpace(s.Type), SectionTypeAOI)
}

// DisplayName is the whitespace-normalized section_name, or the section key
// when the document omits a name.
func (s *Section) DisplayName() string {
	if n := CollapseSpaces(s.Name); n != "" {
		return n
	}
	return CollapseSpaces(s.Key)
}

func (s *Section) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*s = Section{raw: o, Rows: map[string]*Row{}}
	s.Name, _ = textValue(o.vals["section_name"])
	s.Type, _ = textValue(o.vals["type"])
	s.Price = optionalText(o.vals["price"])
	if rows, ok := o.vals["rows"]; ok && isObject(rows) {
		ro, err := decodeObject(rows)
		if err != nil {
			return fmt.Errorf("rows: %w", err)
		}
		for _, k := range ro.keys {
			if !isObject(ro.vals[k]) {
				continue
			}
			var row Row
			if err := json.Unmarshal(ro.vals[k], &row); err != nil {
				return fmt.Errorf("row %q: %w", k, err)
			}
			s.Rows[k] = &row
			s.RowKeys = append(s.RowKeys, k)
		}
	}
	return nil
}

func (s Section) MarshalJSON() ([]byte, error) {
	o := s.raw.clone()
	if len(s.RowKeys) > 0 {
		ro := object{}
		if prev, ok := s.raw.vals["rows"]; ok && isObject(prev) {
			if dec, err := decodeObject(prev); err == nil {
				ro = dec
			}
		}
		for _, k := range s.RowKeys {
			b, err := encodeValue(s.Rows[k])
			if err != nil {
				return nil, err
			}
			ro.set(k, b)
		}
		o.set("rows", ro.bytes())
	}
	if s.Price != nil {
		if err := o.setString("price", *s.Price); err != nil {
			return nil, err
		}
	}
	return o.bytes(), nil
}

// Document is a seat map: section key -> Section.  Root members that are not
// objects (version stamps, venue metadata) are kept but never edited.
type Document struct {
	Sections    map[string]*Section
	SectionKeys []string

	raw object
}

// LoadDocument parses uploaded bytes into a Document.  Anything other than a
// JSON object at the root is rejected with ErrMalformedDocument.
func LoadDocument(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}
	if !isObject(data) {
		return nil, fmt.Errorf("%w: root is not an object", ErrMalformedDocument)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*d = Document{raw: o, Sections: map[string]*Section{}}
	for _, k := range o.keys {
		if !isObject(o.vals[k]) {
			continue
		}
		var sec Section
		if err := json.Unmarshal(o.vals[k], &sec); err != nil {
			return fmt.Errorf("section %q: %w", k, err)
		}
		sec.Key = k
		d.Sections[k] = &sec
		d.SectionKeys = append(d.SectionKeys, k)
	}
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	o := d.raw.clone()
	for _, k := range d.SectionKeys {
		b, err := encodeValue(d.Sections[k])
		if err != nil {
			return nil, err
		}
		o.set(k, b)
	}
	return o.bytes(), nil
}

// Encode writes the document as 2-space indented JSON.
func (d *Document) Encode() ([]byte, error) {
	compact, err := encodeValue(d)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EachSeat visits every seat of every section in document order, including
// area-of-interest sections; callers filter with Section.IsAOI.
func (d *Document) EachSeat(fn func(sec *Section, rowKey string, row *Row, seatKey string, seat *Seat)) {
	for _, sk := range d.SectionKeys {
		sec := d.Sections[sk]
		for _, rk := range sec.RowKeys {
			row := sec.Rows[rk]
			for _, k := range row.SeatKeys {
				fn(sec, rk, row, k, row.Seats[k])
			}
		}
	}
}

// CollapseSpaces trims s and folds every whitespace run (NBSP included) into
// one ASCII space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u00a0', '\u202f', '\u2009':
		return true
	}
	return false
}

func optionalText(raw json.RawMessage) *string {
	s, ok := textValue(raw)
	if !ok {
		return nil
	}
	return &s
}
