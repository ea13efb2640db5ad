package seatrange

import (
	"fmt"
	"sort"
	"strings"
)

// SeatKey identifies a seat for matching: the lowercased section name, the
// normalized prefix and the seat number.  Two seats are the same seat for the
// editor exactly when their keys are equal.
type SeatKey struct {
	Section string `json:"section"`
	Prefix  string `json:"prefix"`
	Number  int    `json:"number"`
}

// NewKey builds a key from a section display name and a parsed label.
func NewKey(section, prefix string, number int) SeatKey {
	return SeatKey{Section: foldSection(section), Prefix: prefix, Number: number}
}

func (k SeatKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Section, k.Prefix, k.Number)
}

// Display renders the key the way operators type it, using the section's
// display name: "Stalls ROW 3 - 91" or "Stalls A12".
func (k SeatKey) Display(sectionName string) string {
	if sectionName == "" {
		sectionName = k.Section
	}
	if n, ok := IsRowPrefix(k.Prefix); ok {
		return fmt.Sprintf("%s ROW %d - %d", sectionName, n, k.Number)
	}
	return fmt.Sprintf("%s %s%d", sectionName, strings.ToUpper(k.Prefix), k.Number)
}

// Less orders keys by section, then prefix, then number.
func (k SeatKey) Less(o SeatKey) bool {
	if k.Section != o.Section {
		return k.Section < o.Section
	}
	if k.Prefix != o.Prefix {
		return k.Prefix < o.Prefix
	}
	return k.Number < o.Number
}

// KeySet is a set of seat keys that remembers insertion order.
type KeySet struct {
	order []SeatKey
	index map[SeatKey]int
}

// NewKeySet returns a set holding keys.
func NewKeySet(keys ...SeatKey) *KeySet {
	s := &KeySet{index: map[SeatKey]int{}}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k and reports whether it was new.
func (s *KeySet) Add(k SeatKey) bool {
	if s.index == nil {
		s.index = map[SeatKey]int{}
	}
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.order)
	s.order = append(s.order, k)
	return true
}

// Union adds every key of o.
func (s *KeySet) Union(o *KeySet) {
	if o == nil {
		return
	}
	for _, k := range o.order {
		s.Add(k)
	}
}

func (s *KeySet) Has(k SeatKey) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[k]
	return ok
}

func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Keys returns the keys in insertion order.
func (s *KeySet) Keys() []SeatKey {
	if s == nil {
		return nil
	}
	return append([]SeatKey(nil), s.order...)
}

// Sorted returns the keys ordered by SeatKey.Less.
func (s *KeySet) Sorted() []SeatKey {
	out := s.Keys()
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Equal reports whether both sets hold the same keys, ignoring order.
func (s *KeySet) Equal(o *KeySet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, k := range s.Keys() {
		if !o.Has(k) {
			return false
		}
	}
	return true
}
