package seatrange

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// foldSection is the comparable form of a section name: NFKC, case folded,
// whitespace runs collapsed to one space.  Casers carry state, so each call
// gets its own.
func foldSection(name string) string {
	return strings.Join(strings.Fields(cases.Fold().String(norm.NFKC.String(name))), " ")
}

// Section is a resolved section: Folded is the key form, Display the name as
// the document spells it.
type Section struct {
	Folded  string
	Display string
}

// Resolver matches the leading words of a range chunk against the section
// names present in a document.
type Resolver struct {
	candidates []Section
}

// NewResolver builds a resolver over the given section display names.
// Candidates are tried longest first so "Dress Circle Upper" wins over
// "Dress Circle"; equal lengths keep the order given.
func NewResolver(names []string) *Resolver {
	seen := map[string]bool{}
	r := &Resolver{}
	for _, n := range names {
		display := strings.Join(strings.Fields(n), " ")
		folded := foldSection(n)
		if folded == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		r.candidates = append(r.candidates, Section{Folded: folded, Display: display})
	}
	sort.SliceStable(r.candidates, func(i, j int) bool {
		return len(r.candidates[i].Folded) > len(r.candidates[j].Folded)
	})
	return r
}

// Sections lists the known sections, longest name first.
func (r *Resolver) Sections() []Section {
	return append([]Section(nil), r.candidates...)
}

// Display returns the display name for a folded section name.
func (r *Resolver) Display(folded string) string {
	for _, c := range r.candidates {
		if c.Folded == folded {
			return c.Display
		}
	}
	return folded
}

// Resolve finds the section that chunk starts with.  The character after the
// section name must be whitespace or the end of the chunk, so "Stalls2 A1"
// never resolves to "Stalls".  rest is the folded text after the name.
func (r *Resolver) Resolve(chunk string) (sec Section, rest string, ok bool) {
	folded := foldSection(chunk)
	for _, c := range r.candidates {
		if !strings.HasPrefix(folded, c.Folded) {
			continue
		}
		tail := folded[len(c.Folded):]
		if tail != "" {
			next, _ := utf8.DecodeRuneInString(tail)
			if !unicode.IsSpace(next) {
				continue
			}
		}
		return c, strings.TrimSpace(tail), true
	}
	return Section{}, "", false
}
