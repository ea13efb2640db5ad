package seatrange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxRangeSpan caps how many seats a single range may expand to.  A typo such
// as "A1-A10000" is reported instead of flooding the request.
const MaxRangeSpan = 2000

// Reasons attached to unparsed fragments.
const (
	ReasonUnknownSection = "unknown section"
	ReasonNoRange        = "no seat range after section"
	ReasonUnrecognised   = "unrecognised seat range"
	ReasonMixedPrefix    = "range start and end are in different rows"
	ReasonTooLarge       = "range too large"
)

// rangeExpr matches one range inside the text that follows a section name.
// Groups 1-3: ROW n - a [to b].  Groups 4-7: prefix a [to [prefix] b].
// Like Split, one hyphen between a prefix and its number is dropped, so
// "A-1" and "MAIN-LEFT-4" resolve to the keys their labels index under.
var rangeExpr = regexp.MustCompile(
	`row\s*0*(\d+)(?:\s*-\s*|\s+)(\d+)(?:\s*(?:-|to)\s*(\d+))?` +
		`|([a-z][a-z-]{0,19}?)\s*-?\s*(\d+)(?:\s*(?:-|to)\s*(?:([a-z][a-z-]{0,19}?)\s*-?\s*)?(\d+))?`,
)

var (
	seatWord = regexp.MustCompile(`\bseats?\b`)
	rangeSep = regexp.MustCompile(`\s*[,;\n]\s*`)
)

// Unparsed is a piece of operator input that produced no seat keys.
type Unparsed struct {
	Chunk    string `json:"chunk"`
	Fragment string `json:"fragment"`
	Reason   string `json:"reason"`
}

func (u Unparsed) String() string {
	if u.Fragment == "" || u.Fragment == u.Chunk {
		return fmt.Sprintf("%q: %s", u.Chunk, u.Reason)
	}
	return fmt.Sprintf("%q in %q: %s", u.Fragment, u.Chunk, u.Reason)
}

// Chunk is one comma-separated piece of input and what it resolved to.
type Chunk struct {
	Text    string    `json:"text"`
	Section string    `json:"section,omitempty"`
	Keys    []SeatKey `json:"keys"`
}

// Result is the outcome of parsing a range expression.
type Result struct {
	Keys     *KeySet
	Chunks   []Chunk
	Unparsed []Unparsed
}

// Parse splits text on commas, resolves each chunk's section and expands
// every seat range in it.  Fragments that cannot be understood are skipped
// and returned in Result.Unparsed; they are never an error.
func Parse(text string, r *Resolver) Result {
	res := Result{Keys: NewKeySet()}
	for _, raw := range rangeSep.Split(text, -1) {
		chunk := strings.TrimSpace(raw)
		if chunk == "" {
			continue
		}
		sec, rest, ok := r.Resolve(chunk)
		if !ok {
			res.Unparsed = append(res.Unparsed, Unparsed{Chunk: chunk, Reason: ReasonUnknownSection})
			continue
		}
		c := Chunk{Text: chunk, Section: sec.Display}
		rest = cleanRemainder(rest)
		if rest == "" {
			res.Unparsed = append(res.Unparsed, Unparsed{Chunk: chunk, Reason: ReasonNoRange})
			res.Chunks = append(res.Chunks, c)
			continue
		}
		keys, bad := parseRemainder(sec, rest)
		for i := range bad {
			bad[i].Chunk = chunk
		}
		res.Unparsed = append(res.Unparsed, bad...)
		for _, k := range keys {
			res.Keys.Add(k)
		}
		c.Keys = keys
		res.Chunks = append(res.Chunks, c)
	}
	return res
}

// ParseNames is Parse over a plain list of section names.
func ParseNames(text string, sections []string) Result {
	return Parse(text, NewResolver(sections))
}

func cleanRemainder(rest string) string {
	rest = bracketed.ReplaceAllString(rest, " ")
	rest = dashes.Replace(rest)
	rest = seatWord.ReplaceAllString(rest, " ")
	return strings.TrimSpace(rest)
}

// parseRemainder expands every range in rest, which is already folded to
// lower case.  Text between recognised ranges is reported back.
func parseRemainder(sec Section, rest string) ([]SeatKey, []Unparsed) {
	var (
		keys []SeatKey
		bad  []Unparsed
		last int
	)
	for _, m := range rangeExpr.FindAllStringSubmatchIndex(rest, -1) {
		if gap := strings.TrimSpace(rest[last:m[0]]); gap != "" {
			bad = append(bad, Unparsed{Fragment: gap, Reason: ReasonUnrecognised})
		}
		last = m[1]
		whole := rest[m[0]:m[1]]
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return rest[m[2*i]:m[2*i+1]]
		}

		var (
			prefix   string
			from, to string
		)
		if group(1) != "" {
			row, err := strconv.Atoi(group(1))
			if err != nil {
				bad = append(bad, Unparsed{Fragment: whole, Reason: ReasonUnrecognised})
				continue
			}
			prefix, from, to = RowPrefix(row), group(2), group(3)
		} else {
			prefix, from, to = group(4), group(5), group(7)
			if end := group(6); end != "" && end != prefix {
				bad = append(bad, Unparsed{Fragment: whole, Reason: ReasonMixedPrefix})
				continue
			}
		}
		if to == "" {
			to = from
		}
		lo, hi, err := bounds(from, to)
		if err != nil {
			bad = append(bad, Unparsed{Fragment: whole, Reason: ReasonUnrecognised})
			continue
		}
		// lo >= 0, so hi-lo cannot overflow; counting by offset keeps the
		// loop finite when hi is the largest int.
		span := hi - lo
		if span >= MaxRangeSpan {
			bad = append(bad, Unparsed{Fragment: whole, Reason: ReasonTooLarge})
			continue
		}
		for i := 0; i <= span; i++ {
			keys = append(keys, SeatKey{Section: sec.Folded, Prefix: prefix, Number: lo + i})
		}
	}
	if gap := strings.TrimSpace(rest[last:]); gap != "" {
		bad = append(bad, Unparsed{Fragment: gap, Reason: ReasonUnrecognised})
	}
	return keys, bad
}

// bounds returns the inclusive ascending range between a and b.
func bounds(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, err
	}
	if x > y {
		x, y = y, x
	}
	return x, y, nil
}
