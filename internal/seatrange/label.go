// Package seatrange turns loosely typed seat labels and range expressions
// ("Stalls A1-A5, Rausing Circle ROW 3 - 89-93") into exact seat keys.
//
// Two label shapes are recognised:
//
//	row-numbered  ROW 3 - 91  -> ("row3", 91)
//	prefixed      AA12        -> ("aa", 12)
//
// Anything else is an unsupported label and is never guessed at.
package seatrange

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxPrefixLen bounds the alphabetic part of a prefixed label.
const MaxPrefixLen = 20

var (
	bracketed   = regexp.MustCompile(`\([^)]*\)`)
	hyphenGap   = regexp.MustCompile(`\s*-\s*`)
	anySpace    = regexp.MustCompile(`\s+`)
	leadingZero = regexp.MustCompile(`row0+(\d)`)

	rowLabel    = regexp.MustCompile(`^(row\d+)-?(\d+)$`)
	prefixLabel = regexp.MustCompile(`^([a-z][a-z-]{0,19}?)-?(\d+)$`)
)

var dashes = strings.NewReplacer("–", "-", "—", "-", "‒", "-", "−", "-")

// Normalize canonicalises a raw seat label so that two spellings of the same
// seat compare equal: "(VIP) Seat C 12" and "c12" both become "c12",
// "ROW 03 – 91" becomes "row3-91".
func Normalize(raw string) string {
	s := bracketed.ReplaceAllString(raw, "")
	// NFKC folds NBSP and narrow NBSP into plain spaces and full-width
	// letters and digits into ASCII.
	s = norm.NFKC.String(s)
	s = dashes.Replace(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "seat", "")
	s = hyphenGap.ReplaceAllString(s, "-")
	s = anySpace.ReplaceAllString(s, "")
	s = leadingZero.ReplaceAllString(s, "row$1")
	return s
}

// Split breaks a normalized label into prefix and seat number.  ok is false
// for labels outside the two supported shapes.
func Split(normalized string) (prefix string, number int, ok bool) {
	if m := rowLabel.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return "", 0, false
		}
		return m[1], n, true
	}
	if m := prefixLabel.FindStringSubmatch(normalized); m != nil {
		if len(m[1]) > MaxPrefixLen {
			return "", 0, false
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return "", 0, false
		}
		return m[1], n, true
	}
	return "", 0, false
}

// ParseLabel is Normalize followed by Split.
func ParseLabel(raw string) (prefix string, number int, ok bool) {
	return Split(Normalize(raw))
}

// RowPrefix is the prefix used for row-numbered seats in row n.
func RowPrefix(n int) string {
	return "row" + strconv.Itoa(n)
}

// IsRowPrefix reports whether prefix names a numbered row and returns it.
func IsRowPrefix(prefix string) (int, bool) {
	if !strings.HasPrefix(prefix, "row") || len(prefix) == 3 {
		return 0, false
	}
	n, err := strconv.Atoi(prefix[3:])
	if err != nil {
		return 0, false
	}
	return n, true
}
