package seatrange

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "A12", want: "a12"},
		{name: "bracketed prefix", raw: "(VIP) C12", want: "c12"},
		{name: "seat word", raw: "Seat C 12", want: "c12"},
		{name: "row numbered", raw: "ROW 3 - 91", want: "row3-91"},
		{name: "en dash", raw: "ROW 3 – 91", want: "row3-91"},
		{name: "em dash", raw: "ROW 3—91", want: "row3-91"},
		{name: "leading zero row", raw: "Row 03 - 7", want: "row3-7"},
		{name: "nbsp", raw: "AA 15", want: "aa15"},
		{name: "narrow nbsp", raw: "B 4", want: "b4"},
		{name: "full width digits", raw: "Ｃ１２", want: "c12"},
		{name: "hyphenated prefix", raw: "Main - Left 4", want: "main-left4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.raw))
		})
	}
}

func TestSplit(t *testing.T) {
	cases := []struct {
		in     string
		prefix string
		number int
		ok     bool
	}{
		{in: "row3-91", prefix: "row3", number: 91, ok: true},
		{in: "row12-1", prefix: "row12", number: 1, ok: true},
		{in: "a12", prefix: "a", number: 12, ok: true},
		{in: "aa7", prefix: "aa", number: 7, ok: true},
		{in: "main-left4", prefix: "main-left", number: 4, ok: true},
		{in: "a-5", prefix: "a", number: 5, ok: true},
		{in: "42", ok: false},
		{in: "", ok: false},
		{in: "abcdefghijklmnopqrstu1", ok: false},
		{in: "a12b", ok: false},
		{in: "-a5", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			prefix, number, ok := Split(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.prefix, prefix)
				assert.Equal(t, tc.number, number)
			}
		})
	}
}

func TestSplitRowNumberedRoundTrip(t *testing.T) {
	for n := 1; n <= 30; n++ {
		for _, k := range []int{1, 9, 10, 89, 150} {
			prefix, number, ok := Split(Normalize(fmt.Sprintf("ROW %d - %d", n, k)))
			require.True(t, ok, "ROW %d - %d", n, k)
			assert.Equal(t, fmt.Sprintf("row%d", n), prefix)
			assert.Equal(t, k, number)
		}
	}
}

func TestSplitPrefixedRoundTrip(t *testing.T) {
	prefixes := []string{"A", "b", "AA", "Main-Left", "stalls-box", "abcdefghijklmnopqrst"}
	for _, p := range prefixes {
		for _, k := range []int{1, 7, 23, 400} {
			prefix, number, ok := Split(Normalize(fmt.Sprintf("%s%d", p, k)))
			require.True(t, ok, "%s%d", p, k)
			assert.Equal(t, Normalize(p), prefix)
			assert.Equal(t, k, number)
		}
	}
}

func TestIsRowPrefix(t *testing.T) {
	n, ok := IsRowPrefix("row14")
	assert.True(t, ok)
	assert.Equal(t, 14, n)

	_, ok = IsRowPrefix("row")
	assert.False(t, ok)
	_, ok = IsRowPrefix("rowan")
	assert.False(t, ok)
	_, ok = IsRowPrefix("a")
	assert.False(t, ok)
}

func TestSeatKeyDisplay(t *testing.T) {
	assert.Equal(t, "Stalls ROW 3 - 91", NewKey("Stalls", "row3", 91).Display("Stalls"))
	assert.Equal(t, "Stalls A12", NewKey("Stalls", "a", 12).Display("Stalls"))
	assert.Equal(t, "stalls MAIN-LEFT4", NewKey("Stalls", "main-left", 4).Display(""))
}
