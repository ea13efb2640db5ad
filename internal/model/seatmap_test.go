package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "version": 3,
  "zeta": {
    "section_name": "Dress  Circle",
    "colour": "#aa0000",
    "rows": {
      "B": {
        "seats": {
          "2": {"number": "B2", "status": "AV", "x": 10, "price": 45},
          "1": {"number": "B1", "notes": "Restricted view & <low> rail"}
        },
        "y": 200
      }
    }
  },
  "alpha": {"section_name": "Stage", "type": "AOI"}
}`

func TestLoadDocumentReadsTypedFields(t *testing.T) {
	doc, err := LoadDocument([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha"}, doc.SectionKeys)
	sec := doc.Sections["zeta"]
	assert.Equal(t, "Dress Circle", sec.DisplayName())
	assert.False(t, sec.IsAOI())
	assert.True(t, doc.Sections["alpha"].IsAOI())
	assert.Equal(t, "alpha", doc.Sections["alpha"].Key)

	row := sec.Rows["B"]
	assert.Equal(t, []string{"2", "1"}, row.SeatKeys)
	b2 := row.Seats["2"]
	assert.True(t, b2.Available())
	assert.Equal(t, "45", b2.PriceText())
	b1 := row.Seats["1"]
	assert.False(t, b1.Available())
	assert.Nil(t, b1.Price)
	assert.Equal(t, "B1 Restricted view & <low> rail", b1.Text())
}

func TestEncodePreservesUnknownFieldsAndOrder(t *testing.T) {
	doc, err := LoadDocument([]byte(sampleDoc))
	require.NoError(t, err)

	seat := doc.Sections["zeta"].Rows["B"].Seats["1"]
	seat.Status = StatusAvailable
	price := "50"
	seat.Price = &price

	out, err := doc.Encode()
	require.NoError(t, err)

	want := `{
  "version": 3,
  "zeta": {
    "section_name": "Dress  Circle",
    "colour": "#aa0000",
    "rows": {
      "B": {
        "seats": {
          "2": {
            "number": "B2",
            "status": "AV",
            "x": 10,
            "price": "45"
          },
          "1": {
            "number": "B1",
            "notes": "Restricted view & <low> rail",
            "status": "av",
            "price": "50"
          }
        },
        "y": 200
      }
    }
  },
  "alpha": {
    "section_name": "Stage",
    "type": "AOI"
  }
}
`
	assert.Equal(t, want, string(out))

	again, err := LoadDocument(out)
	require.NoError(t, err)
	out2, err := again.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
}

func TestLoadDocumentRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{``, `not json`, `[1,2]`, `"text"`, `{"a": }`} {
		_, err := LoadDocument([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedDocument, in)
	}
}

func TestLoadDocumentToleratesOddShapes(t *testing.T) {
	doc, err := LoadDocument([]byte("\xef\xbb\xbf" + `{
	  "meta": "venue 12",
	  "s": {"section_name": "Stalls", "rows": ["not", "a", "map"]},
	  "t": {"rows": {"A": {"seats": {"1": "junk", "2": {"status": "av"}}}}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "t"}, doc.SectionKeys)
	assert.Empty(t, doc.Sections["s"].RowKeys)
	row := doc.Sections["t"].Rows["A"]
	assert.Equal(t, []string{"2"}, row.SeatKeys)
	assert.Equal(t, "", row.Seats["2"].Number)

	var visited int
	doc.EachSeat(func(*Section, string, *Row, string, *Seat) { visited++ })
	assert.Equal(t, 1, visited)

	out, err := doc.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"meta": "venue 12"`)
	assert.Contains(t, string(out), `"1": "junk"`)
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "Dress Circle", CollapseSpaces("  Dress   Circle\t"))
	assert.Equal(t, "", CollapseSpaces("   "))
}
