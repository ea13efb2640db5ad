package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seatmap-editor/internal/model"
)

func TestNumericPrice(t *testing.T) {
	for in, want := range map[string]bool{
		"55":     true,
		"42.50":  true,
		" 10 ":   true,
		"£55":    false,
		"55.":    false,
		"-5":     false,
		"free":   false,
		"":       false,
		"10-20":  false,
		"1e3":    false,
		"0.0001": true,
	} {
		_, ok := NumericPrice(in)
		assert.Equal(t, want, ok, "%q", in)
	}
}

func TestAggregateRowPricesTakesNumericMaximum(t *testing.T) {
	doc, err := model.LoadDocument([]byte(`{
	  "st": {"section_name": "Stalls", "rows": {
	    "A": {"price": "1", "seats": {
	      "1": {"number": "A1", "price": "40"},
	      "2": {"number": "A2", "price": "55"},
	      "3": {"number": "A3", "price": "not-a-number"},
	      "4": {"number": "A4", "price": "50"}
	    }},
	    "B": {"price": "keep", "seats": {"1": {"number": "B1", "price": "n/a"}, "2": {"number": "B2"}}},
	    "C": {"seats": {"1": {"number": "C1", "price": 120}}}
	  }},
	  "bar": {"section_name": "Bar", "type": "aoi", "rows": {"x": {"seats": {"1": {"number": "X1", "price": "9"}}}}}
	}`))
	require.NoError(t, err)

	n := AggregateRowPrices(doc)

	assert.Equal(t, 2, n)
	st := doc.Sections["st"]
	assert.Equal(t, "55", *st.Rows["A"].Price)
	assert.Equal(t, "keep", *st.Rows["B"].Price)
	assert.Equal(t, "120", *st.Rows["C"].Price)
	assert.Equal(t, "120", *st.Price)
	assert.Nil(t, doc.Sections["bar"].Rows["x"].Price)
	assert.Nil(t, doc.Sections["bar"].Price)
}

func TestIsBlocked(t *testing.T) {
	blocked := []model.Seat{
		{Number: "Pillar"},
		{Number: "D4", Notes: strPtr("behind PILLARS")},
		{Number: "D5", Label: strPtr("Not  for sale")},
		{Number: "D6 [no seat]"},
		{Number: "D7", Notes: strPtr("(not a seat)")},
	}
	for _, s := range blocked {
		assert.True(t, IsBlocked(&s), s.Text())
	}
	open := []model.Seat{
		{Number: "D8"},
		{Number: "D9", Notes: strPtr("caterpillar")},
		{Number: "D10", Label: strPtr("for sale")},
		{Number: "D11", Notes: strPtr("no seatbelt")},
	}
	for _, s := range open {
		assert.False(t, IsBlocked(&s), s.Text())
	}
}

func strPtr(s string) *string { return &s }
