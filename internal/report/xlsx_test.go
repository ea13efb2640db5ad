package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/seatmap-editor/internal/editor"
)

func TestSummaryWorkbook(t *testing.T) {
	sum := editor.Summary{
		Sections: []editor.SectionSummary{{
			Name: "Stalls", Price: "60", Seats: 3, Available: 2, Unavailable: 1, Blocked: 1,
			Rows: []editor.RowSummary{
				{Section: "Stalls", Row: "A", Price: "60", Seats: 2, Available: 1, Unavailable: 1, Blocked: 1, Prices: []string{"45", "60"}},
				{Section: "Stalls", Row: "B", Seats: 1, Available: 1, Prices: []string{}},
			},
		}},
		Seats: 3, Available: 2, Unavailable: 1, Blocked: 1,
	}

	data, err := SummaryWorkbook(sum)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RowsSheet, SectionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(RowsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, rowsHeader, rows[0])
	assert.Equal(t, []string{"Stalls", "A", "60", "2", "1", "1", "1", "45, 60"}, rows[1])
	assert.Equal(t, []string{"Stalls", "B", "", "1", "1", "0", "0"}, rows[2])

	secs, err := f.GetRows(SectionsSheet)
	require.NoError(t, err)
	require.Len(t, secs, 3)
	assert.Equal(t, []string{"Stalls", "60", "2", "3", "2", "1", "1"}, secs[1])
	assert.Equal(t, []string{"Total", "", "", "3", "2", "1", "1"}, secs[2])
}

func TestSummaryWorkbookEmpty(t *testing.T) {
	data, err := SummaryWorkbook(editor.Summary{})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(RowsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
