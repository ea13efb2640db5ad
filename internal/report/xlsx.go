// Package report renders the seat/price summary table as an Excel workbook.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/seatmap-editor/internal/editor"
)

const (
	RowsSheet     = "Rows"
	SectionsSheet = "Sections"
)

var (
	rowsHeader     = []string{"Section", "Row", "Row price", "Seats", "Available", "Unavailable", "Blocked", "Seat prices"}
	rowsWidths     = []float64{28, 10, 12, 8, 11, 13, 9, 30}
	sectionsHeader = []string{"Section", "Price", "Rows", "Seats", "Available", "Unavailable", "Blocked"}
	sectionsWidths = []float64{28, 10, 8, 8, 11, 13, 9}
)

// SummaryWorkbook writes sum into a workbook with one sheet per row and one
// per section, plus a totals line at the bottom of the Sections sheet.
// Prices stay text so non-numeric spellings survive.
func SummaryWorkbook(sum editor.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RowsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SectionsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	var rows [][]interface{}
	for _, sec := range sum.Sections {
		for _, r := range sec.Rows {
			rows = append(rows, []interface{}{
				r.Section, r.Row, r.Price, r.Seats, r.Available, r.Unavailable, r.Blocked,
				strings.Join(r.Prices, ", "),
			})
		}
	}
	if err := writeTable(f, RowsSheet, rowsHeader, rowsWidths, headerStyle, rows); err != nil {
		return nil, err
	}

	var secs [][]interface{}
	for _, sec := range sum.Sections {
		secs = append(secs, []interface{}{
			sec.Name, sec.Price, len(sec.Rows), sec.Seats, sec.Available, sec.Unavailable, sec.Blocked,
		})
	}
	secs = append(secs, []interface{}{"Total", "", "", sum.Seats, sum.Available, sum.Unavailable, sum.Blocked})
	if err := writeTable(f, SectionsSheet, sectionsHeader, sectionsWidths, headerStyle, secs); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, header []string, widths []float64, headerStyle int, rows [][]interface{}) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sheet, cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header %s!%s: %w", sheet, cell, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, widths[col]); err != nil {
			return fmt.Errorf("set width %s!%s: %w", sheet, name, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
