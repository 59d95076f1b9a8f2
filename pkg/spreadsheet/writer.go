package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

const (
	maxColumnWidth = 50
	columnPadding  = 2
)

// Table is a single worksheet. Every row holds one value per header.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]any
}

// Write renders t as an xlsx workbook with one worksheet, header row first,
// and column widths sized to their widest value.
func Write(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if t.Title != "" && t.Title != sheet {
		if err := f.SetSheetName(sheet, t.Title); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = t.Title
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("row %d has %d values for %d headers", i+1, len(row), len(t.Headers))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to resolve row %d: %w", i+1, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	for col, cw := range ColumnWidths(t) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column %d: %w", col+1, err)
		}
		if err := f.SetColWidth(sheet, name, name, cw); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ColumnWidths returns the width of each column in character cells, counting
// East Asian wide characters as two, capped at 50.
func ColumnWidths(t Table) []float64 {
	widths := make([]float64, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = float64(DisplayWidth(h) + columnPadding)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if i >= len(widths) || v == nil {
				continue
			}
			if cw := float64(DisplayWidth(fmt.Sprint(v)) + columnPadding); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

// DisplayWidth counts wide and fullwidth runes as two cells
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
