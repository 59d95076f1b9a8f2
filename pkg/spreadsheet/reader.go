// Package spreadsheet reads roster worksheets from and writes tables to xlsx
// workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bookclub/roster-admin/pkg/core/rosterimport"
)

// ErrUnreadable is returned for payloads that are not a readable workbook
var ErrUnreadable = errors.New("unreadable spreadsheet")

// Workbook is an opened xlsx payload
type Workbook struct {
	file *excelize.File
}

// Open parses an xlsx payload
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return &Workbook{file: f}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the worksheet names in workbook order
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// ReadRows returns every row after the first of the named worksheet, keyed
// by the trimmed labels of the first row. Columns without a label are
// dropped; a repeated label keeps its first column. Interior blank rows are
// kept so positions line up with worksheet row numbers.
func (w *Workbook) ReadRows(sheet string) ([]rosterimport.Row, error) {
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrUnreadable, sheet, err)
	}
	if len(raw) == 0 {
		return []rosterimport.Row{}, nil
	}

	labels := make(map[int]string)
	seen := make(map[string]bool)
	for col, label := range raw[0] {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels[col] = label
	}

	rows := make([]rosterimport.Row, 0, len(raw)-1)
	for i, values := range raw[1:] {
		row := make(rosterimport.Row, len(labels))
		for col, label := range labels {
			var value string
			if col < len(values) {
				value = values[col]
			}
			cell, err := w.classify(sheet, col+1, i+2, value)
			if err != nil {
				return nil, err
			}
			row[label] = cell
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// classify turns a raw cell string into a typed cell. Strings stored as text
// stay text even when they look numeric.
func (w *Workbook) classify(sheet string, col, row int, value string) (rosterimport.Cell, error) {
	if value == "" {
		return rosterimport.EmptyCell(), nil
	}

	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return rosterimport.Cell{}, fmt.Errorf("failed to resolve cell name: %w", err)
	}
	cellType, err := w.file.GetCellType(sheet, name)
	if err != nil {
		return rosterimport.Cell{}, fmt.Errorf("%w: failed to read cell %s: %v", ErrUnreadable, name, err)
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return rosterimport.TextCell(value), nil
	}

	// Stored numbers never carry a leading zero; "010..." is a phone number
	if hasLeadingZero(value) {
		return rosterimport.TextCell(value), nil
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return rosterimport.NumberCell(n), nil
	}
	return rosterimport.TextCell(value), nil
}

func hasLeadingZero(value string) bool {
	return len(value) > 1 && value[0] == '0' && value[1] != '.'
}

// ReadFirstSheet opens the payload and reads its first worksheet
func ReadFirstSheet(r io.Reader) ([]rosterimport.Row, error) {
	wb, err := Open(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}
	return wb.ReadRows(sheets[0])
}
