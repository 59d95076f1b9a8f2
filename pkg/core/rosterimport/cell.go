package rosterimport

import (
	"math"
	"strconv"
	"strings"
)

type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
)

// Cell is a raw spreadsheet value: empty, text or number
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func EmptyCell() Cell { return Cell{Kind: KindEmpty} }

func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

func NumberCell(n float64) Cell { return Cell{Kind: KindNumber, Number: n} }

func (c Cell) IsText() bool { return c.Kind == KindText }

func (c Cell) IsEmpty() bool { return c.Kind == KindEmpty }

// TrimmedText returns the display string with surrounding whitespace removed
func (c Cell) TrimmedText() string { return strings.TrimSpace(c.String()) }

// String renders the cell the way a spreadsheet would display it unformatted.
// Whole numbers have no decimal part.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Int returns the cell as an integer, truncating fractions.
// Text is parsed after trimming and removing thousands separators.
func (c Cell) Int() (int, bool) {
	switch c.Kind {
	case KindNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return 0, false
		}
		return int(c.Number), true
	case KindText:
		s := strings.ReplaceAll(strings.TrimSpace(c.Text), ",", "")
		if s == "" {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// Row maps a column label to its cell. Missing labels read as empty.
type Row map[string]Cell

// Get returns the cell for label, or an empty cell when absent
func (r Row) Get(label string) Cell {
	if c, ok := r[label]; ok {
		return c
	}
	return EmptyCell()
}
