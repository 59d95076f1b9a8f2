package sheetsclient

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bookclub/roster-admin/pkg/core/rosterimport"
)

// ReadRoster reads a roster tab as label-keyed rows. An empty tab title
// reads the first tab.
func (c *Client) ReadRoster(spreadsheetID, tab string) ([]rosterimport.Row, error) {
	if tab == "" {
		tabs, err := c.ListTabs(spreadsheetID)
		if err != nil {
			return nil, err
		}
		if len(tabs) == 0 {
			return nil, fmt.Errorf("spreadsheet has no tabs")
		}
		tab = tabs[0]
	}

	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster data: %w", err)
	}

	rows, err := parseRosterValues(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster tab %q: %w", tab, err)
	}
	return rows, nil
}

// parseRosterValues converts raw tab values into rows keyed by the header
// row's labels. The name and phone columns must be present.
func parseRosterValues(raw [][]interface{}) ([]rosterimport.Row, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build label index map from header row
	labelIndexes := make(map[string]int)
	for i, cell := range raw[0] {
		label := strings.TrimSpace(fmt.Sprint(cell))
		if label == "" {
			continue
		}
		if _, exists := labelIndexes[label]; !exists {
			labelIndexes[label] = i
		}
	}

	for _, required := range []string{rosterimport.ColName, rosterimport.ColPhone} {
		if _, ok := labelIndexes[required]; !ok {
			return nil, fmt.Errorf("missing required column in header: %s", required)
		}
	}

	rows := make([]rosterimport.Row, 0, len(raw)-1)
	for _, values := range raw[1:] {
		row := make(rosterimport.Row, len(labelIndexes))
		for label, index := range labelIndexes {
			if index < len(values) {
				row[label] = toCell(values[index])
			} else {
				row[label] = rosterimport.EmptyCell()
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// toCell maps a Sheets API value onto a typed cell
func toCell(v interface{}) rosterimport.Cell {
	switch val := v.(type) {
	case nil:
		return rosterimport.EmptyCell()
	case string:
		if val == "" {
			return rosterimport.EmptyCell()
		}
		return rosterimport.TextCell(val)
	case float64:
		return rosterimport.NumberCell(val)
	case bool:
		return rosterimport.TextCell(strconv.FormatBool(val))
	default:
		return rosterimport.TextCell(fmt.Sprint(val))
	}
}
