package commands

import (
	"fmt"
	"strings"

	"github.com/bookclub/roster-admin/pkg/spreadsheet"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// pad right-pads s to width terminal columns. Hangul counts as two columns.
func pad(s string, width int) string {
	gap := width - spreadsheet.DisplayWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// printTable prints rows under headers with columns sized to fit
func printTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = spreadsheet.DisplayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], spreadsheet.DisplayWidth(cell))
			}
		}
	}

	printRow := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(pad(cell, widths[i]))
			}
		}
		fmt.Println(b.String())
	}

	printRow(headers)
	total := 0
	for _, w := range widths {
		total += w
	}
	fmt.Println(strings.Repeat("-", total+2*(len(widths)-1)))
	for _, row := range rows {
		printRow(row)
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
