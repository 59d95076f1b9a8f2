package rosterimport

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bookclub/roster-admin/pkg/core/model"
)

var (
	nonDigits        = regexp.MustCompile(`\D`)
	filenameMonth    = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)
	headerDateSuffix = regexp.MustCompile(`\s\d{1,2}/\d{1,2}$`)
)

// ConvertYYMM converts a YYMM code such as "2512" into "2025-12".
// Non-digits are ignored. Anything that is not exactly four digits with a
// month of 01-12 yields "". Years are always taken to be 20YY.
func ConvertYYMM(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) != 4 {
		return ""
	}

	yy, _ := strconv.Atoi(digits[:2])
	mm, _ := strconv.Atoi(digits[2:])
	if mm < 1 || mm > 12 {
		return ""
	}

	return fmt.Sprintf("%04d-%02d", 2000+yy, mm)
}

// ParticipationMonthFromFilename extracts the raw YYMM code from names like
// "2512.xlsx" or "roster 2512.xlsx". It returns "" when no standalone
// four-digit group is present.
func ParticipationMonthFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	m := filenameMonth.FindStringSubmatch(base)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseBirthYear turns the two-digit birth-year code into a calendar year:
// 50-99 map to the 1900s and 00-49 to the 2000s. Values of 100 and above
// are deliberately taken as full years already, so a sheet that records
// 1988 instead of 88 still imports. Empty or non-numeric input yields 0.
func ParseBirthYear(c Cell) int {
	code, ok := c.Int()
	if !ok || code < 0 {
		return 0
	}
	switch {
	case code >= 100:
		return code
	case code >= 50:
		return 1900 + code
	default:
		return 2000 + code
	}
}

// ParseMonths reads the membership month count. "신규" (new member) counts
// as one month; markers such as "전리더" or "부리더" count as zero.
func ParseMonths(c Cell) int {
	if c.TrimmedText() == "신규" {
		return 1
	}
	n, ok := c.Int()
	if !ok || n <= 0 {
		return 0
	}
	return n
}

// ParseFee reads the membership fee. "면제" (exempt) is zero and negative
// amounts (partial refunds) pass through.
func ParseFee(c Cell) int {
	if c.TrimmedText() == "면제" {
		return 0
	}
	n, ok := c.Int()
	if !ok {
		return 0
	}
	return n
}

func ParseGender(c Cell) model.Gender {
	switch c.TrimmedText() {
	case "남", "남성":
		return model.GenderMale
	default:
		return model.GenderFemale
	}
}

func ParseReRegistration(c Cell) bool {
	v := c.TrimmedText()
	return v == "V" || v == "v"
}

// MeetingNameFromHeader strips the trailing " M/D" date from a meeting header
func MeetingNameFromHeader(raw string) string {
	name := strings.TrimSpace(raw)
	name = headerDateSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
