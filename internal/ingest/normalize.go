package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is day zero of the spreadsheet 1900 date system. Serial 1 is
// 1899-12-31, which keeps the off-by-two Lotus leap-year quirk consistent
// with what Excel itself produces for modern dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDay caps serial date conversion around year 2173. Anything larger
// is almost certainly a misfiled number, not a date.
const maxSerialDay = 100000

// dateLayouts is the fixed ordered list tried against string cells.
// First successful parse wins, so US month-first layouts outrank the
// day-first international forms for ambiguous values.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2/1/2006",
	"2006/01/02",
	"1-2-2006",
	"2-1-2006",
	"2.1.2006",
}

// fallbackLayouts catches exports that spell the month out.
var fallbackLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// amountCleaner strips currency noise before numeric parsing.
var amountCleaner = strings.NewReplacer(
	"$", "", "\u00a3", "", "\u20ac", "", "\u00a5", "",
	",", "", " ", "", "\u00a0", "",
)

// ParseAmount converts a raw charge cell into a signed amount. It accepts
// plain numbers, currency-formatted strings, and accounting parentheses
// notation; "(123.45)", "($123.45)" and "-$123.45" all resolve to negative
// values. Empty cells, bare dashes and non-finite results are rejected.
func ParseAmount(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" || s == "-" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = amountCleaner.Replace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

// ParseDate converts a raw cell into a calendar date. Bare numeric cells are
// treated as spreadsheet serial day counts from serialEpoch; string cells are
// tried against dateLayouts in order, then fallbackLayouts as a last chance.
func ParseDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToDate(serial)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// serialToDate converts a spreadsheet serial day count to a date. Fractional
// day parts (time of day) are discarded.
func serialToDate(serial float64) (time.Time, bool) {
	days := int(serial)
	if days <= 0 || days > maxSerialDay {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, days), true
}

// DeriveAge computes the whole-year difference between birthdate and now.
// Results outside [0, 120] are rejected as implausible; they usually mean a
// swapped day/month or a wrong-century birthdate.
func DeriveAge(birthdate, now time.Time) (int, bool) {
	age := now.Year() - birthdate.Year()
	anniversary := time.Date(now.Year(), birthdate.Month(), birthdate.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		age--
	}
	if age < 0 || age > 120 {
		return 0, false
	}
	return age, true
}
