package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// fiscalYearPattern matches a standalone two-digit token starting with "2",
// e.g. the "25" in "Pledge 25". The word boundaries keep it from firing
// inside four-digit years or account numbers.
var fiscalYearPattern = regexp.MustCompile(`\b2\d\b`)

// ExtractFiscalYear pulls the fiscal-year tag out of a free-text transaction
// type label and maps it to a four-digit year ("25" -> 2025). The second
// return value is false when the label carries no recognizable tag; whether
// that is a silent skip or a row error is decided by the caller via
// InCategory.
func ExtractFiscalYear(label string) (int, bool) {
	token := fiscalYearPattern.FindString(label)
	if token == "" {
		return 0, false
	}
	year, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return 2000 + year, true
}

// InCategory reports whether a transaction type label belongs to the
// configured giving category. The keyword is a configuration value; matching
// is a case-insensitive substring test. Rows failing this test are out of
// scope and skipped without error, even when they also lack a year tag.
func InCategory(label, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(label), strings.ToLower(keyword))
}
