package ingest

import (
	"strings"
)

// Classification grades how well a header row matches the known
// transaction-export signature.
type Classification int

const (
	// MatchNone means the headers look nothing like a transaction export.
	MatchNone Classification = iota
	// MatchPartial means enough columns matched to suggest the right file
	// family, but not enough to parse it unattended.
	MatchPartial
	// MatchHigh means every required column is present. Only a MatchHigh
	// file enters the ingestion pipeline.
	MatchHigh
)

func (c Classification) String() string {
	switch c {
	case MatchHigh:
		return "high"
	case MatchPartial:
		return "partial"
	default:
		return "none"
	}
}

// FormatSignature names the columns the importer needs, by role. All values
// come from configuration; matching is case-insensitive and
// whitespace-normalized.
type FormatSignature struct {
	TypeColumn     string
	ChargeColumn   string
	AccountColumn  string
	BirthdayColumn string
	ZipColumn      string   // optional role: postal code capture
	Optional       []string // confidence-only columns, never read
}

// DefaultSignature matches the congregation-management transaction export
// this importer is built for.
func DefaultSignature() FormatSignature {
	return FormatSignature{
		TypeColumn:     "Type",
		ChargeColumn:   "Charge",
		AccountColumn:  "Account Id",
		BirthdayColumn: "Birthday",
		ZipColumn:      "Zip",
		Optional:       []string{"Date", "First Name", "Last Name", "Fund", "Check Number"},
	}
}

// requiredColumns returns the columns that must all be present for a
// MatchHigh classification.
func (s FormatSignature) requiredColumns() []string {
	return []string{s.TypeColumn, s.ChargeColumn, s.AccountColumn, s.BirthdayColumn}
}

// optionalColumns returns the columns that only raise confidence.
func (s FormatSignature) optionalColumns() []string {
	cols := make([]string, 0, len(s.Optional)+1)
	if s.ZipColumn != "" {
		cols = append(cols, s.ZipColumn)
	}
	return append(cols, s.Optional...)
}

// FormatDetection is the result of matching a header row against a
// signature.
type FormatDetection struct {
	Classification Classification
	Matched        []string // signature columns found in the headers
	Missing        []string // required columns not found
}

// NormalizeHeader lowercases a column name and collapses internal
// whitespace, so "Account  ID " and "account id" compare equal.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// DetectFormat classifies a header row against the export signature.
// All required columns present -> MatchHigh; at least two required columns
// or at least three optional columns -> MatchPartial; otherwise MatchNone.
func DetectFormat(headers []string, sig FormatSignature) FormatDetection {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[NormalizeHeader(h)] = true
	}

	var det FormatDetection
	requiredHits := 0
	for _, col := range sig.requiredColumns() {
		if seen[NormalizeHeader(col)] {
			det.Matched = append(det.Matched, col)
			requiredHits++
		} else {
			det.Missing = append(det.Missing, col)
		}
	}

	optionalHits := 0
	for _, col := range sig.optionalColumns() {
		if seen[NormalizeHeader(col)] {
			det.Matched = append(det.Matched, col)
			optionalHits++
		}
	}

	switch {
	case requiredHits == len(sig.requiredColumns()):
		det.Classification = MatchHigh
	case requiredHits >= 2 || optionalHits >= 3:
		det.Classification = MatchPartial
	default:
		det.Classification = MatchNone
	}
	return det
}
