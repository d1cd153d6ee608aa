package ingest

import (
	"fmt"
	"strings"
	"time"

	"pledgecli/pkg/contracts/domain"
)

// ParseOptions configures one file's parse pass.
type ParseOptions struct {
	// CategoryKeyword decides which transaction type labels are in scope.
	// Rows whose label does not contain it are skipped without error.
	CategoryKeyword string
	// Signature names the columns to read. Defaults to DefaultSignature.
	Signature FormatSignature
	// Now anchors age derivation. Zero means time.Now; tests pin it.
	Now time.Time
}

// columnIndex holds the resolved positions of the columns the parser reads.
type columnIndex struct {
	typ      int
	charge   int
	account  int
	birthday int
	zip      int
}

// resolveColumns maps signature roles to header positions. The first header
// matching a role wins.
func resolveColumns(headers []string, sig FormatSignature) columnIndex {
	idx := columnIndex{typ: -1, charge: -1, account: -1, birthday: -1, zip: -1}
	for i, h := range headers {
		switch NormalizeHeader(h) {
		case NormalizeHeader(sig.TypeColumn):
			if idx.typ < 0 {
				idx.typ = i
			}
		case NormalizeHeader(sig.ChargeColumn):
			if idx.charge < 0 {
				idx.charge = i
			}
		case NormalizeHeader(sig.AccountColumn):
			if idx.account < 0 {
				idx.account = i
			}
		case NormalizeHeader(sig.BirthdayColumn):
			if idx.birthday < 0 {
				idx.birthday = i
			}
		case NormalizeHeader(sig.ZipColumn):
			if idx.zip < 0 {
				idx.zip = i
			}
		}
	}
	return idx
}

// cellAt reads a cell tolerantly: short rows yield the empty string.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseRows runs the per-row state machine over one file's data rows and
// folds every accepted row into the household aggregates. The format gate
// runs first: anything below MatchHigh is a structural error carrying the
// classification and the missing columns, and no rows are processed.
//
// Row numbers in errors are 1-indexed counting the header row as row 1, so
// they line up with what the user sees in a spreadsheet program.
func ParseRows(headers []string, rows [][]string, opts ParseOptions) (*FileResult, error) {
	sig := opts.Signature
	if sig.TypeColumn == "" {
		sig = DefaultSignature()
	}

	det := DetectFormat(headers, sig)
	if det.Classification != MatchHigh {
		return nil, fmt.Errorf("unrecognized transaction export format (%s match): missing columns: %s",
			det.Classification, strings.Join(det.Missing, ", "))
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cols := resolveColumns(headers, sig)
	result := &FileResult{
		Aggregates: make(map[string]*AccountAggregate),
		YearsFound: make(map[int]struct{}),
	}

	for i, row := range rows {
		rowNum := i + 2 // header row is row 1

		label := cellAt(row, cols.typ)
		if !InCategory(label, opts.CategoryKeyword) {
			result.RowsSkipped++
			continue
		}

		accountID := strings.TrimSpace(cellAt(row, cols.account))
		if accountID == "" {
			result.Errors = append(result.Errors, domain.ParseError{
				Row:     rowNum,
				Column:  sig.AccountColumn,
				Message: "missing account id",
			})
			continue
		}

		fiscalYear, ok := ExtractFiscalYear(label)
		if !ok {
			// The label passed the category test, so an absent year tag is
			// a reportable defect, not an out-of-scope row.
			result.Errors = append(result.Errors, domain.ParseError{
				Row:     rowNum,
				Column:  sig.TypeColumn,
				Message: "missing fiscal year",
			})
			continue
		}

		amount, ok := ParseAmount(cellAt(row, cols.charge))
		if !ok {
			result.Errors = append(result.Errors, domain.ParseError{
				Row:     rowNum,
				Column:  sig.ChargeColumn,
				Message: "invalid charge value",
			})
			continue
		}

		result.foldRow(accountID, fiscalYear, amount, rowNum, cellAt(row, cols.birthday), cellAt(row, cols.zip), cols.zip >= 0, now)
	}

	return result, nil
}

// foldRow is the household-aggregator fold, invoked once per accepted row.
// Age is derived only on the account's first sighting; a failed derivation
// is deferred, surfacing later at comparison-row time. Zip keeps the last
// non-empty value seen.
func (r *FileResult) foldRow(accountID string, fiscalYear int, amount float64, rowNum int, birthdayCell, zipCell string, hasZip bool, now time.Time) {
	agg, ok := r.Aggregates[accountID]
	if !ok {
		agg = &AccountAggregate{
			AccountID:   accountID,
			YearAmounts: make(map[int]float64),
			FirstRow:    rowNum,
		}
		if birthdate, ok := ParseDate(birthdayCell); ok {
			if age, ok := DeriveAge(birthdate, now); ok {
				agg.Age = &age
			}
		}
		r.Aggregates[accountID] = agg
	}

	agg.YearAmounts[fiscalYear] += amount
	if hasZip {
		if zip := strings.TrimSpace(zipCell); zip != "" {
			agg.ZipCode = zip
		}
	}

	r.YearsFound[fiscalYear] = struct{}{}
	r.RowsAccepted++
}
