package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeaders = []string{"Type", "Charge", "Account Id", "Birthday", "Zip"}

func testOpts() ParseOptions {
	return ParseOptions{
		CategoryKeyword: "pledge",
		Signature:       DefaultSignature(),
		Now:             time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseRows_FormatGate(t *testing.T) {
	_, err := ParseRows([]string{"Invoice", "Vendor", "Total"}, nil, testOpts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "Account Id")
}

func TestParseRows_AcceptAndAggregate(t *testing.T) {
	rows := [][]string{
		{"Pledge 25", "$500.00", "A1", "3/15/1980", "02139"},
		{"Pledge 25", "$300.00", "A1", "3/15/1980", "02139"},
		{"Pledge 24", "$400.00", "A1", "3/15/1980", "02139"},
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.RowsAccepted)
	require.Contains(t, result.Aggregates, "A1")

	agg := result.Aggregates["A1"]
	assert.InDelta(t, 800.0, agg.YearAmounts[2025], 1e-9)
	assert.InDelta(t, 400.0, agg.YearAmounts[2024], 1e-9)
	require.NotNil(t, agg.Age)
	assert.Equal(t, 45, *agg.Age)
	assert.Equal(t, "02139", agg.ZipCode)
	assert.Equal(t, 2, agg.FirstRow)
	assert.ElementsMatch(t, []int{2024, 2025}, yearsOf(result))
}

func yearsOf(r *FileResult) []int {
	years := make([]int, 0, len(r.YearsFound))
	for y := range r.YearsFound {
		years = append(years, y)
	}
	return years
}

func TestParseRows_CategorySkipVersusYearMissing(t *testing.T) {
	rows := [][]string{
		// Unrelated charge type with no year tag: silent skip, zero errors.
		{"Facility Rental", "$50.00", "A1", "3/15/1980", ""},
		// Recognized category but no year tag: exactly one error.
		{"Pledge", "$100.00", "A2", "3/15/1980", ""},
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsSkipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "Type", result.Errors[0].Column)
	assert.Equal(t, "missing fiscal year", result.Errors[0].Message)
}

func TestParseRows_RowLevelErrors(t *testing.T) {
	rows := [][]string{
		{"Pledge 25", "$500.00", "", "3/15/1980", ""},       // missing account id
		{"Pledge 25", "five hundred", "A1", "3/15/1980", ""}, // bad amount
		{"Pledge 25", "$250.00", "A2", "3/15/1980", ""},      // fine
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "Account Id", result.Errors[0].Column)
	assert.Equal(t, "missing account id", result.Errors[0].Message)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Equal(t, "Charge", result.Errors[1].Column)
	assert.Equal(t, "invalid charge value", result.Errors[1].Message)

	// One bad row never aborts the file.
	assert.Equal(t, 1, result.RowsAccepted)
	assert.Contains(t, result.Aggregates, "A2")
}

func TestParseRows_AgeDerivedOnceNoRetry(t *testing.T) {
	rows := [][]string{
		{"Pledge 25", "$100.00", "A1", "not a date", ""},
		// Later row carries a usable birthdate, but derivation never retries.
		{"Pledge 25", "$100.00", "A1", "3/15/1980", ""},
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)
	require.Contains(t, result.Aggregates, "A1")
	assert.Nil(t, result.Aggregates["A1"].Age)
	assert.Empty(t, result.Errors) // deferred, surfaces at comparison-row time
}

func TestParseRows_ZipLastNonEmptyWins(t *testing.T) {
	rows := [][]string{
		{"Pledge 25", "$100.00", "A1", "3/15/1980", "02139"},
		{"Pledge 25", "$100.00", "A1", "3/15/1980", ""},
		{"Pledge 25", "$100.00", "A1", "3/15/1980", "10001"},
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)
	assert.Equal(t, "10001", result.Aggregates["A1"].ZipCode)
}

func TestParseRows_SingleYearFileParsesCleanly(t *testing.T) {
	// The two-year minimum is deliberately not enforced per file.
	rows := [][]string{
		{"Pledge 25", "$100.00", "A1", "3/15/1980", ""},
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.YearsFound, 1)
}

func TestParseRows_NegativeAmountsAccumulate(t *testing.T) {
	rows := [][]string{
		{"Pledge 25", "$500.00", "A1", "3/15/1980", ""},
		{"Pledge 25", "($200.00)", "A1", "3/15/1980", ""},
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)
	assert.InDelta(t, 300.0, result.Aggregates["A1"].YearAmounts[2025], 1e-9)
}

func TestParseRows_ShortRowsTreatedAsEmptyCells(t *testing.T) {
	rows := [][]string{
		{"Pledge 25", "$100.00"}, // no account id cell at all
	}

	result, err := ParseRows(testHeaders, rows, testOpts())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "missing account id", result.Errors[0].Message)
}
